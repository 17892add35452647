package estimator

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/swdee/go-posecapture/pose"
	"gocv.io/x/gocv"
)

var (
	black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

func TestLetterboxResize(t *testing.T) {

	tests := []struct {
		srcWidth      int
		srcHeight     int
		resizeWidth   int
		resizeHeight  int
		expectedXPad  int
		expectedYPad  int
		expectedScale float32
	}{
		{1280, 720, 640, 640, 0, 140, 0.50},
		{800, 1000, 640, 640, 64, 0, 0.64},
		{800, 800, 640, 640, 0, 0, 0.8},
	}

	for _, tc := range tests {
		img := gocv.NewMatWithSize(tc.srcHeight, tc.srcWidth, gocv.MatTypeCV8UC1)

		resizedImg := gocv.NewMat()

		lb := NewLetterbox(tc.srcWidth, tc.srcHeight, tc.resizeWidth, tc.resizeHeight)

		lb.Resize(img, &resizedImg, black)

		if lb.XPad() != tc.expectedXPad || lb.YPad() != tc.expectedYPad {
			t.Errorf("src (%d, %d): padding expected XPad=%d, YPad=%d, got XPad=%d, YPad=%d",
				tc.srcWidth, tc.srcHeight, tc.expectedXPad, tc.expectedYPad, lb.XPad(), lb.YPad())
		}

		if lb.ScaleFactor() != tc.expectedScale {
			t.Errorf("src (%d, %d): scale factor expected %f, got %f",
				tc.srcWidth, tc.srcHeight, tc.expectedScale, lb.ScaleFactor())
		}

		if resizedImg.Cols() != tc.resizeWidth || resizedImg.Rows() != tc.resizeHeight {
			t.Errorf("src (%d, %d): resized to %dx%d, expected %dx%d",
				tc.srcWidth, tc.srcHeight, resizedImg.Cols(), resizedImg.Rows(),
				tc.resizeWidth, tc.resizeHeight)
		}

		img.Close()
		resizedImg.Close()
		lb.Close()
	}
}

func TestLetterboxToSource(t *testing.T) {

	// 1280x720 into 640x640 has scale 0.5 and 140 pixels of vertical padding
	lb := NewLetterbox(1280, 720, 640, 640)
	defer lb.Close()

	tests := []struct {
		x, y   float32
		expect image.Point
	}{
		{320, 320, image.Pt(640, 360)},
		{0, 140, image.Pt(0, 0)},
		{0, 0, image.Pt(0, 0)},
		{640, 640, image.Pt(1279, 719)},
	}

	for _, tc := range tests {
		if got := lb.ToSource(tc.x, tc.y); got != tc.expect {
			t.Errorf("ToSource(%.0f, %.0f) expected %v, got %v", tc.x, tc.y, tc.expect, got)
		}
	}
}

func TestDecodeHeatmaps(t *testing.T) {

	// 17 heatmaps of 16 rows by 12 columns for a 48x64 input, each heatmap
	// cell covers 4x4 input pixels
	prob := gocv.NewMatWithSizesWithScalar([]int{1, pose.NumParts, 16, 12},
		gocv.MatTypeCV32F, gocv.NewScalar(0, 0, 0, 0))
	defer prob.Close()

	wrist, err := prob.FromPtr(16, 12, gocv.MatTypeCV32F, 0, int(pose.LeftWrist))

	if err != nil {
		t.Fatalf("FromPtr failed: %v", err)
	}

	wrist.SetFloatAt(5, 3, 0.9)
	wrist.Close()

	// weak peak below threshold
	nose, err := prob.FromPtr(16, 12, gocv.MatTypeCV32F, 0, int(pose.Nose))

	if err != nil {
		t.Fatalf("FromPtr failed: %v", err)
	}

	nose.SetFloatAt(1, 1, 0.1)
	nose.Close()

	// source frame twice the input size, no padding
	lb := NewLetterbox(96, 128, 48, 64)
	defer lb.Close()

	kps, err := decodeHeatmaps(prob, lb, 48, 64, 0.3)

	if err != nil {
		t.Fatalf("decodeHeatmaps failed: %v", err)
	}

	got := kps[pose.LeftWrist]

	if got.X != 28 || got.Y != 44 {
		t.Errorf("left wrist expected (28, 44), got (%d, %d)", got.X, got.Y)
	}

	if got.Score < 0.89 || got.Score > 0.91 {
		t.Errorf("left wrist score expected 0.9, got %f", got.Score)
	}

	for i, kp := range kps {
		if pose.BodyPart(i) == pose.LeftWrist {
			continue
		}

		if kp.Detected() {
			t.Errorf("%s expected missing, got %+v", pose.BodyPart(i), kp)
		}
	}
}

func TestDecodeHeatmapsBadShape(t *testing.T) {

	prob := gocv.NewMatWithSizesWithScalar([]int{1, 5, 8, 8},
		gocv.MatTypeCV32F, gocv.NewScalar(0, 0, 0, 0))
	defer prob.Close()

	lb := NewLetterbox(64, 64, 32, 32)
	defer lb.Close()

	_, err := decodeHeatmaps(prob, lb, 32, 32, 0.3)

	if !errors.Is(err, ErrOutputShape) {
		t.Errorf("expected ErrOutputShape, got %v", err)
	}
}

func TestNewHeatmapMissingModel(t *testing.T) {

	_, err := NewHeatmap("/non/existent/model.onnx", "", DefaultParams())

	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad, got %v", err)
	}
}

func TestDecodeYOLOPose(t *testing.T) {

	const candidates = 4

	prob := gocv.NewMatWithSizesWithScalar([]int{1, yoloPoseRows, candidates},
		gocv.MatTypeCV32F, gocv.NewScalar(0, 0, 0, 0))
	defer prob.Close()

	data, err := prob.DataPtrFloat32()

	if err != nil {
		t.Fatalf("DataPtrFloat32 failed: %v", err)
	}

	set := func(row, idx int, v float32) {
		data[row*candidates+idx] = v
	}

	// candidate 1 is a weaker person, candidate 2 the strongest
	set(4, 1, 0.6)
	set(4, 2, 0.9)
	set(4, 3, 0.2)

	wrist := 5 + int(pose.LeftWrist)*3
	set(wrist, 1, 100)
	set(wrist+1, 1, 100)
	set(wrist+2, 1, 0.9)

	set(wrist, 2, 320)
	set(wrist+1, 2, 240)
	set(wrist+2, 2, 0.8)

	// nose of the best candidate below keypoint threshold
	set(5, 2, 50)
	set(6, 2, 50)
	set(7, 2, 0.1)

	// 1280x720 into 640x640, scale 0.5 with 140 pixels vertical padding
	lb := NewLetterbox(1280, 720, 640, 640)
	defer lb.Close()

	kps, err := decodeYOLOPose(prob, lb, YOLOPoseCOCOParams())

	if err != nil {
		t.Fatalf("decodeYOLOPose failed: %v", err)
	}

	got := kps[pose.LeftWrist]

	if got.X != 640 || got.Y != 200 {
		t.Errorf("left wrist expected (640, 200), got (%d, %d)", got.X, got.Y)
	}

	if kps[pose.Nose].Detected() {
		t.Errorf("nose below threshold expected missing, got %+v", kps[pose.Nose])
	}
}

func TestDecodeYOLOPoseNobody(t *testing.T) {

	prob := gocv.NewMatWithSizesWithScalar([]int{1, yoloPoseRows, 8},
		gocv.MatTypeCV32F, gocv.NewScalar(0, 0, 0, 0))
	defer prob.Close()

	lb := NewLetterbox(640, 640, 640, 640)
	defer lb.Close()

	kps, err := decodeYOLOPose(prob, lb, YOLOPoseCOCOParams())

	if err != nil {
		t.Fatalf("decodeYOLOPose failed: %v", err)
	}

	if kps != pose.MissingKeypoints() {
		t.Error("expected all keypoints missing when nobody is detected")
	}
}

func TestDecodeYOLOPoseBadShape(t *testing.T) {

	prob := gocv.NewMatWithSizesWithScalar([]int{1, 84, 8},
		gocv.MatTypeCV32F, gocv.NewScalar(0, 0, 0, 0))
	defer prob.Close()

	lb := NewLetterbox(640, 640, 640, 640)
	defer lb.Close()

	_, err := decodeYOLOPose(prob, lb, YOLOPoseCOCOParams())

	if !errors.Is(err, ErrOutputShape) {
		t.Errorf("expected ErrOutputShape, got %v", err)
	}
}

func TestNewYOLOPoseMissingModel(t *testing.T) {

	_, err := NewYOLOPose("/non/existent/yolov8n-pose.onnx", YOLOPoseCOCOParams())

	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected ErrModelLoad, got %v", err)
	}
}
