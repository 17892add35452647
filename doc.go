/*
go-posecapture is a real-time pose capture pipeline built on GoCV.  Frames
from a camera are handed to a pose estimator without ever waiting on it,
the most recent keypoint snapshot is drawn over every frame as markers and
skeleton joints, and a posture feedback state is evaluated and shown with
the annotated frame.

Two non-blocking guards keep the pipeline moving.  The capture cycle guard
drops a camera tick when the previous cycle is still running, and the
inference gate skips a frame when an estimation is still in progress.  The
pose snapshot is replaced as a whole, so rendering always sees one complete
set of keypoints.

See example/posecapture for a program wiring a camera, DNN estimator, MJPEG
stream and window together.
*/
package posecapture
