package posecapture

import "github.com/swdee/go-posecapture/camera"

// ErrDeviceUnavailable is returned when the camera can not be opened or
// started.  It is fatal to the pipeline.
var ErrDeviceUnavailable = camera.ErrDeviceUnavailable
