package camera

import "errors"

// ErrDeviceUnavailable is returned when the camera source can not be opened
// or stops delivering frames.  It is fatal to the capture session.
var ErrDeviceUnavailable = errors.New("camera device unavailable")

// ErrClosed is returned by Start when the device was closed before it was
// started
var ErrClosed = errors.New("camera device closed")
