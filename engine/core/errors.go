package core

import (
	"errors"
)

var (
	// ErrFrameSkipped is returned by the renderer when a frame was dropped
	// because the presentation surface had to be rebuilt. It is recoverable;
	// callers should simply move on to the next frame.
	ErrFrameSkipped = errors.New("frame skipped, presentation surface rebuilt")
)
