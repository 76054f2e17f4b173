package edi

import "errors"

// Common sentinel errors for the edi package.
var (
	// ErrShapeMismatch is returned when the sensor and residual windows do
	// not share the same T×K shape, or when K does not match the configured
	// channel count.
	ErrShapeMismatch = errors.New("sensor and residual window shapes do not match")

	// ErrNoChannels is returned when a window has no channels or the
	// configuration declares none.
	ErrNoChannels = errors.New("no channels configured")

	// ErrInvalidConfig is returned for configurations that fail validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrBadSnapshot is returned when a snapshot cannot be decoded or was
	// taken from an incompatible detector.
	ErrBadSnapshot = errors.New("bad detector snapshot")
)
