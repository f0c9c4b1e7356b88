package atomic

import "errors"

// Domain errors for world construction.
var (
	// ErrInvalidConfig indicates a configuration that cannot build a World.
	ErrInvalidConfig = errors.New("atomic: invalid config")

	// ErrParticleCount indicates explicit particle state that does not match the configured count.
	ErrParticleCount = errors.New("atomic: particle count mismatch")
)
