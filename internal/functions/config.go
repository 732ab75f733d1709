package functions

import (
	"github.com/sirupsen/logrus"

	"github.com/born-ml/sparsegrad/internal/routing"
)

// Config controls how a Functions set is built.
type Config struct {
	// Logger receives debug-level registration, routing and branch events.
	Logger logrus.FieldLogger

	// Backends are extra specialized routing backends. They take priority
	// over the built-in forward and sparsevec backends.
	Backends []routing.Backend
}

// DefaultConfig returns a configuration using the logrus standard logger
// and only the built-in backends.
func DefaultConfig() Config {
	return Config{
		Logger: logrus.StandardLogger(),
	}
}
