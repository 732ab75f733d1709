package routing

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Router picks the backend for a collection of operands.
//
// Selection is a pure function of operand types:
//  1. the first specialized backend, in priority order, that accepts any operand
//  2. the plain backend, if it accepts every operand
//  3. the caller-supplied default
//
// Otherwise Find fails with ErrAmbiguousBackend.
type Router struct {
	plain       Backend
	specialized []Backend
	log         logrus.FieldLogger
}

// NewRouter creates a router. specialized backends are listed highest
// priority first.
func NewRouter(plain Backend, specialized ...Backend) *Router {
	return &Router{
		plain:       plain,
		specialized: specialized,
		log:         logrus.StandardLogger(),
	}
}

// SetLogger replaces the router's logger.
func (r *Router) SetLogger(l logrus.FieldLogger) {
	r.log = l
}

// Plain returns the plain (dense) backend.
func (r *Router) Plain() Backend {
	return r.plain
}

// Find returns the backend that should service values.
// def may be nil, in which case an empty or unrecognized collection fails
// with ErrAmbiguousBackend.
func (r *Router) Find(values []any, def Backend) (Backend, error) {
	for _, b := range r.specialized {
		for _, v := range values {
			if b.Accepts(v) {
				return b, nil
			}
		}
	}

	if len(values) > 0 && r.plain != nil && r.acceptsAll(values) {
		return r.plain, nil
	}

	if def != nil {
		r.log.WithFields(logrus.Fields{
			"backend":  def.Name(),
			"operands": len(values),
		}).Debug("routing to default backend")
		return def, nil
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no operands", ErrAmbiguousBackend)
	}
	return nil, fmt.Errorf("%w: first operand %T", ErrAmbiguousBackend, r.firstUnknown(values))
}

func (r *Router) acceptsAll(values []any) bool {
	for _, v := range values {
		if !r.plain.Accepts(v) {
			return false
		}
	}
	return true
}

func (r *Router) firstUnknown(values []any) any {
	if r.plain == nil {
		return values[0]
	}
	for _, v := range values {
		if !r.plain.Accepts(v) {
			return v
		}
	}
	return values[0]
}
