// Package dispatch selects an implementation for a generic operation from the
// runtime types of its operands.
//
// A Generic holds a table of Signature → Func entries. Registration (Add) is
// serialized and publishes a new immutable table; dispatch (Resolve, Call)
// reads the current table without locking.
package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Common errors.
var (
	ErrDuplicateSignature = errors.New("signature already registered")
	ErrNoImplementation   = errors.New("no implementation for operand types")
)

// Func is an implementation of a generic operation.
type Func func(args ...any) (any, error)

type entry struct {
	sig Signature
	fn  Func
}

// table is never mutated once published.
type table struct {
	entries []entry
	exact   map[string]int // signature key -> index into entries
}

// Generic is a named operation with per-signature implementations.
type Generic struct {
	name     string
	fallback Func
	log      logrus.FieldLogger

	mu  sync.Mutex // serializes Add
	tab atomic.Pointer[table]
}

// Option configures a Generic.
type Option func(*Generic)

// WithDefault sets the implementation used when no signature matches.
func WithDefault(fn Func) Option {
	return func(g *Generic) {
		g.fallback = fn
	}
}

// WithLogger sets the logger used for registration events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(g *Generic) {
		g.log = l
	}
}

// New creates an empty generic operation.
func New(name string, opts ...Option) *Generic {
	g := &Generic{
		name: name,
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.tab.Store(&table{exact: map[string]int{}})
	return g
}

// Name returns the operation name.
func (g *Generic) Name() string {
	return g.name
}

// Add registers fn for sig.
// Registering a signature twice returns ErrDuplicateSignature and leaves the
// first registration in place.
func (g *Generic) Add(sig Signature, fn Func) error {
	if fn == nil {
		return fmt.Errorf("%s%s: nil implementation", g.name, sig)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	cur := g.tab.Load()
	key := sig.key()
	if _, dup := cur.exact[key]; dup {
		return fmt.Errorf("%w: %s%s", ErrDuplicateSignature, g.name, sig)
	}

	next := &table{
		entries: make([]entry, len(cur.entries), len(cur.entries)+1),
		exact:   make(map[string]int, len(cur.exact)+1),
	}
	copy(next.entries, cur.entries)
	for k, v := range cur.exact {
		next.exact[k] = v
	}
	next.entries = append(next.entries, entry{sig: append(Signature(nil), sig...), fn: fn})
	next.exact[key] = len(next.entries) - 1
	g.tab.Store(next)

	g.log.WithFields(logrus.Fields{
		"op":        g.name,
		"signature": sig.String(),
	}).Debug("registered implementation")
	return nil
}

// Signatures returns the registered signatures in registration order.
func (g *Generic) Signatures() []Signature {
	cur := g.tab.Load()
	out := make([]Signature, len(cur.entries))
	for i, e := range cur.entries {
		out[i] = append(Signature(nil), e.sig...)
	}
	return out
}

// Resolve returns the implementation for the operand types of args.
//
// Lookup order:
//  1. the signature equal to the operands' concrete types
//  2. the compatible signature of the same arity with the highest score
//     (exact type 2, interface 1, Any 0 per position); ties go to the
//     earliest registration
//  3. the default implementation, if any
func (g *Generic) Resolve(args ...any) (Func, error) {
	cur := g.tab.Load()
	types := SignatureOf(args...)

	if i, ok := cur.exact[types.key()]; ok {
		return cur.entries[i].fn, nil
	}

	best, bestScore := -1, -1
	for i, e := range cur.entries {
		if score := e.sig.match(types); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		return cur.entries[best].fn, nil
	}

	if g.fallback != nil {
		return g.fallback, nil
	}
	return nil, fmt.Errorf("%w: %s%s", ErrNoImplementation, g.name, types)
}

// Call resolves and invokes the implementation for args.
// Errors returned by the implementation are passed through unchanged.
func (g *Generic) Call(args ...any) (any, error) {
	fn, err := g.Resolve(args...)
	if err != nil {
		return nil, err
	}
	return fn(args...)
}
