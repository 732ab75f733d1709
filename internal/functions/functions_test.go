package functions

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/sparsegrad/internal/dispatch"
	"github.com/born-ml/sparsegrad/internal/forward"
	"github.com/born-ml/sparsegrad/internal/routing"
	"github.com/born-ml/sparsegrad/internal/sparsevec"
	"github.com/born-ml/sparsegrad/internal/tensor"
)

func mustVec(t *testing.T, n int, idx []int, v any) *sparsevec.Vec {
	t.Helper()
	s, err := sparsevec.New(n, idx, v)
	require.NoError(t, err)
	return s
}

func TestDense_Operations(t *testing.T) {
	f := New(DefaultConfig())

	got, err := f.Dot([]float64{1, 2}, []float64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, 11.0, got)

	got, err = f.Where([]bool{true, false}, []float64{1, 2}, 0.0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, got)

	got, err = f.Sum(mat.NewVecDense(3, []float64{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, 6.0, got)

	got, err = f.BroadcastTo(2.0, tensor.Shape{3})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, got)
}

func TestForward_Operations(t *testing.T) {
	f := New(DefaultConfig())
	x := forward.Seed([]float64{1, 2, 3})

	tests := []struct {
		name string
		call func() (any, error)
		want []float64
	}{
		{"dot left", func() (any, error) { return f.Dot(x, []float64{1, 1, 1}) }, []float64{6}},
		{"dot right", func() (any, error) { return f.Dot(2.0, x) }, []float64{2, 4, 6}},
		{"where second", func() (any, error) { return f.Where([]bool{true, false, true}, x, 0.0) }, []float64{1, 0, 3}},
		{"where third", func() (any, error) { return f.Where([]bool{true, false, true}, 0.0, x) }, []float64{0, 2, 0}},
		{"sum", func() (any, error) { return f.Sum(x) }, []float64{6}},
		{"broadcast", func() (any, error) { return f.BroadcastTo(x, []int{3}) }, []float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.call()
			require.NoError(t, err)
			v, ok := got.(*forward.Value)
			require.True(t, ok, "got %T", got)
			assert.Equal(t, tt.want, v.Values())
		})
	}
}

type special struct{ tag string }

func TestGeneric_Extend(t *testing.T) {
	f := New(DefaultConfig())
	dot, err := f.Generic(OpDot)
	require.NoError(t, err)

	before, err := f.Dot(2.0, 3.0)
	require.NoError(t, err)

	st := reflect.TypeFor[special]()
	require.NoError(t, dot.Add(dispatch.Sig(st, st), func(args ...any) (any, error) {
		return args[0].(special).tag + args[1].(special).tag, nil
	}))

	got, err := f.Dot(special{"a"}, special{"b"})
	require.NoError(t, err)
	assert.Equal(t, "ab", got)

	// Previously resolvable operand types keep their implementation.
	after, err := f.Dot(2.0, 3.0)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	x := forward.Seed([]float64{1})
	got, err = f.Dot(x, 2.0)
	require.NoError(t, err)
	assert.IsType(t, &forward.Value{}, got)
}

func TestGeneric_Duplicate(t *testing.T) {
	f := New(DefaultConfig())
	for _, name := range []string{OpDot, OpWhere, OpSum, OpBroadcastTo, OpBranch} {
		g, err := f.Generic(name)
		require.NoError(t, err)
		assert.Equal(t, name, g.Name())

		sig := make(dispatch.Signature, len(g.Signatures()[0]))
		err = g.Add(sig, func(...any) (any, error) { return nil, nil })
		assert.True(t, errors.Is(err, dispatch.ErrDuplicateSignature), "%s: %v", name, err)
	}

	_, err := f.Generic("matmul")
	assert.True(t, errors.Is(err, ErrUnknownOperation))
}

func TestGeneric_Determinism(t *testing.T) {
	f := New(DefaultConfig())
	g, err := f.Generic(OpWhere)
	require.NoError(t, err)

	x := forward.Seed([]float64{1, 2})
	first, err := g.Resolve([]bool{true, false}, x, x)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := g.Resolve([]bool{false, true}, forward.Seed([]float64{3, 4}), x)
		require.NoError(t, err)
		assert.Equal(t, reflect.ValueOf(first).Pointer(), reflect.ValueOf(again).Pointer())
	}
}

func TestHstack(t *testing.T) {
	f := New(DefaultConfig())

	got, err := f.Hstack([]any{[]float64{1}, 2.0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got)

	got, err = f.Stack([]float64{1}, 2.0, []float64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, got)

	x := forward.Seed([]float64{1, 2})
	got, err = f.Stack(x, 5.0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 5}, got.(*forward.Value).Values())

	got, err = f.Stack(x, mustVec(t, 2, []int{1}, []float64{9}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 0, 9}, got.(*forward.Value).Values())

	sub, err := x.Index([]int{0})
	require.NoError(t, err)
	got, err = f.Stack(mustVec(t, 2, []int{1}, sub), 3.0)
	require.NoError(t, err)
	v := got.(*forward.Value)
	assert.Equal(t, []float64{0, 1, 3}, v.Values())
	assert.Equal(t, 1.0, v.Jacobian().At(1, 0))

	got, err = f.Stack([]float64{1}, mustVec(t, 2, []int{1}, []float64{9}))
	require.NoError(t, err)
	s := got.(*sparsevec.Vec)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []int{0, 2}, s.Indices())
}

func TestHstack_Errors(t *testing.T) {
	f := New(DefaultConfig())

	_, err := f.Hstack(nil)
	assert.True(t, errors.Is(err, routing.ErrEmptyBackend))

	_, err = f.Stack()
	assert.True(t, errors.Is(err, routing.ErrEmptyBackend))

	_, err = f.Hstack([]any{"x"})
	assert.True(t, errors.Is(err, routing.ErrAmbiguousBackend))
}

func TestSparsesum(t *testing.T) {
	f := New(DefaultConfig())

	dense := []routing.Term{
		mustVec(t, 3, []int{0, 1}, []float64{1, 2}),
		mustVec(t, 3, []int{1, 2}, []float64{10, 20}),
	}
	got, err := f.Sparsesum(dense)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 12, 20}, got)

	// Options reach the backend unchanged.
	got, err = f.Sparsesum(dense, routing.WithDuplicates(routing.DuplicateOverwrite))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 10, 20}, got)

	_, err = f.Sparsesum(dense, routing.WithDuplicates(routing.DuplicateReject))
	assert.True(t, errors.Is(err, routing.ErrDuplicateIndex))
}

func TestSparsesum_Default(t *testing.T) {
	f := New(DefaultConfig())

	got, err := f.Sparsesum(nil, routing.WithLength(3))
	require.NoError(t, err)
	s, ok := got.(*sparsevec.Vec)
	require.True(t, ok, "empty sparsesum must use the sparse-vector backend, got %T", got)
	assert.Equal(t, 3, s.Len())

	nested := []routing.Term{mustVec(t, 2, []int{0}, mat.NewVecDense(1, []float64{4}))}
	got, err = f.Sparsesum(nested)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 0}, got)
}

func TestRouter_Fallback(t *testing.T) {
	f := New(DefaultConfig())
	def := sparsevec.NewBackend()

	got, err := f.Router().Find(nil, def)
	require.NoError(t, err)
	assert.Same(t, def, got)

	_, err = f.Router().Find(nil, nil)
	assert.True(t, errors.Is(err, routing.ErrAmbiguousBackend))

	got, err = f.Router().Find([]any{1.0, []float64{2}}, def)
	require.NoError(t, err)
	assert.Equal(t, "dense", got.Name())
}

// tagBackend claims special operands ahead of the built-in backends.
type tagBackend struct{}

func (tagBackend) Name() string { return "tag" }
func (tagBackend) Accepts(v any) bool {
	_, ok := v.(special)
	return ok
}
func (tagBackend) Hstack(arrays []any) (any, error) { return len(arrays), nil }
func (tagBackend) Sparsesum(terms []routing.Term, _ ...routing.SumOption) (any, error) {
	return len(terms), nil
}

func TestConfig_Backends(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backends = []routing.Backend{tagBackend{}}
	f := New(cfg)

	got, err := f.Stack(1.0, special{"a"}, forward.Seed([]float64{1}))
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestLogging(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	cfg := DefaultConfig()
	cfg.Logger = logger
	f := New(cfg)

	registered := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "registered implementation" {
			registered++
		}
	}
	assert.Equal(t, 11, registered)

	hook.Reset()
	_, err := f.Branch([]bool{true, false, false}, constant(1), constant(0))
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "branch", entry.Message)
	assert.Equal(t, 1, entry.Data["true"])
	assert.Equal(t, 2, entry.Data["false"])

	hook.Reset()
	_, err = f.Sparsesum(nil)
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "sparsevec", hook.LastEntry().Data["backend"])
}
