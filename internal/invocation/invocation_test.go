package invocation

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/intercept/internal/fault"
	"github.com/roach88/intercept/internal/ir"
)

var errAssertion = errors.New("assertion failed")

type suite struct {
	events []string
}

func (s *suite) Record(name string) { s.events = append(s.events, name) }

func (s *suite) Check(ok bool) error {
	if !ok {
		return errAssertion
	}
	return nil
}

func (s *suite) Explode() { panic("exploded") }

func (s *suite) Pair(a int64, b string) (int64, string) { return a, b }

func (s *suite) Join(parts ...string) int { return len(parts) }

func (s *suite) Missing() *suite { return nil }

func newSuite(prefix string) *suite { return &suite{events: []string{prefix}} }

func newSuiteE(fail bool) (*suite, error) {
	if fail {
		return nil, errAssertion
	}
	return &suite{}, nil
}

func method(t *testing.T, name string) *ir.Executable {
	t.Helper()
	exec, err := ir.MethodOf(reflect.TypeOf(&suite{}), name)
	require.NoError(t, err)
	return exec
}

func TestMethodInvocation_Proceed(t *testing.T) {
	s := &suite{}
	inv, err := NewMethod(method(t, "Record"), s, []any{"test"}, fault.DefaultPolicy())
	require.NoError(t, err)

	v, err := inv.Proceed()
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, []string{"test"}, s.events)
}

func TestMethodInvocation_Descriptor(t *testing.T) {
	s := &suite{}
	exec := method(t, "Record")
	inv, err := NewMethod(exec, s, []any{"x"}, fault.DefaultPolicy())
	require.NoError(t, err)

	target, ok := inv.Target()
	assert.True(t, ok)
	assert.Same(t, s, target)
	assert.Equal(t, reflect.TypeOf(s), inv.TargetType())
	assert.Same(t, exec, inv.Executable())

	args := inv.Arguments()
	args[0] = "mutated"
	assert.Equal(t, []any{"x"}, inv.Arguments(), "Arguments must return a copy")
}

func TestMethodInvocation_ErrorIdentityPreserved(t *testing.T) {
	inv, err := NewMethod(method(t, "Check"), &suite{}, []any{false}, fault.DefaultPolicy())
	require.NoError(t, err)

	_, err = inv.Proceed()
	assert.Same(t, errAssertion, err)
}

func TestMethodInvocation_PanicBecomesError(t *testing.T) {
	inv, err := NewMethod(method(t, "Explode"), &suite{}, nil, fault.DefaultPolicy())
	require.NoError(t, err)

	_, err = inv.Proceed()
	require.Error(t, err)
	assert.True(t, fault.IsPanic(err))
	assert.Contains(t, err.Error(), "exploded")
}

func TestMethodInvocation_FatalPanicPropagates(t *testing.T) {
	policy := fault.DefaultPolicy().With(func(v any) bool { return v == "exploded" })
	inv, err := NewMethod(method(t, "Explode"), &suite{}, nil, policy)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "exploded", func() { _, _ = inv.Proceed() })
}

func TestMethodInvocation_MultipleResults(t *testing.T) {
	inv, err := NewMethod(method(t, "Pair"), &suite{}, []any{int32(4), "b"}, fault.DefaultPolicy())
	require.NoError(t, err)

	v, err := inv.Proceed()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(4), "b"}, v)
}

func TestMethodInvocation_TypedNilResult(t *testing.T) {
	inv, err := NewMethod(method(t, "Missing"), &suite{}, nil, fault.DefaultPolicy())
	require.NoError(t, err)

	v, err := inv.Proceed()
	require.NoError(t, err)
	assert.True(t, v == nil, "typed nil result must be reported as untyped nil, got %#v", v)
}

func TestMethodInvocation_Variadic(t *testing.T) {
	inv, err := NewMethod(method(t, "Join"), &suite{}, []any{[]string{"a", "b", "c"}}, fault.DefaultPolicy())
	require.NoError(t, err)

	v, err := inv.Proceed()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestMethodInvocation_ArgumentTypeError(t *testing.T) {
	inv, err := NewMethod(method(t, "Record"), &suite{}, []any{42}, fault.DefaultPolicy())
	require.NoError(t, err)

	_, err = inv.Proceed()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument 0")
}

func TestNewMethod_Validation(t *testing.T) {
	_, err := NewMethod(method(t, "Record"), &suite{}, nil, fault.DefaultPolicy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects 1 arguments, got 0")

	_, err = NewMethod(method(t, "Record"), nil, []any{"x"}, fault.DefaultPolicy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bound target")

	_, err = NewMethod(nil, nil, nil, fault.DefaultPolicy())
	require.Error(t, err)
}

func TestMethodInvocation_Static(t *testing.T) {
	exec, err := ir.FunctionOf(reflect.TypeOf(suite{}), newSuite)
	require.NoError(t, err)

	inv, err := NewMethod(exec, "ignored", []any{"p"}, fault.DefaultPolicy())
	require.NoError(t, err)

	target, ok := inv.Target()
	assert.False(t, ok)
	assert.Nil(t, target)
	assert.Equal(t, reflect.TypeOf(suite{}), inv.TargetType())
}

func TestConstructorInvocation(t *testing.T) {
	exec, err := ir.ConstructorOf(newSuite)
	require.NoError(t, err)

	inv, err := NewConstructor(exec, []any{"init"}, fault.DefaultPolicy())
	require.NoError(t, err)

	_, ok := inv.Target()
	assert.False(t, ok)
	assert.Equal(t, reflect.TypeOf(&suite{}), inv.TargetType())

	v, err := inv.Proceed()
	require.NoError(t, err)
	require.IsType(t, &suite{}, v)
	assert.Equal(t, []string{"init"}, v.(*suite).events)
}

func TestConstructorInvocation_Error(t *testing.T) {
	exec, err := ir.ConstructorOf(newSuiteE)
	require.NoError(t, err)

	inv, err := NewConstructor(exec, []any{true}, fault.DefaultPolicy())
	require.NoError(t, err)

	v, err := inv.Proceed()
	assert.Nil(t, v)
	assert.ErrorIs(t, err, errAssertion)
}

func TestNewConstructor_RejectsMethod(t *testing.T) {
	_, err := NewConstructor(method(t, "Explode"), nil, fault.DefaultPolicy())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a constructor")
}

func TestUnit(t *testing.T) {
	ran := false
	v, err := Unit(func() error { ran = true; return nil }, fault.DefaultPolicy()).Proceed()
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.True(t, ran)

	_, err = Unit(func() error { return errAssertion }, fault.DefaultPolicy()).Proceed()
	assert.Same(t, errAssertion, err)

	_, err = Unit(func() error { panic("dyn") }, fault.DefaultPolicy()).Proceed()
	assert.True(t, fault.IsPanic(err))
}

func TestFunc(t *testing.T) {
	v, err := Func(func() (any, error) { return 7, nil }).Proceed()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
