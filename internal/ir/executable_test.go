package ir

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calculator struct{ base int }

func (c *calculator) Add(a int, b int) int { return c.base + a + b }

func (c *calculator) Reset() error { return nil }

func newCalculator(base int) *calculator { return &calculator{base: base} }

func newCalculatorE(base int) (*calculator, error) {
	if base < 0 {
		return nil, errors.New("negative base")
	}
	return &calculator{base: base}, nil
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestMethodOf(t *testing.T) {
	exec, err := MethodOf(reflect.TypeOf(&calculator{}), "Add", "a", "b")
	require.NoError(t, err)

	assert.Equal(t, "Add", exec.Name)
	assert.Equal(t, KindMethod, exec.Kind)
	assert.True(t, exec.HasReceiver())
	require.Len(t, exec.Params, 2)
	assert.Equal(t, Parameter{Index: 0, Name: "a", Type: reflect.TypeOf(0)}, exec.Params[0])
	assert.Equal(t, "b", exec.Params[1].Name)
	assert.False(t, exec.ReturnsError())
	assert.Equal(t, "(*ir.calculator) Add(int, int) int", exec.Signature())
	assert.Equal(t, "method (*ir.calculator) Add(int, int) int", exec.String())
}

func TestMethodOf_DefaultParamNames(t *testing.T) {
	exec, err := MethodOf(reflect.TypeOf(&calculator{}), "Add")
	require.NoError(t, err)
	assert.Equal(t, "arg0", exec.Params[0].Name)
	assert.Equal(t, "int arg1", exec.Params[1].String())
}

func TestMethodOf_Missing(t *testing.T) {
	_, err := MethodOf(reflect.TypeOf(&calculator{}), "Multiply")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Multiply")

	_, err = MethodOf(nil, "Add")
	require.Error(t, err)
}

func TestMethodOf_ReturnsError(t *testing.T) {
	exec, err := MethodOf(reflect.TypeOf(&calculator{}), "Reset")
	require.NoError(t, err)
	assert.True(t, exec.ReturnsError())
	assert.Empty(t, exec.Params)
}

func TestConstructorOf(t *testing.T) {
	exec, err := ConstructorOf(newCalculator, "base")
	require.NoError(t, err)

	assert.Equal(t, KindConstructor, exec.Kind)
	assert.Equal(t, "newCalculator", exec.Name)
	assert.Equal(t, reflect.TypeOf(&calculator{}), exec.DeclaringType)
	assert.False(t, exec.HasReceiver())
	assert.Equal(t, "constructor newCalculator(int) *ir.calculator", exec.String())
}

func TestConstructorOf_WithError(t *testing.T) {
	exec, err := ConstructorOf(newCalculatorE)
	require.NoError(t, err)
	assert.True(t, exec.ReturnsError())
	assert.Equal(t, "newCalculatorE(int) (*ir.calculator, error)", exec.Signature())
}

func TestConstructorOf_Invalid(t *testing.T) {
	_, err := ConstructorOf(42)
	require.Error(t, err)

	_, err = ConstructorOf(func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must return")

	_, err = ConstructorOf(func() error { return nil })
	require.Error(t, err)
}

func TestFunctionOf(t *testing.T) {
	exec, err := FunctionOf(reflect.TypeOf(calculator{}), sum, "xs")
	require.NoError(t, err)

	assert.Equal(t, "sum", exec.Name)
	assert.False(t, exec.HasReceiver())
	assert.Equal(t, []reflect.Type{reflect.TypeOf([]int(nil))}, exec.ParamTypes())
	assert.Equal(t, "ir.calculator.sum([]int) int", exec.Signature())

	_, err = FunctionOf(nil, "not a func")
	require.Error(t, err)
}

func TestExecutableKind_Label(t *testing.T) {
	assert.Equal(t, "method", KindMethod.Label())
	assert.Equal(t, "constructor", KindConstructor.Label())
}

func TestBind(t *testing.T) {
	recv := reflect.TypeOf(&calculator{})
	ft := reflect.FuncOf([]reflect.Type{recv, reflect.TypeOf("")}, []reflect.Type{reflect.TypeOf(0)}, false)
	fn := reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		return []reflect.Value{reflect.ValueOf(len(in[1].String()))}
	})

	exec, err := Bind(recv, "Measure", fn.Interface(), "text")
	require.NoError(t, err)
	assert.Equal(t, "Measure", exec.Name)
	assert.True(t, exec.HasReceiver())
	require.Len(t, exec.Params, 1)
	assert.Equal(t, "string text", exec.Params[0].String())
	assert.Equal(t, "(*ir.calculator) Measure(string) int", exec.Signature())

	_, err = Bind(reflect.TypeOf(0), "Measure", fn.Interface())
	assert.Error(t, err)
	_, err = Bind(recv, "Measure", 42)
	assert.Error(t, err)
}

func TestExecutable_WithName(t *testing.T) {
	exec, err := ConstructorOf(newCalculator)
	require.NoError(t, err)

	renamed := exec.WithName("build")
	assert.Equal(t, "build", renamed.Name)
	assert.Equal(t, "newCalculator", exec.Name)
	assert.Equal(t, exec.Params, renamed.Params)
}
