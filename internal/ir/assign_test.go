package ir

import (
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type port int

type order struct{ id string }

type invoice struct{ id string }

type tags []string

func TestIsAssignable(t *testing.T) {
	tests := []struct {
		name  string
		value any
		typ   reflect.Type
		want  bool
	}{
		{"nil to pointer", nil, reflect.TypeOf(&calculator{}), true},
		{"nil to interface", nil, reflect.TypeOf((*io.Reader)(nil)).Elem(), true},
		{"nil to slice", nil, reflect.TypeOf([]string(nil)), true},
		{"nil to int", nil, reflect.TypeOf(0), false},
		{"nil to string", nil, reflect.TypeOf(""), false},
		{"nil to struct", nil, reflect.TypeOf(calculator{}), false},
		{"exact", "x", reflect.TypeOf(""), true},
		{"implements interface", strings.NewReader("x"), reflect.TypeOf((*io.Reader)(nil)).Elem(), true},
		{"named underlying", 8080, reflect.TypeOf(port(0)), true},
		{"struct with same fields", invoice{}, reflect.TypeOf(order{}), false},
		{"pointer to struct with same fields", &invoice{}, reflect.TypeOf(&order{}), false},
		{"unnamed slice to named slice", []string{"a"}, reflect.TypeOf(tags(nil)), true},
		{"named slice to other slice type", tags{"a"}, reflect.TypeOf([][]byte(nil)), false},
		{"int32 widens to int64", int32(1), reflect.TypeOf(int64(0)), true},
		{"int64 narrows to int32", int64(1), reflect.TypeOf(int32(0)), false},
		{"uint8 widens to int16", uint8(1), reflect.TypeOf(int16(0)), true},
		{"uint32 to int32", uint32(1), reflect.TypeOf(int32(0)), false},
		{"int to float64", 3, reflect.TypeOf(0.0), true},
		{"float32 widens to float64", float32(1), reflect.TypeOf(0.0), true},
		{"float64 to float32", 1.0, reflect.TypeOf(float32(0)), false},
		{"float to int", 1.5, reflect.TypeOf(0), false},
		{"string to int", "1", reflect.TypeOf(0), false},
		{"int to string", 65, reflect.TypeOf(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAssignable(tt.value, tt.typ))
		})
	}
}

func TestValueFor(t *testing.T) {
	v, err := ValueFor(reflect.TypeOf(int64(0)), int32(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.Interface())

	v, err = ValueFor(reflect.TypeOf(port(0)), 8080)
	require.NoError(t, err)
	assert.Equal(t, port(8080), v.Interface())

	v, err = ValueFor(reflect.TypeOf(&calculator{}), nil)
	require.NoError(t, err)
	assert.True(t, v.IsNil())

	_, err = ValueFor(reflect.TypeOf(order{}), invoice{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ir.invoice is not assignable to ir.order")

	_, err = ValueFor(reflect.TypeOf(0), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}

func TestTypeNameOf(t *testing.T) {
	assert.Equal(t, "nil", TypeNameOf(nil))
	assert.Equal(t, "int", TypeNameOf(1))
	assert.Equal(t, "*ir.calculator", TypeNameOf(&calculator{}))
}
