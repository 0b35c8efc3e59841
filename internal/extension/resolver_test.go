package extension

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/intercept/internal/ir"
)

func paramOf[T any](index int) ParameterContext {
	return ParameterContext{Parameter: ir.Parameter{Index: index, Name: "p", Type: reflect.TypeFor[T]()}}
}

func TestForType(t *testing.T) {
	r := ForType("ints", func(_ context.Context, pc ParameterContext) (int, error) {
		return pc.Index() * 10, nil
	})
	ctx := context.Background()

	assert.True(t, r.SupportsParameter(ctx, paramOf[int](3)))
	assert.False(t, r.SupportsParameter(ctx, paramOf[int64](3)))
	assert.False(t, r.SupportsParameter(ctx, paramOf[any](3)))

	v, err := r.ResolveParameter(ctx, paramOf[int](3))
	require.NoError(t, err)
	assert.Equal(t, 30, v)
	assert.Equal(t, "ints", NameOf(r))
}

func TestValue(t *testing.T) {
	r := Value("greeting", "hello")

	assert.True(t, r.SupportsParameter(context.Background(), paramOf[string](0)))
	v, err := r.ResolveParameter(context.Background(), paramOf[string](0))
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestResolverFunc(t *testing.T) {
	errNope := errors.New("nope")
	r := &ResolverFunc{
		ID: "failing",
		Resolve: func(context.Context, ParameterContext) (any, error) {
			return nil, errNope
		},
	}

	assert.False(t, r.SupportsParameter(context.Background(), paramOf[int](0)), "nil Supports never matches")
	_, err := r.ResolveParameter(context.Background(), paramOf[int](0))
	assert.Same(t, errNope, err)
}
