package extension

import "slices"

// Registry supplies the ordered extensions that apply to a scope.
// Order is registration order and defines interceptor nesting.
type Registry interface {
	Interceptors() []Interceptor
	Resolvers() []ParameterResolver
}

// List is an immutable Registry snapshot.
//
// The slices passed to NewList are copied so later mutation by the caller
// cannot change registration order.
type List struct {
	interceptors []Interceptor
	resolvers    []ParameterResolver
}

var _ Registry = (*List)(nil)

// NewList creates a registry snapshot.
func NewList(interceptors []Interceptor, resolvers []ParameterResolver) *List {
	return &List{
		interceptors: slices.Clone(interceptors),
		resolvers:    slices.Clone(resolvers),
	}
}

// Interceptors returns the interceptors in registration order.
func (l *List) Interceptors() []Interceptor {
	if l == nil {
		return nil
	}
	return slices.Clone(l.interceptors)
}

// Resolvers returns the resolvers in registration order.
func (l *List) Resolvers() []ParameterResolver {
	if l == nil {
		return nil
	}
	return slices.Clone(l.resolvers)
}
