// Package moExt 补充 mo.Option 的跨类型转换
package moExt

import "github.com/samber/mo"

// Map converts the value of input, if any. mo.Option.Map keeps the type.
func Map[T any, O any](input mo.Option[T], mapper func(T) O) mo.Option[O] {
	if input.IsAbsent() {
		return mo.None[O]()
	}
	return mo.Some(mapper(input.MustGet()))
}
