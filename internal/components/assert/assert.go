// Package assert panics on programmer errors at construction time.
package assert

import "fmt"

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}

func Positive[T ~int | ~int64 | ~float64](value T) {
	if value <= 0 {
		panic(fmt.Sprintf("expected a positive value, got %v", value))
	}
}
