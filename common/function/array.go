package function

import "cmp"

func Ptr[T any](v T) *T {
	return &v
}

func IsEmptyArray[T interface{}](v []T) bool {
	if v == nil {
		return true
	}
	if len(v) == 0 {
		return true
	}
	return false
}

func InArray[T cmp.Ordered](v []T, item T) bool {
	if v == nil {
		return false
	}
	for _, t := range v {
		if t == item {
			return true
		}
	}
	return false
}

// PluckArrayWalk maps items to a new slice, dropping entries whose callback
// returns false.
func PluckArrayWalk[T any, R any](items []T, call func(item T) (R, bool)) []R {
	result := make([]R, 0, len(items))
	for _, item := range items {
		if v, ok := call(item); ok {
			result = append(result, v)
		}
	}
	return result
}

func PluckArrayMapWalk[T any, K cmp.Ordered, V any](items []T, call func(item T) (K, V, bool)) map[K]V {
	result := make(map[K]V)
	for _, item := range items {
		if k, v, ok := call(item); ok {
			result[k] = v
		}
	}
	return result
}

func IndexArrayWalk[T any](items []T, call func(item T) bool) (int, bool) {
	for i, item := range items {
		if call(item) {
			return i, true
		}
	}
	return 0, false
}
