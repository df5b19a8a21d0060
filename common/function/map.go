package function

import (
	"cmp"

	"golang.org/x/exp/maps"
)

func IsEmptyMap[K cmp.Ordered, V interface{}](v map[K]V) bool {
	if v == nil {
		return true
	}
	if len(v) == 0 {
		return true
	}
	return false
}

// MergeMap copies src maps into a fresh map, later maps win on key conflict.
func MergeMap[K cmp.Ordered, V any](src ...map[K]V) map[K]V {
	result := make(map[K]V)
	for _, m := range src {
		maps.Copy(result, m)
	}
	return result
}
