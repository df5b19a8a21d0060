package function

import "strings"

func ErrorHasKeyword(e error, keyword ...string) bool {
	if e == nil {
		return false
	}
	for _, k := range keyword {
		if strings.Contains(e.Error(), k) {
			return true
		}
	}
	return false
}
