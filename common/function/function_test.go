package function

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInArray(t *testing.T) {
	asserter := assert.New(t)

	asserter.True(InArray([]string{"a", "b"}, "b"))
	asserter.False(InArray([]string{"a", "b"}, "c"))
	asserter.False(InArray(nil, "a"))
	asserter.True(InArray([]int{25, 465, 587}, 587))
}

func TestIsEmpty(t *testing.T) {
	asserter := assert.New(t)

	asserter.True(IsEmptyArray[string](nil))
	asserter.True(IsEmptyArray([]string{}))
	asserter.False(IsEmptyArray([]string{"a"}))

	asserter.True(IsEmptyMap[string, int](nil))
	asserter.False(IsEmptyMap(map[string]int{"a": 1}))
}

func TestPluckArrayWalk(t *testing.T) {
	asserter := assert.New(t)

	result := PluckArrayWalk([]int{1, 2, 3, 4}, func(item int) (string, bool) {
		if item%2 == 0 {
			return strings.Repeat("x", item), true
		}
		return "", false
	})
	asserter.Equal([]string{"xx", "xxxx"}, result)
}

func TestPluckArrayMapWalk(t *testing.T) {
	asserter := assert.New(t)

	type service struct {
		name  string
		image string
	}
	items := []service{{"mysql", "mariadb"}, {"redis", "redis"}, {"skip", ""}}
	result := PluckArrayMapWalk(items, func(item service) (string, string, bool) {
		return item.name, item.image, item.image != ""
	})
	asserter.Len(result, 2)
	asserter.Equal("mariadb", result["mysql"])
}

func TestIndexArrayWalk(t *testing.T) {
	asserter := assert.New(t)

	index, found := IndexArrayWalk([]string{"a", "b", "c"}, func(item string) bool {
		return item == "c"
	})
	asserter.True(found)
	asserter.Equal(2, index)

	_, found = IndexArrayWalk([]string{"a"}, func(item string) bool {
		return false
	})
	asserter.False(found)
}

func TestGetSha256(t *testing.T) {
	asserter := assert.New(t)

	asserter.Equal(
		"sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		GetSha256([]byte("abc")),
	)
	asserter.Equal(GetSha256([]byte("abc")), GetSha256([]byte("abc")))
	asserter.NotEqual(GetSha256([]byte("abc")), GetSha256([]byte("abd")))
}

func TestGetRandomPassword(t *testing.T) {
	asserter := assert.New(t)

	password := GetRandomPassword(24)
	asserter.Len(password, 24)
	for _, r := range password {
		asserter.Contains(passwordChars, string(r))
	}
	asserter.NotEqual(GetRandomPassword(24), GetRandomPassword(24))
}

func TestSplitCommandArray(t *testing.T) {
	asserter := assert.New(t)

	asserter.Empty(SplitCommandArray(""))
	asserter.Equal([]string{"echo", "hello world"}, SplitCommandArray(`echo "hello world"`))
	asserter.Equal([]string{"sh", "-c", "date"}, SplitCommandArray("sh -c date"))
}

func TestErrorHasKeyword(t *testing.T) {
	asserter := assert.New(t)

	err := errors.New("No such network: mailstack-net")
	asserter.True(ErrorHasKeyword(err, "No such network"))
	asserter.True(ErrorHasKeyword(err, "nope", "mailstack-net"))
	asserter.False(ErrorHasKeyword(err, "timeout"))
	asserter.False(ErrorHasKeyword(nil, "anything"))
}
