package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const pinnedRef = "ghcr.io/cswni/mailstack-postfix:1.0@sha256:2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae"

func TestImageDigestAlreadyPinned(t *testing.T) {
	asserter := assert.New(t)

	// a digested ref resolves without touching the registry
	resolved, err := ImageDigest(pinnedRef)
	asserter.NoError(err)
	asserter.Equal("sha256:2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae", resolved.String())
}

func TestImageDigestInvalidRef(t *testing.T) {
	asserter := assert.New(t)

	_, err := ImageDigest("UPPERCASE-is-not-a-ref")
	asserter.ErrorContains(err, "parse image ref")
}

func TestPinImageAlreadyPinned(t *testing.T) {
	asserter := assert.New(t)

	result, err := PinImage(pinnedRef)
	asserter.NoError(err)
	asserter.Equal(pinnedRef, result)
}
