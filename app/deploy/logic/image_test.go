package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cswni/mailstack/common/accessor"
)

func TestPinnedRef(t *testing.T) {
	asserter := assert.New(t)

	images := []accessor.DeploymentImageOption{
		{Service: "mysql", Ref: "mariadb:10.11", Resolved: "mariadb:10.11@sha256:abc"},
		{Service: "redis", Ref: "redis:7-alpine"},
	}

	ref, original := pinnedRef(images, "mysql")
	asserter.Equal("mariadb:10.11@sha256:abc", ref)
	asserter.Equal("mariadb:10.11", original)

	// no digest means the tagged ref is used as-is
	ref, original = pinnedRef(images, "redis")
	asserter.Equal("redis:7-alpine", ref)
	asserter.Equal("redis:7-alpine", original)

	ref, original = pinnedRef(images, "unknown")
	asserter.Empty(ref)
	asserter.Empty(original)
}

func TestResolveImagesDisabled(t *testing.T) {
	asserter := assert.New(t)

	cfg := testConfig()
	cfg.ResolveImages = false

	wrapper, err := RenderStack(cfg)
	asserter.NoError(err)

	images := ResolveImages(cfg, wrapper)
	asserter.Len(images, len(wrapper.ServiceNames()))
	for _, item := range images {
		asserter.NotEmpty(item.Ref, item.Service)
		asserter.Empty(item.Resolved, item.Service)
	}
}
