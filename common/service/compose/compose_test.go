package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testStackYaml = `
services:
  mysql:
    image: mariadb:${IMAGE_TAG}
    x-mailstack:
      required: true
  sogo:
    image: ghcr.io/cswni/mailstack-sogo:${IMAGE_TAG}
    x-mailstack:
      traefik_port: 20000
      skippable_by: SKIP_SOGO
  clamd:
    image: clamav/clamav:1.4
    x-mailstack:
      skippable_by: SKIP_CLAMD
  rspamd:
    image: ghcr.io/cswni/mailstack-rspamd:${IMAGE_TAG}
    x-mailstack:
      required: true
`

func testWrapper(t *testing.T) *Wrapper {
	t.Helper()
	wrapper, err := NewCompose("mailstack",
		WithYamlContent("test", []byte(testStackYaml)),
		WithEnv(map[string]string{"IMAGE_TAG": "1.2.3"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	return wrapper
}

func TestInterpolation(t *testing.T) {
	asserter := assert.New(t)

	wrapper := testWrapper(t)
	service, _, err := wrapper.GetService("mysql")
	asserter.NoError(err)
	asserter.Equal("mariadb:1.2.3", service.Image)
}

func TestGetServiceExtension(t *testing.T) {
	asserter := assert.New(t)

	wrapper := testWrapper(t)

	_, ext, err := wrapper.GetService("sogo")
	asserter.NoError(err)
	asserter.Equal(20000, ext.TraefikPort)
	asserter.Equal("SKIP_SOGO", ext.SkippableBy)
	asserter.False(ext.Required)

	_, ext, err = wrapper.GetService("mysql")
	asserter.NoError(err)
	asserter.True(ext.Required)
	asserter.Empty(ext.SkippableBy)

	_, _, err = wrapper.GetService("unknown")
	asserter.Error(err)
}

func TestServiceNames(t *testing.T) {
	asserter := assert.New(t)

	asserter.Equal([]string{"clamd", "mysql", "rspamd", "sogo"}, testWrapper(t).ServiceNames())
}

func TestFilterSkipped(t *testing.T) {
	asserter := assert.New(t)

	wrapper := testWrapper(t)
	asserter.NoError(wrapper.FilterSkipped([]string{"SKIP_SOGO", "SKIP_CLAMD"}))
	asserter.Equal([]string{"mysql", "rspamd"}, wrapper.ServiceNames())

	// no active skips leaves the project alone
	wrapper = testWrapper(t)
	asserter.NoError(wrapper.FilterSkipped(nil))
	asserter.Len(wrapper.ServiceNames(), 4)
}

func TestFilterSkippedDanglingDependency(t *testing.T) {
	asserter := assert.New(t)

	yaml := `
services:
  sogo:
    image: sogo:latest
    x-mailstack:
      skippable_by: SKIP_SOGO
  nginx:
    image: nginx:latest
    depends_on:
      - sogo
`
	wrapper, err := NewCompose("mailstack", WithYamlContent("test", []byte(yaml)))
	asserter.NoError(err)

	err = wrapper.FilterSkipped([]string{"SKIP_SOGO"})
	asserter.ErrorContains(err, "nginx depends on sogo")
	asserter.ErrorContains(err, "SKIP_SOGO=y")
}

func TestYaml(t *testing.T) {
	asserter := assert.New(t)

	content, err := testWrapper(t).Yaml()
	asserter.NoError(err)
	asserter.Contains(string(content), "mariadb:1.2.3")
}
