package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cswni/mailstack/common/service/compose"
)

func TestTraefikLabelsDisabled(t *testing.T) {
	asserter := assert.New(t)

	cfg := testConfig()
	asserter.Nil(TraefikLabels(cfg, "nginx", compose.ExtService{TraefikPort: 80}))

	cfg.TraefikEnabled = true
	asserter.Nil(TraefikLabels(cfg, "postfix", compose.ExtService{}))
}

func TestTraefikLabels(t *testing.T) {
	asserter := assert.New(t)

	cfg := testConfig()
	cfg.TraefikEnabled = true

	labels := TraefikLabels(cfg, "nginx", compose.ExtService{TraefikPort: 80})
	asserter.Equal("true", labels["traefik.enable"])
	asserter.Equal("traefik-public", labels["traefik.docker.network"])
	asserter.Equal("websecure", labels["traefik.http.routers.mailstack-nginx.entrypoints"])
	asserter.Equal("80", labels["traefik.http.services.mailstack-nginx.loadbalancer.server.port"])
	asserter.Equal(
		"Host(`mail.example.org`) || Host(`autoconfig.example.org`) || Host(`autodiscover.example.org`)",
		labels["traefik.http.routers.mailstack-nginx.rule"],
	)
	asserter.NotContains(labels, "traefik.http.routers.mailstack-nginx.tls")
}

func TestTraefikLabelsCertResolver(t *testing.T) {
	asserter := assert.New(t)

	cfg := testConfig()
	cfg.TraefikEnabled = true
	cfg.TraefikCertResolver = "letsencrypt"

	labels := TraefikLabels(cfg, "nginx", compose.ExtService{TraefikPort: 80})
	asserter.Equal("letsencrypt", labels["traefik.http.routers.mailstack-nginx.tls.certresolver"])
	asserter.Equal("true", labels["traefik.http.routers.mailstack-nginx.tls"])
}
