package logic

import (
	"fmt"
	"strings"

	"github.com/cswni/mailstack/common/service/compose"
	"github.com/cswni/mailstack/common/service/config"
)

// TraefikLabels builds the router and load balancer labels for a web facing
// service. Only services that declare a traefik port in the stack template
// get labels, everything else stays invisible to the proxy.
func TraefikLabels(cfg *config.Config, serviceName string, ext compose.ExtService) map[string]string {
	if !cfg.TraefikEnabled || ext.TraefikPort <= 0 {
		return nil
	}
	router := fmt.Sprintf("%s-%s", cfg.StackName, serviceName)
	rules := make([]string, 0)
	for _, san := range cfg.SanList() {
		rules = append(rules, fmt.Sprintf("Host(`%s`)", san))
	}
	labels := map[string]string{
		"traefik.enable":         "true",
		"traefik.docker.network": cfg.TraefikNetwork,
		fmt.Sprintf("traefik.http.routers.%s.rule", router):                      strings.Join(rules, " || "),
		fmt.Sprintf("traefik.http.routers.%s.entrypoints", router):               cfg.TraefikEntrypoint,
		fmt.Sprintf("traefik.http.services.%s.loadbalancer.server.port", router): fmt.Sprintf("%d", ext.TraefikPort),
	}
	if cfg.TraefikCertResolver != "" {
		labels[fmt.Sprintf("traefik.http.routers.%s.tls.certresolver", router)] = cfg.TraefikCertResolver
		labels[fmt.Sprintf("traefik.http.routers.%s.tls", router)] = "true"
	}
	return labels
}
