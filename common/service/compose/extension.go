package compose

// ExtensionServiceName is the per-service extension block in the stack
// descriptor.
const ExtensionServiceName = "x-mailstack"

// ExtService carries the deployment hints the plain compose schema cannot
// express.
type ExtService struct {
	// TraefikPort is the container port Traefik routes to when the proxy
	// integration is enabled.
	TraefikPort int `yaml:"traefik_port,omitempty" json:"traefik_port"`
	// Required marks the service's probes as fatal instead of warnings.
	Required bool `yaml:"required,omitempty" json:"required"`
	// SkippableBy names the config key that removes this service from the
	// stack (SKIP_CLAMD, SKIP_SOGO).
	SkippableBy string `yaml:"skippable_by,omitempty" json:"skippable_by"`
}
