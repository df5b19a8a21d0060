package logic

import (
	"embed"
	"os"

	"github.com/cswni/mailstack/common/service/compose"
	"github.com/cswni/mailstack/common/service/config"
	"github.com/we7coreteam/w7-rangine-go/v2/pkg/support/facade"
)

// StackContent returns the stack template, the STACK_FILE override when set
// or the embedded default.
func StackContent(cfg *config.Config) ([]byte, error) {
	if cfg.StackFile != "" {
		return os.ReadFile(cfg.StackFile)
	}
	var asset embed.FS
	if err := facade.GetContainer().NamedResolve(&asset, "asset"); err != nil {
		return nil, err
	}
	return asset.ReadFile("asset/stack.yaml")
}

func NginxConfContent() ([]byte, error) {
	var asset embed.FS
	if err := facade.GetContainer().NamedResolve(&asset, "asset"); err != nil {
		return nil, err
	}
	return asset.ReadFile("asset/nginx.conf")
}

// RenderStack interpolates the template with the deployment env and drops
// the services the operator skipped.
func RenderStack(cfg *config.Config) (*compose.Wrapper, error) {
	content, err := StackContent(cfg)
	if err != nil {
		return nil, err
	}
	wrapper, err := compose.NewCompose(cfg.StackName,
		compose.WithYamlContent(cfg.StackName, content),
		compose.WithEnv(cfg.EnvMap()),
	)
	if err != nil {
		return nil, err
	}
	if err = wrapper.FilterSkipped(ActiveSkips(cfg)); err != nil {
		return nil, err
	}
	return wrapper, nil
}

func ActiveSkips(cfg *config.Config) []string {
	skips := make([]string, 0)
	if cfg.SkipClamd {
		skips = append(skips, "SKIP_CLAMD")
	}
	if cfg.SkipSogo {
		skips = append(skips, "SKIP_SOGO")
	}
	return skips
}
