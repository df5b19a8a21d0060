package logic

import (
	"errors"

	"github.com/cswni/mailstack/common/service/config"
	"github.com/we7coreteam/w7-rangine-go/v2/pkg/support/facade"
)

// Config resolves the deployment config the server was started with.
func Config() (*config.Config, error) {
	var cfg *config.Config
	if err := facade.GetContainer().NamedResolve(&cfg, "mailstack-config"); err != nil {
		return nil, errors.New("deployment config not loaded")
	}
	return cfg, nil
}
