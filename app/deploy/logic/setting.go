package logic

import (
	"github.com/cswni/mailstack/common/service/config"
	"github.com/cswni/mailstack/common/service/docker"
	"github.com/cswni/mailstack/common/service/storage"
	"github.com/we7coreteam/w7-rangine-go/v2/pkg/support/facade"
)

// LoadConfig reads the env file, moves the data root and makes the api key
// visible to the http layer. Every command funnels through here.
func LoadConfig(envFile string) (*config.Config, error) {
	if envFile == "" {
		envFile = storage.Local{}.GetEnvFilePath()
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	storage.SetDataRoot(cfg.DataRoot)
	facade.GetConfig().Set("mailstack.api_key", cfg.ApiKey)
	facade.GetConfig().Set("mailstack.hostname", cfg.Hostname)
	return cfg, nil
}

func NewDockerClient(cfg *config.Config) (*docker.Client, error) {
	client, err := docker.NewClientWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	docker.InstallSdk(client)
	return client, nil
}
