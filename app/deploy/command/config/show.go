package config

import (
	"fmt"
	"sort"

	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Show struct {
	console.Abstract
}

func (self Show) GetName() string {
	return "config:show"
}

func (self Show) GetDescription() string {
	return "Print the effective configuration with secrets masked"
}

func (self Show) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
	command.Flags().Bool("reveal", false, "Print secrets in clear text")
}

func (self Show) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	reveal, _ := cmd.Flags().GetBool("reveal")
	cfg, err := logic.LoadConfig(envFile)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	shown := cfg.Masked()
	if reveal {
		shown = *cfg
	}
	env := shown.EnvMap()
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%s=%s\n", key, env[key])
	}
	color.Println("config hash: ", cfg.Hash())
}
