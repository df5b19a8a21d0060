package config

import (
	"github.com/cswni/mailstack/common/service/config"
	"github.com/cswni/mailstack/common/service/storage"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Init struct {
	console.Abstract
}

func (self Init) GetName() string {
	return "config:init"
}

func (self Init) GetDescription() string {
	return "Write an example env file with generated secrets"
}

func (self Init) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Target path, default ./mailstack.env")
	command.Flags().Bool("force", false, "Overwrite an existing file")
}

func (self Init) Handle(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("env-file")
	force, _ := cmd.Flags().GetBool("force")
	if path == "" {
		path = storage.Local{}.GetEnvFilePath()
	}
	if err := config.WriteExample(path, force); err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	color.Println("Wrote ", path)
	color.Println("Set MAILSTACK_HOSTNAME and review the generated secrets before deploying.")
	color.Successln("Success")
}
