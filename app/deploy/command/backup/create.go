package backup

import (
	"context"

	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/pkg/support/facade"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Create struct {
	console.Abstract
}

func (self Create) GetName() string {
	return "backup:create"
}

func (self Create) GetDescription() string {
	return "Archive the stack configuration, certificates and journal"
}

func (self Create) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
	command.Flags().String("output", "", "Archive path, default under DATA_ROOT")
}

func (self Create) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	output, _ := cmd.Flags().GetString("output")
	cfg, err := logic.LoadConfig(envFile)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	target, err := logic.CreateBackup(context.Background(), cfg, facade.GetConfig().GetString("app.version"), output)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	color.Println("Wrote ", target)
	color.Successln("Success")
}
