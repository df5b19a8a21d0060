package stack

import (
	"fmt"

	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Render struct {
	console.Abstract
}

func (self Render) GetName() string {
	return "stack:render"
}

func (self Render) GetDescription() string {
	return "Print the resolved stack yaml without deploying"
}

func (self Render) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
}

func (self Render) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := logic.LoadConfig(envFile)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	wrapper, err := logic.RenderStack(cfg)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	content, err := wrapper.Yaml()
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	fmt.Print(string(content))
}
