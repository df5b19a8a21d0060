package stack

import (
	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Deploy struct {
	console.Abstract
}

func (self Deploy) GetName() string {
	return "stack:deploy"
}

func (self Deploy) GetDescription() string {
	return "Deploy or update the mail stack on the swarm"
}

func (self Deploy) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
}

func (self Deploy) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := logic.LoadConfig(envFile)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	client, err := logic.NewDockerClient(cfg)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	defer client.Close()

	deployer := logic.NewDeployer(cfg, client)
	deployer.Progress = func(step, message string) {
		if message != "" {
			color.Println("==> ", step, " ", message)
		} else {
			color.Println("==> ", step)
		}
	}
	row, err := deployer.Deploy(client.Ctx)
	if err != nil {
		if row != nil {
			color.Errorln("Deploy failed at step ", row.Step, ": ", err.Error())
		} else {
			color.Errorln("Error: ", err.Error())
		}
		return
	}
	color.Println("Run ", row.RunID)
	for _, state := range row.Report.Services {
		color.Println("  ", state.Name, " ", state.Running, "/", state.Desired)
	}
	color.Successln("Stack ", cfg.StackName, " deployed")
}
