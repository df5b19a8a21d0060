package stack

import (
	"fmt"

	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Ps struct {
	console.Abstract
}

func (self Ps) GetName() string {
	return "stack:ps"
}

func (self Ps) GetDescription() string {
	return "Show the running state of every stack service"
}

func (self Ps) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
}

func (self Ps) Handle(cmd *cobra.Command, args []string) {
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

	states, err := logic.ServiceStates(client.Ctx, client, cfg)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	if len(states) == 0 {
		color.Warnln("No services found, is the stack deployed?")
		return
	}
	fmt.Printf("%-12s %-11s %-7s  %s\n", "SERVICE", "MODE", "TASKS", "IMAGE")
	for _, state := range states {
		line := fmt.Sprintf("%-12s %-11s %d/%d      %s", state.Name, state.Mode, state.Running, state.Desired, state.Image)
		if state.Converged {
			color.Println(line)
		} else {
			color.Warnln(line, "  ", state.Message)
		}
	}
}
