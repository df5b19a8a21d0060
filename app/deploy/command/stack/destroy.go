package stack

import (
	"bufio"
	"os"
	"strings"

	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Destroy struct {
	console.Abstract
}

func (self Destroy) GetName() string {
	return "stack:destroy"
}

func (self Destroy) GetDescription() string {
	return "Remove the stack's services, secrets and configs"
}

func (self Destroy) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
	command.Flags().Bool("volumes", false, "Also remove named volumes (mail data is lost)")
	command.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func (self Destroy) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	wipe, _ := cmd.Flags().GetBool("volumes")
	yes, _ := cmd.Flags().GetBool("yes")

	cfg, err := logic.LoadConfig(envFile)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	if !yes {
		color.Warnln("This removes every service of stack ", cfg.StackName, ".")
		if wipe {
			color.Warnln("--volumes is set, mailboxes and databases WILL BE DELETED.")
		}
		color.Print("Type the stack name to continue: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(line) != cfg.StackName {
			color.Errorln("Aborted")
			return
		}
	}

	client, err := logic.NewDockerClient(cfg)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	defer client.Close()

	if err = logic.NewDeployer(cfg, client).Destroy(client.Ctx, wipe); err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	color.Successln("Stack ", cfg.StackName, " removed")
}
