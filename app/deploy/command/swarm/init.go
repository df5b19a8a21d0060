package swarm

import (
	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Init struct {
	console.Abstract
}

func (self Init) GetName() string {
	return "swarm:init"
}

func (self Init) GetDescription() string {
	return "Initialize a single node swarm on the target engine"
}

func (self Init) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
	command.Flags().String("advertise-addr", "", "Address other nodes would use to reach this manager")
}

func (self Init) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	advertiseAddr, _ := cmd.Flags().GetString("advertise-addr")

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

	created, nodeId, err := client.SwarmEnsure(client.Ctx, advertiseAddr)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	if created {
		color.Println("Swarm initialized, manager node ", nodeId)
	} else {
		color.Println("Engine is already a swarm manager, node ", nodeId)
	}
	color.Successln("Success")
}
