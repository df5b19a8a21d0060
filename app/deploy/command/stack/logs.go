package stack

import (
	"fmt"
	"io"
	"os"

	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/cswni/mailstack/common/service/docker"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/gookit/color"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Logs struct {
	console.Abstract
}

func (self Logs) GetName() string {
	return "stack:logs"
}

func (self Logs) GetDescription() string {
	return "Tail the logs of one stack service"
}

func (self Logs) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
	command.Flags().String("service", "", "Service name, postfix for example")
	command.Flags().Int("tail", 0, "Number of lines from the end, 0 uses LOG_LINES")
	command.Flags().BoolP("follow", "f", false, "Keep streaming")
	command.Flags().Bool("timestamps", false, "Prefix lines with timestamps")
	_ = command.MarkFlagRequired("service")
}

func (self Logs) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	service, _ := cmd.Flags().GetString("service")
	tail, _ := cmd.Flags().GetInt("tail")
	follow, _ := cmd.Flags().GetBool("follow")
	timestamps, _ := cmd.Flags().GetBool("timestamps")

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

	if tail <= 0 {
		tail = cfg.LogLines
	}
	reader, err := client.ServiceLogs(client.Ctx, fmt.Sprintf("%s_%s", cfg.StackName, service), docker.ServiceLogsOption{
		Tail:       cast.ToString(tail),
		Follow:     follow,
		Timestamps: timestamps,
	})
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	defer func() {
		_ = reader.Close()
	}()
	if _, err = stdcopy.StdCopy(os.Stdout, os.Stderr, reader); err != nil && err != io.EOF {
		color.Errorln("Error: ", err.Error())
	}
}
