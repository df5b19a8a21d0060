package stack

import (
	"fmt"

	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/cswni/mailstack/common/dao"
	"github.com/cswni/mailstack/common/types/define"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type History struct {
	console.Abstract
}

func (self History) GetName() string {
	return "stack:history"
}

func (self History) GetDescription() string {
	return "List past deployments from the journal"
}

func (self History) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
	command.Flags().Int("limit", 20, "Number of rows")
}

func (self History) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	limit, _ := cmd.Flags().GetInt("limit")
	cfg, err := logic.LoadConfig(envFile)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	rows, err := dao.Deployment.History(cfg.StackName, limit)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	if len(rows) == 0 {
		color.Warnln("No deployments recorded yet")
		return
	}
	for _, row := range rows {
		line := fmt.Sprintf("%s  %-7s  %-11s  %s",
			row.StartedAt.Format("2006-01-02 15:04:05"), row.Status, row.Step, row.RunID)
		switch row.Status {
		case define.DeployStatusDone:
			color.Successln(line)
		case define.DeployStatusFailed:
			color.Errorln(line, "  ", row.Message)
		default:
			color.Warnln(line)
		}
	}
}
