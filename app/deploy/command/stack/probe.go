package stack

import (
	"context"
	"fmt"

	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/cswni/mailstack/common/service/notice"
	"github.com/cswni/mailstack/common/service/probe"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Probe struct {
	console.Abstract
}

func (self Probe) GetName() string {
	return "stack:probe"
}

func (self Probe) GetDescription() string {
	return "Check the mail endpoints of a deployed stack"
}

func (self Probe) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
	command.Flags().Bool("send-test-mail", false, "Submit a test mail to postmaster@<domain> after the checks")
}

func (self Probe) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := logic.LoadConfig(envFile)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}

	prober := probe.New(
		probe.WithTimeout(cfg.ProbeTimeout),
		probe.WithRetries(cfg.ProbeRetries),
	)
	report := prober.Run(context.Background(), probe.Endpoints(*cfg))
	for _, result := range report.Results {
		label := "optional"
		if result.Endpoint.Required {
			label = "required"
		}
		if result.Ok {
			color.Successln("ok    ", result.Endpoint.Name, " (", label, ") ", result.Latency.String())
		} else {
			color.Errorln("fail  ", result.Endpoint.Name, " (", label, ") ", result.Message)
		}
	}
	if !report.Ok() {
		color.Errorln("Required endpoints unreachable")
		return
	}
	color.Successln("All required endpoints answered")

	if sendTestMail, _ := cmd.Flags().GetBool("send-test-mail"); sendTestMail {
		recipient := fmt.Sprintf("postmaster@%s", cfg.Domain())
		notifier, err := notice.New(
			notice.WithSubmission(cfg.Hostname, cfg.SubmissionPort),
			notice.WithRecipient(recipient),
		)
		if err != nil {
			color.Errorln("Error: ", err.Error())
			return
		}
		if err = notifier.Success("test mail", "The submission endpoint accepted this message."); err != nil {
			color.Errorln("test mail rejected: ", err.Error())
			return
		}
		color.Successln("Test mail submitted to ", recipient)
	}
}
