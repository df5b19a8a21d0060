package stack

import (
	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Preflight struct {
	console.Abstract
}

func (self Preflight) GetName() string {
	return "stack:preflight"
}

func (self Preflight) GetDescription() string {
	return "Run the pre-deploy checks without deploying"
}

func (self Preflight) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
	command.Flags().Bool("skip-image-check", false, "Do not resolve image digests")
	command.Flags().Bool("skip-dns-check", false, "Do not resolve hostname and MX records")
}

func (self Preflight) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	skipImages, _ := cmd.Flags().GetBool("skip-image-check")
	skipDns, _ := cmd.Flags().GetBool("skip-dns-check")
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

	results, err := logic.Preflight{
		Config:         cfg,
		Client:         client,
		SkipImageCheck: skipImages,
		SkipDnsCheck:   skipDns,
	}.Run(client.Ctx)
	for _, result := range results {
		switch {
		case result.Ok:
			color.Successln("ok    ", result.Name, "  ", result.Message)
		case result.Fatal:
			color.Errorln("fail  ", result.Name, "  ", result.Message)
		default:
			color.Warnln("warn  ", result.Name, "  ", result.Message)
		}
	}
	if err != nil {
		color.Errorln(err.Error())
		return
	}
	color.Successln("Preflight passed")
}
