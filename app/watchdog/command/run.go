package command

import (
	"os"
	"os/signal"
	"syscall"

	deploylogic "github.com/cswni/mailstack/app/deploy/logic"
	"github.com/cswni/mailstack/app/watchdog/logic"
	"github.com/cswni/mailstack/common/service/crontab"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Run struct {
	console.Abstract
}

func (self Run) GetName() string {
	return "watchdog:run"
}

func (self Run) GetDescription() string {
	return "Watch the deployed stack and notify on state changes"
}

func (self Run) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
	command.Flags().String("interval", "", "Cron expression, overrides WATCHDOG_INTERVAL")
}

func (self Run) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	interval, _ := cmd.Flags().GetString("interval")

	cfg, err := deploylogic.LoadConfig(envFile)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	if interval == "" {
		interval = cfg.WatchdogInterval
	}
	client, err := deploylogic.NewDockerClient(cfg)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	defer client.Close()

	watchdog, err := logic.NewWatchdog(cfg, client)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}

	_, err = crontab.Client.AddJob(interval, crontab.New(
		crontab.WithName("watchdog-check"),
		crontab.WithRunFunc(func() error {
			return watchdog.Check(client.Ctx)
		}),
	))
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	// expiry creeps up slowly, once a day is plenty
	_, err = crontab.Client.AddJob("0 0 3 * * *", crontab.New(
		crontab.WithName("watchdog-certificate"),
		crontab.WithRunFunc(watchdog.CheckCertificate),
	))
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}

	// run one check immediately so a broken stack is reported at startup
	if err = watchdog.Check(client.Ctx); err != nil {
		color.Warnln("initial check failed: ", err.Error())
	}

	crontab.Client.Cron.Start()
	color.Println("Watchdog running, interval ", interval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx := crontab.Client.Cron.Stop()
	<-ctx.Done()
	color.Successln("Watchdog stopped")
}
