package cert

import (
	"time"

	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/cswni/mailstack/common/service/ssl"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Info struct {
	console.Abstract
}

func (self Info) GetName() string {
	return "cert:info"
}

func (self Info) GetDescription() string {
	return "Show the installed certificate and its expiry"
}

func (self Info) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
}

func (self Info) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := logic.LoadConfig(envFile)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	builder, err := ssl.New(
		ssl.WithHostname(cfg.Hostname),
		ssl.WithSanList(cfg.SanList()),
	)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	certificate, err := builder.Inspect()
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	if certificate == nil {
		color.Warnln("No certificate installed yet, run cert:generate or stack:deploy")
		return
	}
	remaining := time.Until(certificate.NotAfter)
	color.Println("Subject    ", certificate.Subject.CommonName)
	color.Println("Issuer     ", certificate.Issuer.CommonName)
	color.Println("SAN        ", certificate.DNSNames)
	color.Println("Not before ", certificate.NotBefore.Format("2006-01-02"))
	color.Println("Not after  ", certificate.NotAfter.Format("2006-01-02"))
	if needs, reason := builder.NeedsRenewal(cfg.RenewBefore()); needs {
		color.Warnln("Renewal needed: ", reason)
	} else {
		color.Successln("Valid for another ", int(remaining.Hours()/24), " days")
	}
}
