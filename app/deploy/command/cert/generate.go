package cert

import (
	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/cswni/mailstack/common/service/ssl"
	"github.com/cswni/mailstack/common/service/storage"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Generate struct {
	console.Abstract
}

func (self Generate) GetName() string {
	return "cert:generate"
}

func (self Generate) GetDescription() string {
	return "Generate the self-signed bootstrap certificate"
}

func (self Generate) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
	command.Flags().Bool("force", false, "Replace a certificate that is still valid")
}

func (self Generate) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	force, _ := cmd.Flags().GetBool("force")

	cfg, err := logic.LoadConfig(envFile)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	builder, err := ssl.New(
		ssl.WithHostname(cfg.Hostname),
		ssl.WithSanList(cfg.SanList()),
		ssl.WithValidityDays(cfg.CertDays),
	)
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	if !force {
		if needs, reason := builder.NeedsRenewal(cfg.RenewBefore()); !needs {
			color.Println("Certificate is still valid, use --force to replace it")
			return
		} else {
			color.Println("Renewing: ", reason)
		}
	}
	certificate, err := builder.Generate()
	if err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	color.Println("Subject    ", certificate.Subject.CommonName)
	color.Println("SAN        ", certificate.DNSNames)
	color.Println("Not after  ", certificate.NotAfter.Format("2006-01-02"))
	color.Println("Cert       ", storage.Local{}.GetCertPath())
	color.Println("Key        ", storage.Local{}.GetCertKeyPath())
	color.Successln("Success")
}
