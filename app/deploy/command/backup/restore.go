package backup

import (
	"context"

	"github.com/cswni/mailstack/app/deploy/logic"
	"github.com/cswni/mailstack/common/function"
	"github.com/cswni/mailstack/common/service/config"
	"github.com/cswni/mailstack/common/service/storage"
	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/we7coreteam/w7-rangine-go/v2/src/console"
)

type Restore struct {
	console.Abstract
}

func (self Restore) GetName() string {
	return "backup:restore"
}

func (self Restore) GetDescription() string {
	return "Restore configuration and certificates from an archive"
}

func (self Restore) Configure(command *cobra.Command) {
	command.Flags().String("env-file", "", "Env file path, default ./mailstack.env")
	command.Flags().String("input", "", "Archive path")
	command.Flags().Bool("force", false, "Overwrite an existing env file")
	_ = command.MarkFlagRequired("input")
}

func (self Restore) Handle(cmd *cobra.Command, args []string) {
	envFile, _ := cmd.Flags().GetString("env-file")
	input, _ := cmd.Flags().GetString("input")
	force, _ := cmd.Flags().GetBool("force")
	cfg, err := logic.LoadConfig(envFile)
	if err != nil {
		// restoring onto a fresh machine, the archive carries the env file
		cfg = &config.Config{DataRoot: storage.Local{}.GetDataRootPath()}
	} else if !force && function.FileExists(storage.Local{}.GetEnvFilePath()) {
		color.Errorln("Error: ", storage.Local{}.GetEnvFilePath(), " exists, use --force to overwrite it")
		return
	}
	if err = logic.RestoreBackup(context.Background(), cfg, input); err != nil {
		color.Errorln("Error: ", err.Error())
		return
	}
	color.Println("Restored from ", input)
	color.Println("Run stack:deploy to apply the restored configuration.")
	color.Successln("Success")
}
