package main

import (
	"embed"
	"log/slog"
	"os"
	"time"

	"github.com/cswni/mailstack/app/deploy"
	deploylogic "github.com/cswni/mailstack/app/deploy/logic"
	"github.com/cswni/mailstack/app/server"
	"github.com/cswni/mailstack/app/watchdog"
	"github.com/cswni/mailstack/common/dao"
	"github.com/cswni/mailstack/common/entity"
	"github.com/cswni/mailstack/common/function"
	common2 "github.com/cswni/mailstack/common/middleware"
	config2 "github.com/cswni/mailstack/common/service/config"
	"github.com/cswni/mailstack/common/service/storage"
	"github.com/we7coreteam/w7-rangine-go/v2/pkg/support/facade"
	app "github.com/we7coreteam/w7-rangine-go/v2/src"
	"github.com/we7coreteam/w7-rangine-go/v2/src/http"
	"github.com/we7coreteam/w7-rangine-go/v2/src/http/middleware"
	"go.uber.org/zap/exp/zapslog"
)

var (
	//go:embed config.yaml
	ConfigFile []byte
	//go:embed asset
	Asset            embed.FS
	MailstackVersion = ""
)

func main() {
	myApp := app.NewApp(
		app.Option{
			Name:    "mailstack",
			Version: MailstackVersion,
		},
	)

	if logger, err := facade.GetLoggerFactory().Channel("default"); err == nil {
		slog.SetDefault(slog.New(zapslog.NewHandler(logger.Core())))
	}

	slog.Debug("config", "env", facade.GetConfig().GetString("app.env"))
	slog.Debug("config", "version", MailstackVersion)
	slog.Debug("config", "data root", storage.Local{}.GetDataRootPath())
	if MailstackVersion != "" {
		facade.GetConfig().Set("app.version", MailstackVersion)
	}

	facade.GetConfig().Set("database.default.db_name", storage.Local{}.GetDatabasePath())
	db, err := facade.GetDbFactory().Channel("default")
	if err != nil {
		panic(err)
	}
	dao.SetDefault(db)
	if err = db.Migrator().AutoMigrate(&entity.Deployment{}); err != nil {
		panic(err)
	}

	_ = facade.GetContainer().NamedSingleton("asset", func() embed.FS {
		return Asset
	})

	if isAppServer() {
		cfg, err := deploylogic.LoadConfig(os.Getenv("MAILSTACK_ENV_FILE"))
		if err != nil {
			panic(err)
		}
		_ = facade.GetContainer().NamedSingleton("mailstack-config", func() *config2.Config {
			return cfg
		})
		client, err := deploylogic.NewDockerClient(cfg)
		if err != nil {
			panic(err)
		}
		if _, err = client.Client.Ping(client.GetTryCtx()); err != nil {
			panic(err)
		}
		// deployments that never finished because the previous process
		// died stay marked running forever otherwise
		_ = dao.Deployment.MarkStale(cfg.StackName, time.Hour)

		httpServer := new(http.Provider).Register(myApp.GetConfig(), myApp.GetConsole(), myApp.GetServerManager()).Export()
		httpServer.Use(middleware.GetPanicHandlerMiddleware())
		httpServer.Use(common2.AuthMiddleware{}.Process)
		new(server.Provider).Register(httpServer)
	}

	new(deploy.Provider).Register(facade.GetConsole())
	new(watchdog.Provider).Register(facade.GetConsole())
	myApp.RunConsole()
}

func isAppServer() bool {
	return function.InArray(os.Args, "server:start")
}
