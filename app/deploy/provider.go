package deploy

import (
	"github.com/cswni/mailstack/app/deploy/command/backup"
	"github.com/cswni/mailstack/app/deploy/command/cert"
	"github.com/cswni/mailstack/app/deploy/command/config"
	"github.com/cswni/mailstack/app/deploy/command/stack"
	"github.com/cswni/mailstack/app/deploy/command/swarm"
	"github.com/we7coreteam/w7-rangine-go/v2/pkg/support/console"
)

type Provider struct {
}

func (provider *Provider) Register(console console.Console) {
	console.RegisterCommand(new(config.Init))
	console.RegisterCommand(new(config.Show))
	console.RegisterCommand(new(swarm.Init))
	console.RegisterCommand(new(stack.Deploy))
	console.RegisterCommand(new(stack.Destroy))
	console.RegisterCommand(new(stack.Ps))
	console.RegisterCommand(new(stack.Logs))
	console.RegisterCommand(new(stack.Preflight))
	console.RegisterCommand(new(stack.Probe))
	console.RegisterCommand(new(stack.Render))
	console.RegisterCommand(new(stack.History))
	console.RegisterCommand(new(cert.Generate))
	console.RegisterCommand(new(cert.Info))
	console.RegisterCommand(new(backup.Create))
	console.RegisterCommand(new(backup.Restore))
}
