package logic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	deploylogic "github.com/cswni/mailstack/app/deploy/logic"
	"github.com/cswni/mailstack/common/service/config"
	"github.com/cswni/mailstack/common/service/docker"
	"github.com/cswni/mailstack/common/service/notice"
	"github.com/cswni/mailstack/common/service/probe"
	"github.com/cswni/mailstack/common/service/ssl"
)

type Watchdog struct {
	Config   *config.Config
	Client   *docker.Client
	Notifier *notice.Notifier

	mu        sync.Mutex
	unhealthy map[string]string
}

func NewWatchdog(cfg *config.Config, client *docker.Client) (*Watchdog, error) {
	o := &Watchdog{
		Config:    cfg,
		Client:    client,
		unhealthy: make(map[string]string),
	}
	if cfg.WatchdogNotifyEmail != "" {
		notifier, err := notice.New(
			notice.WithSubmission(cfg.Hostname, cfg.SubmissionPort),
			notice.WithRecipient(cfg.WatchdogNotifyEmail),
			notice.WithSender(fmt.Sprintf("watchdog@%s", cfg.Domain())),
		)
		if err != nil {
			return nil, err
		}
		o.Notifier = notifier
	}
	return o, nil
}

// Check inspects services and probes the mail endpoints, and notifies on
// state transitions only so a flapping service does not flood the inbox.
func (self *Watchdog) Check(ctx context.Context) error {
	failures := make(map[string]string)

	states, err := deploylogic.ServiceStates(ctx, self.Client, self.Config)
	if err != nil {
		return err
	}
	for _, state := range states {
		if !state.Converged {
			failures["service/"+state.Name] = fmt.Sprintf("%d/%d running %s", state.Running, state.Desired, state.Message)
		}
	}

	prober := probe.New(
		probe.WithTimeout(self.Config.ProbeTimeout),
		probe.WithRetries(2),
	)
	report := prober.Run(ctx, probe.Endpoints(*self.Config))
	for _, result := range report.Failed() {
		if result.Endpoint.Required {
			failures["endpoint/"+result.Endpoint.Name] = result.Message
		}
	}

	self.transition(failures)
	return nil
}

func (self *Watchdog) transition(failures map[string]string) {
	self.mu.Lock()
	defer self.mu.Unlock()

	recovered := make([]string, 0)
	for name := range self.unhealthy {
		if _, still := failures[name]; !still {
			recovered = append(recovered, name)
		}
	}
	broken := make([]string, 0)
	for name, message := range failures {
		if _, known := self.unhealthy[name]; !known {
			broken = append(broken, fmt.Sprintf("%s: %s", name, message))
		}
	}
	self.unhealthy = failures

	if len(broken) > 0 {
		slog.Warn("watchdog detected failures", "failures", broken)
		self.notifyError(fmt.Sprintf("%d check(s) failing on %s", len(failures), self.Config.Hostname), broken)
	}
	if len(recovered) > 0 {
		slog.Info("watchdog recovery", "recovered", recovered)
		self.notifySuccess(fmt.Sprintf("recovered on %s", self.Config.Hostname), recovered)
	}
}

// CheckCertificate warns while the certificate approaches its expiry.
func (self *Watchdog) CheckCertificate() error {
	builder, err := ssl.New(
		ssl.WithHostname(self.Config.Hostname),
		ssl.WithSanList(self.Config.SanList()),
	)
	if err != nil {
		return err
	}
	if needs, reason := builder.NeedsRenewal(self.Config.RenewBefore()); needs {
		slog.Warn("certificate needs renewal", "reason", reason)
		self.notifyError("certificate needs renewal", []string{reason, "run `mailstack stack:deploy` to rotate the bootstrap certificate"})
	}
	return nil
}

func (self *Watchdog) notifyError(title string, lines []string) {
	if self.Notifier == nil {
		return
	}
	if err := self.Notifier.Error(title, strings.Join(lines, "\n")); err != nil {
		slog.Error("watchdog notification failed", "err", err)
	}
}

func (self *Watchdog) notifySuccess(title string, lines []string) {
	if self.Notifier == nil {
		return
	}
	if err := self.Notifier.Success(title, strings.Join(lines, "\n")); err != nil {
		slog.Error("watchdog notification failed", "err", err)
	}
}

// Snapshot returns the currently failing checks, for status output.
func (self *Watchdog) Snapshot() map[string]string {
	self.mu.Lock()
	defer self.mu.Unlock()
	result := make(map[string]string, len(self.unhealthy))
	for name, message := range self.unhealthy {
		result[name] = message
	}
	return result
}
