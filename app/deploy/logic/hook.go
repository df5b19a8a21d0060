package logic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cswni/mailstack/common/service/config"
	"github.com/cswni/mailstack/common/service/docker"
	"github.com/cswni/mailstack/common/service/exec"
	"github.com/cswni/mailstack/common/service/exec/local"
	"github.com/cswni/mailstack/common/service/exec/remote"
)

// RunHook executes a pre or post deploy command with the deployment env
// exported. Hooks run on the engine host, over ssh for ssh:// engines,
// locally otherwise. A failing pre hook aborts the deployment, the caller
// decides what a post hook failure means.
func RunHook(ctx context.Context, client *docker.Client, name, command string, cfg *config.Config) error {
	if command == "" {
		return nil
	}
	env := make([]string, 0)
	for key, value := range cfg.EnvMap() {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	var cmd exec.Executor
	var err error
	if sshClient := client.SSHClient(); sshClient != nil {
		cmd, err = remote.New(
			remote.WithSSHClient(sshClient),
			remote.WithCommandName(command),
			remote.WithEnv(env),
			remote.WithCtx(ctx),
		)
	} else {
		cmd, err = local.New(
			local.WithCommandName("sh"),
			local.WithArgs("-c", command),
			local.WithEnv(env),
			local.WithCtx(ctx),
		)
	}
	if err != nil {
		return fmt.Errorf("%s hook: %w", name, err)
	}
	out, err := cmd.RunWithResult()
	if len(out) > 0 {
		slog.Info("hook output", "hook", name, "output", strings.TrimSpace(string(out)))
	}
	if err != nil {
		return fmt.Errorf("%s hook failed: %w", name, err)
	}
	return nil
}
