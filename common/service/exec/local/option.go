package local

import (
	"context"
	"errors"
	"os/exec"

	"github.com/cswni/mailstack/common/function"
)

type Option func(command *Local) error

func WithArgs(args ...string) Option {
	return func(self *Local) error {
		var commandName string
		if self.cmd.Path == "" {
			if function.IsEmptyArray(args) {
				return nil
			}
			commandName = args[0]
			args = args[1:]
		} else {
			commandName = self.cmd.Path
		}
		self.cmd = exec.CommandContext(self.ctx, commandName, args...)
		return nil
	}
}

func WithCommandName(commandName string) Option {
	return func(self *Local) error {
		if commandName == "" {
			return nil
		}
		if function.IsEmptyArray(self.cmd.Args) {
			self.cmd = exec.CommandContext(self.ctx, commandName)
		} else {
			self.cmd = exec.CommandContext(self.ctx, commandName, self.cmd.Args...)
		}
		return nil
	}
}

func WithDir(dir string) Option {
	return func(self *Local) error {
		if dir == "" {
			return nil
		}
		self.cmd.Dir = dir
		return nil
	}
}

func WithEnv(env []string) Option {
	return func(self *Local) error {
		self.cmd.Env = env
		return nil
	}
}

// WithCtx must be the last option, it rebuilds the command with the new
// context.
func WithCtx(ctx context.Context) Option {
	return func(self *Local) error {
		if function.IsEmptyArray(self.cmd.Args) {
			return errors.New("invalid arguments")
		}
		self.ctx, self.ctxCancel = context.WithCancel(ctx)
		newCmd := exec.CommandContext(self.ctx, self.cmd.Args[0], self.cmd.Args[1:]...)
		newCmd.Env = self.cmd.Env
		newCmd.Dir = self.cmd.Dir
		self.cmd = newCmd
		return nil
	}
}
