package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cswni/mailstack/common/service/exec"
	"github.com/cswni/mailstack/common/service/ssh"
)

func New(opts ...Option) (exec.Executor, error) {
	var err error
	c := &Remote{}

	for _, opt := range opts {
		err = opt(c)
		if err != nil {
			return nil, err
		}
	}
	if c.client == nil {
		return nil, errors.New("remote exec requires an ssh client")
	}
	if c.ctx == nil {
		c.ctx, c.ctxCancel = context.WithCancel(context.Background())
	}
	return c, nil
}

func QuickRun(client *ssh.Client, cmd string) ([]byte, error) {
	executor, err := New(
		WithSSHClient(client),
		WithCommandName(cmd),
	)
	if err != nil {
		return nil, err
	}
	return executor.RunWithResult()
}

type Remote struct {
	client    *ssh.Client
	Path      string
	Args      []string
	Env       []string
	Dir       string
	ctx       context.Context
	ctxCancel context.CancelFunc
}

func (self *Remote) String() string {
	cmd := self.Path
	if !strings.HasSuffix(cmd, " ") && len(self.Args) > 0 {
		cmd += " " + strings.Join(self.Args, " ")
	}
	if self.Dir != "" {
		cmd = fmt.Sprintf("cd %s && %s", self.Dir, cmd)
	}
	for _, env := range self.Env {
		cmd = fmt.Sprintf("%s %s", env, cmd)
	}
	return cmd
}

func (self *Remote) Run() error {
	_, err := self.RunWithResult()
	return err
}

func (self *Remote) RunWithResult() ([]byte, error) {
	session, err := self.client.NewSession()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = session.Close()
	}()
	out, err := session.CombinedOutput(self.String())
	if err != nil {
		if len(out) > 0 {
			return nil, errors.New(string(out))
		}
		return nil, err
	}
	return out, nil
}

func (self *Remote) Close() error {
	if self.ctxCancel != nil {
		self.ctxCancel()
	}
	return nil
}
