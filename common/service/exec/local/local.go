package local

import (
	"bytes"
	"context"
	"errors"
	"strings"

	exec2 "os/exec"

	"github.com/cswni/mailstack/common/function"
	"github.com/cswni/mailstack/common/service/exec"
)

func New(opts ...Option) (exec.Executor, error) {
	var err error

	ctx, cancel := context.WithCancel(context.Background())

	c := &Local{
		cmd: &exec2.Cmd{
			Env: make([]string, 0),
		},
		ctx:       ctx,
		ctxCancel: cancel,
	}

	for _, opt := range opts {
		err = opt(c)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}

func QuickRun(cmdStrOrArr ...string) ([]byte, error) {
	if function.IsEmptyArray(cmdStrOrArr) {
		return nil, errors.New("invalid cmd")
	}
	if _, ok := function.IndexArrayWalk(cmdStrOrArr, func(item string) bool {
		return strings.Contains(item, " ")
	}); ok {
		cmdStrOrArr = function.SplitCommandArray(strings.Join(cmdStrOrArr, " "))
	}
	cmd, err := New(
		WithCommandName(cmdStrOrArr[0]),
		WithArgs(cmdStrOrArr[1:]...),
	)
	if err != nil {
		return nil, err
	}
	return cmd.RunWithResult()
}

type Local struct {
	cmd       *exec2.Cmd
	ctx       context.Context
	ctxCancel context.CancelFunc
}

func (self *Local) AppendEnv(env []string) {
	self.cmd.Env = append(self.cmd.Env, env...)
}

func (self *Local) String() string {
	return self.cmd.String()
}

func (self *Local) Run() error {
	out := new(bytes.Buffer)
	self.cmd.Stderr = out
	err := self.cmd.Run()
	if err != nil {
		return errors.Join(errors.New(out.String()), err)
	}
	if out.Len() > 0 {
		return errors.New(out.String())
	}
	return nil
}

func (self *Local) RunWithResult() ([]byte, error) {
	out, err := self.cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return nil, errors.New(string(out))
		}
		return nil, err
	}
	return out, nil
}

func (self *Local) Close() error {
	if self.ctxCancel != nil {
		self.ctxCancel()
	}
	return nil
}
