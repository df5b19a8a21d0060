package crontab

import (
	"log/slog"
)

type RunFunc func() error

type Option func(job *Job)

func WithName(name string) Option {
	return func(job *Job) {
		job.Name = name
	}
}

func WithRunFunc(callback RunFunc) Option {
	return func(job *Job) {
		job.runFunc = append(job.runFunc, callback)
	}
}

func New(opts ...Option) *Job {
	c := &Job{
		runFunc: make([]RunFunc, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Job struct {
	Name    string
	runFunc []RunFunc
}

func (self Job) Run() {
	if self.runFunc == nil {
		slog.Debug("invalid crontab job")
		return
	}
	for _, runFunc := range self.runFunc {
		if err := runFunc(); err != nil {
			slog.Error("crontab job failed", "name", self.Name, "err", err.Error())
			return
		}
	}
}
