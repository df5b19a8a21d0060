package function

import (
	"log/slog"

	"github.com/mattn/go-shellwords"
)

func SplitCommandArray(cmd string) []string {
	if cmd == "" {
		return []string{}
	}
	p := shellwords.NewParser()
	p.ParseEnv = false
	p.ParseBacktick = false
	result, err := p.Parse(cmd)
	if err != nil {
		slog.Debug("split command", "cmd", cmd, "err", err)
		return []string{cmd}
	}
	return result
}
