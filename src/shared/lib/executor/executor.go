package executor

import (
	"context"
	"os/exec"
)

//counterfeiter:generate . Executor
type Executor interface {
	Command(ctx context.Context, name string, args ...string) Command
}

//counterfeiter:generate . Command
type Command interface {
	SetDir(dir string)
	CombinedOutput() ([]byte, error)
}

var _ Executor = BinaryFileExecutor{}

// BinaryFileExecutor runs real binaries on the host
type BinaryFileExecutor struct{}

func (BinaryFileExecutor) Command(ctx context.Context, name string, args ...string) Command {
	return BinaryCommand{cmd: exec.CommandContext(ctx, name, args...)}
}

type BinaryCommand struct {
	cmd *exec.Cmd
}

func (b BinaryCommand) SetDir(dir string) {
	b.cmd.Dir = dir
}

func (b BinaryCommand) CombinedOutput() ([]byte, error) {
	return b.cmd.CombinedOutput()
}
