package dummy

import (
	"context"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/timbre/src/shared/lib/executor"
)

var _ executor.Executor = &Executor{}
var _ executor.Command = &Command{}

// Program stands in for a binary. It gets the working dir and arguments
// of the command and returns its combined output.
type Program func(dir string, args []string) ([]byte, error)

type Call struct {
	Name string
	Args []string
	Dir  string
}

type Executor struct {
	Unavailable bool
	Programs    map[string]Program
	Calls       []Call
	mutex       sync.Mutex
}

func NewExecutor() *Executor {
	return &Executor{
		Unavailable: false,
		Programs:    map[string]Program{},
	}
}

func (e *Executor) Install(name string, program Program) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.Programs[name] = program
}

// CalledNames lists the binary of every command run so far
func (e *Executor) CalledNames() []string {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	names := make([]string, len(e.Calls))
	for i, call := range e.Calls {
		names[i] = call.Name
	}
	return names
}

func (e *Executor) Command(_ context.Context, name string, args ...string) executor.Command {
	return &Command{
		executor: e,
		name:     name,
		args:     slices.Clone(args),
	}
}

func (e *Executor) run(call Call) ([]byte, error) {
	e.mutex.Lock()
	e.Calls = append(e.Calls, call)
	program, ok := e.Programs[call.Name]
	unavailable := e.Unavailable
	e.mutex.Unlock()

	if unavailable {
		return []byte("killed"), ProcessFailure
	}

	if !ok {
		return nil, errors.Newf("dummy executor: %s: command not found", call.Name)
	}

	return program(call.Dir, call.Args)
}

type Command struct {
	executor *Executor
	name     string
	args     []string
	dir      string
}

func (c *Command) SetDir(dir string) {
	c.dir = dir
}

func (c *Command) CombinedOutput() ([]byte, error) {
	return c.executor.run(Call{
		Name: c.name,
		Args: c.args,
		Dir:  c.dir,
	})
}

// flagValue finds the argument that follows flag
func flagValue(args []string, flag string) string {
	index := slices.Index(args, flag)
	if index < 0 || index+1 >= len(args) {
		return ""
	}
	return args[index+1]
}
