package watchdog

import (
	"fmt"
	"os"
)

// Restarter replaces the running process.
// A successful Restart normally does not return.
type Restarter interface {
	Restart(reason string) error
}

// RestarterFunc adapts a function to Restarter.
type RestarterFunc func(reason string) error

// Restart calls f.
func (f RestarterFunc) Restart(reason string) error {
	return f(reason)
}

// ExecRestarter re-executes the current binary with the same arguments
// and environment, keeping the process id.
type ExecRestarter struct {
	executable func() (string, error)
	exec       func(argv0 string, argv []string, envv []string) error
	args       []string
	environ    func() []string
}

// NewExecRestarter creates an ExecRestarter for the running process.
func NewExecRestarter() *ExecRestarter {
	return &ExecRestarter{
		executable: os.Executable,
		exec:       execProcess,
		args:       os.Args,
		environ:    os.Environ,
	}
}

// Restart replaces the process image. It returns only on failure.
func (r *ExecRestarter) Restart(_ string) error {
	path, err := r.executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	if err := r.exec(path, r.args, r.environ()); err != nil {
		return fmt.Errorf("failed to re-exec %s: %w", path, err)
	}
	return nil
}

// ExitRestarter terminates the process and leaves the restart to a supervisor
// such as systemd or a container runtime.
type ExitRestarter struct {
	code int
	exit func(code int)
}

// NewExitRestarter creates an ExitRestarter exiting with code.
func NewExitRestarter(code int) *ExitRestarter {
	return &ExitRestarter{code: code, exit: os.Exit}
}

// Restart exits the process.
func (r *ExitRestarter) Restart(_ string) error {
	r.exit(r.code)
	return nil
}
