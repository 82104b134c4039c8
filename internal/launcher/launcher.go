package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
)

const (
	msgCheckInterpreter = "Checking Python installation..."
	msgInstall          = "Installing dependencies..."
	msgStart            = "Starting ADS-B checker..."
	msgMissing          = "Error: Python 3 is required but not installed."
)

// ErrMissingInterpreter is returned when no Python 3 interpreter is on PATH.
var ErrMissingInterpreter = errors.New("python 3 interpreter not found")

// ExitError carries the delegate exit status back to the caller.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("delegate exited with status %d", e.Code)
}

// ExitCode maps a Run result to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Launcher checks the interpreter, installs the dependency and runs the delegate.
type Launcher struct {
	Log  *logrus.Logger
	Conf Configuration

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Overridable for tests
	LookPath   func(file string) (string, error)
	Executable func() (string, error)
	Command    func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// New returns a Launcher bound to the process standard streams.
func New(log *logrus.Logger, conf Configuration) *Launcher {
	return &Launcher{
		Log:        log,
		Conf:       conf,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		LookPath:   exec.LookPath,
		Executable: os.Executable,
		Command:    exec.CommandContext,
	}
}

// Run forwards args unmodified to the delegate. A non-zero delegate status
// comes back as *ExitError.
func (l *Launcher) Run(ctx context.Context, args []string) error {
	fmt.Fprintln(l.Stdout, msgCheckInterpreter)

	interpreter, err := l.LookPath(l.Conf.Interpreter)
	if err != nil {
		l.Log.WithContext(ctx).WithFields(logrus.Fields{
			"interpreter": l.Conf.Interpreter,
			"Error":       err,
		}).Debug("Interpreter lookup failed")
		fmt.Fprintln(l.Stderr, msgMissing)
		return ErrMissingInterpreter
	}

	fmt.Fprintln(l.Stdout, msgInstall)
	l.ensureDependency(ctx, interpreter)

	delegate, err := l.delegatePath()
	if err != nil {
		return fmt.Errorf("unable to locate %s: %w", l.Conf.Delegate, err)
	}

	fmt.Fprintln(l.Stdout, msgStart)

	return l.runDelegate(ctx, interpreter, delegate, args)
}

// ensureDependency is best effort: every failure is swallowed.
func (l *Launcher) ensureDependency(ctx context.Context, interpreter string) {
	if installer, err := l.LookPath(l.Conf.Installer); err == nil {
		errInstall := l.Command(ctx, installer, "install", "-q", l.Conf.Dependency).Run()
		if errInstall == nil {
			return
		}
		l.Log.WithContext(ctx).WithFields(logrus.Fields{
			"installer": installer,
			"Error":     errInstall,
		}).Debug("Dependency install failed, trying pip module")
	}

	errModule := l.Command(ctx, interpreter, "-m", "pip", "install", "-q", l.Conf.Dependency).Run()
	if errModule != nil {
		l.Log.WithContext(ctx).WithFields(logrus.Fields{
			"dependency": l.Conf.Dependency,
			"Error":      errModule,
		}).Debug("Dependency install failed")
	}
}

func (l *Launcher) delegatePath() (string, error) {
	exe, err := l.Executable()
	if err != nil {
		return "", err
	}
	if resolved, errLink := filepath.EvalSymlinks(exe); errLink == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), l.Conf.Delegate), nil
}

func (l *Launcher) runDelegate(ctx context.Context, interpreter, delegate string, args []string) error {
	cmd := l.Command(ctx, interpreter, append([]string{delegate}, args...)...)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	l.Log.WithContext(ctx).WithFields(logrus.Fields{
		"interpreter": interpreter,
		"delegate":    delegate,
		"args":        args,
	}).Debug("Running delegate")

	sigc := make(chan os.Signal, 4)
	signal.Notify(sigc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	defer signal.Stop(sigc)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("unable to start delegate: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go l.forward(ctx, cmd.Process, sigc, done)

	err := cmd.Wait()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			code = 128 + int(status.Signal())
		}
		return &ExitError{Code: code}
	}
	return err
}

// forward relays the signals received by the launcher to the delegate,
// which decides its own exit status.
func (l *Launcher) forward(ctx context.Context, p *os.Process, sigc <-chan os.Signal, done <-chan struct{}) {
	for {
		select {
		case s := <-sigc:
			l.Log.WithContext(ctx).Debug("Signal: " + s.String())
			if err := p.Signal(s); err != nil {
				l.Log.WithContext(ctx).WithFields(logrus.Fields{
					"Error": err,
				}).Debug("Unable to forward signal to delegate")
			}
		case <-done:
			return
		}
	}
}
