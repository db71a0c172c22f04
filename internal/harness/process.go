// Package harness runs child process and captures its output for observation
// from tests: stdout is split into lines, stderr is kept as raw chunks.
package harness

import (
	"context"
	stdErrors "errors"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rprtr258/catch-sigterm/internal/errors"
	"github.com/rprtr258/catch-sigterm/internal/linuxprocess"
)

// ErrProcessGone is returned when signalled process does not exist anymore.
var ErrProcessGone = stdErrors.New("process is gone")

const _defaultKillTimeout = 5 * time.Second

type Config struct {
	// Command - executable to run, looked up in PATH if not a path
	Command string
	// Args - arguments, not including executable itself
	Args []string
	// Env - additional environment variables in KEY=VALUE form
	Env []string
	// KillTimeout - how long to wait after SIGTERM before sending SIGKILL
	KillTimeout time.Duration
}

type Process struct {
	cmd         *exec.Cmd
	stdout      *LineWriter
	stdoutLines *Queue[string]
	stderr      *Queue[string]
	killTimeout time.Duration

	done    chan struct{}
	waitErr error
}

func Start(config Config) (*Process, error) {
	stdoutLines, stderr := NewQueue[string](), NewQueue[string]()
	stdout := NewLineWriter(stdoutLines)

	cmd := exec.Command(config.Command, config.Args...)
	cmd.Env = append(os.Environ(), config.Env...)
	cmd.Stdout = stdout
	cmd.Stderr = NewChunkWriter(stderr)
	// do not hang on pipes held by orphaned grandchildren
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "start %s", config.Command)
	}

	p := &Process{
		cmd:         cmd,
		stdout:      stdout,
		stdoutLines: stdoutLines,
		stderr:      stderr,
		killTimeout: config.KillTimeout,
		done:        make(chan struct{}),
		waitErr:     nil,
	}
	if p.killTimeout <= 0 {
		p.killTimeout = _defaultKillTimeout
	}
	log.Debug().
		Int("pid", cmd.Process.Pid).
		Str("command", config.Command).
		Strs("args", config.Args).
		Msg("process started")

	go func() {
		err := cmd.Wait()
		_ = p.stdout.Close()
		p.waitErr = err
		log.Debug().
			Int("pid", cmd.Process.Pid).
			Err(err).
			Msg("process exited")
		close(p.done)
	}()

	return p, nil
}

func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Stdout lines produced by process, without line terminators
func (p *Process) Stdout() *Queue[string] {
	return p.stdoutLines
}

// Stderr chunks produced by process, as they were read
func (p *Process) Stderr() *Queue[string] {
	return p.stderr
}

// Done is closed when process exited and all its output is captured.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait for process exit. Returns exit error of process.
func (p *Process) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return p.waitErr
	}
}

func (p *Process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func signalPID(pid int, sig syscall.Signal) error {
	if err := syscall.Kill(pid, sig); err != nil {
		if stdErrors.Is(err, syscall.ESRCH) {
			return errors.Wrapf(ErrProcessGone, "pid=%d", pid)
		}
		return errors.Wrapf(err, "send %s to pid=%d", sig, pid)
	}
	return nil
}

// Signal sends sig to process itself, not to its children.
func (p *Process) Signal(sig syscall.Signal) error {
	if p.exited() {
		return errors.Wrapf(ErrProcessGone, "pid=%d", p.PID())
	}

	if err := p.cmd.Process.Signal(sig); err != nil {
		if stdErrors.Is(err, os.ErrProcessDone) {
			return errors.Wrapf(ErrProcessGone, "pid=%d", p.PID())
		}
		return errors.Wrapf(err, "send %s to pid=%d", sig, p.PID())
	}
	return nil
}

// Destroy sends SIGTERM, or SIGKILL if force is set, to process and
// all its children. It does not wait for them to exit.
func (p *Process) Destroy(force bool) error {
	sig := syscall.SIGTERM
	if force {
		sig = syscall.SIGKILL
	}

	// collect children before parent dies and they get reparented
	children := linuxprocess.Children(linuxprocess.List(), p.PID())

	errs := []error{p.Signal(sig)}
	for _, child := range children {
		if err := signalPID(child.PID, sig); err != nil && !stdErrors.Is(err, ErrProcessGone) {
			errs = append(errs, err)
		}
	}
	return errors.Combine(errs...)
}

// Stop terminates process gracefully with SIGTERM, then kills it if it is
// still alive after kill timeout or when ctx is done. It returns after
// process exited.
func (p *Process) Stop(ctx context.Context) error {
	if err := p.Destroy(false); err != nil {
		if stdErrors.Is(err, ErrProcessGone) {
			<-p.done
			return nil
		}
		return errors.Wrap(err, "terminate")
	}

	timer := time.NewTimer(p.killTimeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-timer.C:
	case <-ctx.Done():
	}

	log.Warn().
		Int("pid", p.PID()).
		Stringer("kill_timeout", p.killTimeout).
		Msg("timed out waiting for process to stop from SIGTERM, killing it")
	if err := p.Destroy(true); err != nil && !stdErrors.Is(err, ErrProcessGone) {
		return errors.Wrap(err, "kill")
	}

	<-p.done
	return nil
}

// Alive reports whether process still runs.
func (p *Process) Alive() bool {
	return !p.exited() && linuxprocess.Alive(p.PID())
}
