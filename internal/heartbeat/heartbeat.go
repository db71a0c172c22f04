// Package heartbeat implements long-running fixture process: it prints
// heartbeat line every interval and reports SIGINT/SIGTERM on stdout.
//
// Handled signals do not interrupt pending interval: after handler line
// is printed, loop keeps waiting for the same timer.
package heartbeat

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rprtr258/catch-sigterm/internal/core"
)

const (
	LineCaught   = "SIGTERM caught, exiting program"
	LineSleeping = "sleeping"
)

// Signals handled by fixture, all of them trigger the same handler.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// Notify installs handler for Signals. Returned func uninstalls it.
func Notify() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 8)
	signal.Notify(ch, Signals...)
	return ch, func() {
		signal.Stop(ch)
	}
}

type Loop struct {
	w            io.Writer
	out          *bufio.Writer
	interval     time.Duration
	exitOnSignal bool
}

func New(w io.Writer, config core.Config) *Loop {
	interval := config.Interval
	if interval <= 0 {
		interval = core.DefaultConfig.Interval
	}

	return &Loop{
		w:            w,
		out:          bufio.NewWriter(w),
		interval:     interval,
		exitOnSignal: config.ExitOnSignal,
	}
}

// println writes whole line in single write and flushes it.
func (l *Loop) println(line string) {
	_, _ = l.out.WriteString(line)
	_ = l.out.WriteByte('\n')
	if err := l.out.Flush(); err != nil {
		log.Debug().Err(err).Str("line", line).Msg("flush stdout")
		// bufio errors are sticky, drop failed line and start over
		l.out.Reset(l.w)
	}
}

// Run prints heartbeat lines until ctx is done. Each signal received from
// signals is reported with LineCaught. If loop is configured to exit on
// signal, Run returns that signal, otherwise loop resumes and nil is
// returned once ctx is done.
func (l *Loop) Run(ctx context.Context, signals <-chan os.Signal) os.Signal {
	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	log.Debug().
		Stringer("interval", l.interval).
		Bool("exit_on_signal", l.exitOnSignal).
		Msg("heartbeat started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-signals:
			log.Debug().Stringer("signal", sig).Msg("signal caught")
			l.println(LineCaught)
			if l.exitOnSignal {
				return sig
			}
		case <-timer.C:
			l.println(LineSleeping)
			timer.Reset(l.interval)
		}
	}
}
