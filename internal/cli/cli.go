package cli

import (
	"context"
	"io"
	"time"

	"github.com/rprtr258/fun"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/rprtr258/catch-sigterm/internal/config"
	"github.com/rprtr258/catch-sigterm/internal/core"
	"github.com/rprtr258/catch-sigterm/internal/errors"
	"github.com/rprtr258/catch-sigterm/internal/heartbeat"
)

// flagValue returns value if flag was explicitly set
func flagValue[T any](cmd *cobra.Command, name string, value T) fun.Option[T] {
	if !cmd.Flags().Changed(name) {
		return fun.Option[T]{}
	}

	return fun.Valid(value)
}

func implRun(ctx context.Context, out io.Writer, conf core.Config) {
	signals, stop := heartbeat.Notify()
	defer stop()
	log.Debug().
		Any("signals", heartbeat.Signals).
		Msg("signal handlers installed")

	if sig := heartbeat.New(out, conf).Run(ctx, signals); sig != nil {
		log.Debug().Stringer("signal", sig).Msg("exiting after signal")
	}
}

func newApp() *cobra.Command {
	var (
		configFilename string
		interval       time.Duration
		exitOnSignal   bool
		debug          bool
	)
	cmd := &cobra.Command{
		Use:           "catch-sigterm",
		Short:         "print heartbeat every interval and report SIGINT/SIGTERM",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.Load(
				afero.NewOsFs(),
				flagValue(cmd, "config", configFilename),
				config.Overrides{
					Interval:     flagValue(cmd, "interval", interval),
					ExitOnSignal: flagValue(cmd, "exit-on-signal", exitOnSignal),
					Debug:        flagValue(cmd, "debug", debug),
				},
			)
			if err != nil {
				return errors.Wrap(err, "load config")
			}

			config.SetupLogger(conf)
			implRun(cmd.Context(), cmd.OutOrStdout(), conf)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFilename, "config", "c", "", "jsonnet or json config file")
	cmd.Flags().DurationVarP(&interval, "interval", "i", core.DefaultConfig.Interval, "interval between heartbeat lines, e.g. 100ms, 5s")
	cmd.Flags().BoolVar(&exitOnSignal, "exit-on-signal", core.DefaultConfig.ExitOnSignal, "exit after first caught signal instead of resuming")
	cmd.Flags().BoolVar(&debug, "debug", core.DefaultConfig.Debug, "debug logs on stderr")
	cmd.AddCommand(newCmdVersion())
	return cmd
}

func Run(argv []string) error {
	config.SetupLogger(core.DefaultConfig)

	app := newApp()
	app.SetArgs(argv[1:])
	return app.Execute()
}
