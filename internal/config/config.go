package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/google/go-jsonnet"
	"github.com/rprtr258/fun"
	"github.com/rprtr258/scuf"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/rprtr258/catch-sigterm/internal/core"
	"github.com/rprtr258/catch-sigterm/internal/errors"
)

// SetupLogger points global logger to stderr, stdout belongs to fixture output.
func SetupLogger(config core.Config) {
	level := fun.IF(config.Debug, zerolog.DebugLevel, zerolog.InfoLevel)

	log.Logger = zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Logger().
		Output(zerolog.ConsoleWriter{ //nolint:exhaustruct // not needed
			Out: os.Stderr,
			FormatLevel: func(i any) string {
				s, _ := i.(string)
				bg := fun.Switch(s, scuf.BgRed).
					Case(scuf.BgBlue, zerolog.LevelInfoValue).
					Case(scuf.BgGreen, zerolog.LevelWarnValue).
					Case(scuf.BgYellow, zerolog.LevelErrorValue).
					End()

				return scuf.String(" "+strings.ToUpper(s)+" ", bg, scuf.FgBlack)
			},
			FormatTimestamp: func(i any) string {
				s, _ := i.(string)
				t, err := time.Parse(zerolog.TimeFieldFormat, s)
				if err != nil {
					return s
				}

				return scuf.String(t.Format("[15:04:05]"), scuf.ModFaint, scuf.FgWhite)
			},
		})
}

// configDTO - config file shape, every field is optional
type configDTO struct {
	Interval     *string `json:"interval"`
	ExitOnSignal *bool   `json:"exit_on_signal"`
	Debug        *bool   `json:"debug"`
}

// Overrides of config values, applied on top of defaults and config file
type Overrides struct {
	Interval     fun.Option[time.Duration]
	ExitOnSignal fun.Option[bool]
	Debug        fun.Option[bool]
}

// Parse evaluates jsonnet (or plain json) config and applies it on top of base.
func Parse(filename string, data []byte, base core.Config) (core.Config, error) {
	jsonText, err := jsonnet.MakeVM().EvaluateAnonymousSnippet(filename, string(data))
	if err != nil {
		return fun.Zero[core.Config](), errors.Wrapf(err, "evaluate config %s", filename)
	}

	var dto configDTO
	if err := json.Unmarshal([]byte(jsonText), &dto); err != nil {
		return fun.Zero[core.Config](), errors.Wrapf(err, "parse config %s", filename)
	}

	config := base
	if dto.Interval != nil {
		interval, err := time.ParseDuration(*dto.Interval)
		if err != nil {
			return fun.Zero[core.Config](), errors.Wrapf(err, "parse interval %q", *dto.Interval)
		}
		config.Interval = interval
	}
	if dto.ExitOnSignal != nil {
		config.ExitOnSignal = *dto.ExitOnSignal
	}
	if dto.Debug != nil {
		config.Debug = *dto.Debug
	}

	return config, nil
}

// Load builds config from defaults, optional config file and overrides,
// in that order of precedence.
func Load(fs afero.Fs, filename fun.Option[string], overrides Overrides) (core.Config, error) {
	config := core.DefaultConfig

	if filename, ok := filename.Unpack(); ok {
		data, err := afero.ReadFile(fs, filename)
		if err != nil {
			return fun.Zero[core.Config](), errors.Wrapf(err, "read config %s", filename)
		}

		config, err = Parse(filename, data, config)
		if err != nil {
			return fun.Zero[core.Config](), err
		}
	}

	if interval, ok := overrides.Interval.Unpack(); ok {
		config.Interval = interval
	}
	if exitOnSignal, ok := overrides.ExitOnSignal.Unpack(); ok {
		config.ExitOnSignal = exitOnSignal
	}
	if debug, ok := overrides.Debug.Unpack(); ok {
		config.Debug = debug
	}

	if config.Interval <= 0 {
		return fun.Zero[core.Config](), errors.Newf("interval must be positive, got %s", config.Interval)
	}

	return config, nil
}
