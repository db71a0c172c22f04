package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shoenig/test"
	"github.com/shoenig/test/must"

	"github.com/rprtr258/catch-sigterm/internal/core"
	"github.com/rprtr258/catch-sigterm/internal/heartbeat"
)

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.SetArgs(args)
	app.SetOut(&out)
	err := app.ExecuteContext(ctx)
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, context.Background(), "version")
	must.NoError(t, err)
	test.EqOp(t, core.Version+"\n", out)
}

func TestRunWithIntervalFlag(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out, err := execute(t, ctx, "--interval", "10ms")
	must.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	test.GreaterEq(t, 3, len(lines))
	for _, line := range lines {
		test.EqOp(t, heartbeat.LineSleeping, line)
	}
}

func TestRunWithConfigFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "fixture.jsonnet")
	must.NoError(t, os.WriteFile(filename, []byte(`{interval: "10ms"}`), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out, err := execute(t, ctx, "--config", filename)
	must.NoError(t, err)
	test.StrContains(t, out, heartbeat.LineSleeping+"\n")
}

func TestRunErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"missing config":    {"--config", filepath.Join(t.TempDir(), "nope.json")},
		"negative interval": {"--interval", "-1s"},
		"positional args":   {"extra"},
	} {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, context.Background(), args...)
			test.Error(t, err)
			test.EqOp(t, "", out)
		})
	}
}
