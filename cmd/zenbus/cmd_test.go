package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenterm/zenbus/config"
	"github.com/zenterm/zenbus/env_mode"
	"github.com/zenterm/zenbus/json"
	"github.com/zenterm/zenbus/logging"
	"github.com/zenterm/zenbus/metrics"
)

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func configDir(t *testing.T, yaml string) string {
	t.Helper()
	t.Setenv(env_mode.EnvKey, "development")
	t.Cleanup(env_mode.Reset)
	prev := logging.Global()
	t.Cleanup(func() { logging.SetGlobal(prev) })

	dir := t.TempDir()
	if yaml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	}
	return dir
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	assert.Equal(t, "zenbus", root.Use)

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"check-pattern", "emit", "serve"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestCheckPattern(t *testing.T) {
	tests := []struct {
		args    []string
		want    string
		wantErr string
	}{
		{[]string{"user.*", "user.login"}, "match: user.* matches user.login\n", ""},
		{[]string{"user.**", "user"}, "match: user.** matches user\n", ""},
		{[]string{"user.*", "user.a.b"}, "no match: user.* does not match user.a.b\n", ""},
		{[]string{"a.**.b", "a.x.b"}, "", "invalid pattern"},
		{[]string{"a.*", "a..b"}, "", "invalid event key"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0]+" "+tt.args[1], func(t *testing.T) {
			out, err := executeCommand(newRootCmd(), append([]string{"check-pattern"}, tt.args...)...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func decodeEmit(t *testing.T, out string) emitOutput {
	t.Helper()
	var got emitOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	return got
}

func TestEmit_ReportsHandlers(t *testing.T) {
	dir := configDir(t, "bus:\n  sink: collector\n")

	out, err := executeCommand(newRootCmd(), "--config-dir", dir, "--env", "test", "--log-level", "error",
		"emit", "theme.toggled", "--json", `{"dark":false}`)
	require.NoError(t, err)

	got := decodeEmit(t, out)
	assert.Equal(t, "theme.toggled", got.Report.Key)
	// state subscriber, log catch-all
	assert.Equal(t, 2, got.Report.Handlers)
	assert.True(t, got.Report.IsAllOK())
	assert.Equal(t, "json", got.Payload)
}

func TestEmit_BadPayloadReportsError(t *testing.T) {
	dir := configDir(t, "")

	out, err := executeCommand(newRootCmd(), "--config-dir", dir, "--log-level", "error",
		"emit", "gpu.limit.changed", "--text", "lots")
	require.NoError(t, err)

	got := decodeEmit(t, out)
	assert.Equal(t, 1, got.Report.Errors)
	assert.Equal(t, "text", got.Payload)
}

func TestEmit_Rejections(t *testing.T) {
	dir := configDir(t, "")

	_, err := executeCommand(newRootCmd(), "--config-dir", dir, "--log-level", "error", "emit", "bad..key")
	assert.Error(t, err)

	_, err = executeCommand(newRootCmd(), "--config-dir", dir, "--log-level", "error", "emit", "x", "--json", "{")
	assert.Error(t, err)

	_, err = executeCommand(newRootCmd(), "--config-dir", dir, "--log-level", "error", "emit", "x", "--sink", "kafka")
	assert.Error(t, err)

	_, err = executeCommand(newRootCmd(), "--config-dir", dir, "--log-level", "error", "emit", "x", "--text", "a", "--json", "{}")
	assert.Error(t, err)
}

func TestEmit_InvalidConfig(t *testing.T) {
	dir := configDir(t, "bus:\n  sink: nowhere\n")

	_, err := executeCommand(newRootCmd(), "--config-dir", dir, "emit", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bus settings")
}

func TestServer_DemoRoundRecordsMetrics(t *testing.T) {
	cfg := config.NewAppConfig()
	cfg.Bus.Sink = config.SinkLog

	srv, err := newServer(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	defer srv.close()

	srv.demoRound(0)

	assert.Equal(t, float64(1), srv.collector.Value(metrics.MetricEmits, map[string]string{"key": "theme.toggled"}))
	assert.Equal(t, float64(3), srv.collector.Value(metrics.MetricEmits, map[string]string{"key": "config.changed"}))
	assert.False(t, srv.state.Dirty())

	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `event_emits_total{key="wizard.opened"} 1`)

	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Contains(t, rec.Body.String(), `"subscriptions":8`)
}

func TestRunServe_StopsOnCancel(t *testing.T) {
	cfg := config.NewAppConfig()
	cmd := &cobra.Command{}
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, cmd, cfg, logging.Nop(), &serveOptions{
			addr:        "127.0.0.1:0",
			interval:    10 * time.Millisecond,
			printRoutes: true,
		})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
	assert.Contains(t, buf.String(), "/metrics")
}
