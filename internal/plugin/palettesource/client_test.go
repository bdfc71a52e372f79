package palettesource

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	pluginapi "github.com/jmylchreest/thumbweave/pkg/plugin"
)

// mockProcessRunner is a mock implementation of ProcessRunner for testing.
type mockProcessRunner struct {
	info      pluginapi.PluginInfo
	runFunc   func(stdin io.Reader) (stdout, stderr []byte, err error)
	callCount int
	lastArgs  []string
}

func (m *mockProcessRunner) Run(ctx context.Context, _ string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	m.callCount++
	m.lastArgs = args
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if len(args) == 1 && args[0] == pluginapi.InfoFlag {
		data, err := json.Marshal(m.info)
		return data, nil, err
	}
	if m.runFunc != nil {
		return m.runFunc(stdin)
	}
	return []byte(`{"colours":[]}`), nil, nil
}

func jsonInfo() pluginapi.PluginInfo {
	return pluginapi.PluginInfo{
		Name:            "mock",
		ProtocolVersion: pluginapi.ProtocolVersion,
		PluginProtocol:  string(pluginapi.PluginTypeJSON),
	}
}

// fakePluginFile returns an existing path for New's stat check.
func fakePluginFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plugin")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o700); err != nil { // #nosec G306 -- test plugin must be executable
		t.Fatal(err)
	}
	return path
}

// copyTestScript copies a test script from testdata to a temporary directory.
// Returns the path to the copied script with execute permissions set.
func copyTestScript(t *testing.T, scriptName string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script plugins need a POSIX shell")
	}

	scriptContent, err := os.ReadFile(filepath.Join("testdata", "scripts", scriptName))
	if err != nil {
		t.Fatalf("Failed to read testdata script %s: %v", scriptName, err)
	}

	pluginPath := filepath.Join(t.TempDir(), scriptName)
	if err := os.WriteFile(pluginPath, scriptContent, 0o755); err != nil { // #nosec G306 -- test plugin must be executable
		t.Fatalf("Failed to write test script: %v", err)
	}
	return pluginPath
}

func TestNewDetectsProtocol(t *testing.T) {
	tests := []struct {
		name     string
		protocol string
		want     pluginapi.PluginType
	}{
		{"json", "json-stdio", pluginapi.PluginTypeJSON},
		{"go-plugin", "go-plugin", pluginapi.PluginTypeGoPlugin},
		{"default", "", pluginapi.PluginTypeGoPlugin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := jsonInfo()
			info.PluginProtocol = tt.protocol
			runner := &mockProcessRunner{info: info}

			c, err := New(context.Background(), fakePluginFile(t), Options{Runner: runner})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer c.Close()
			if c.protocolType != tt.want {
				t.Errorf("protocol = %s, want %s", c.protocolType, tt.want)
			}
			if c.Name() != "mock" {
				t.Errorf("Name() = %s", c.Name())
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(context.Background(), "/nonexistent/plugin", Options{}); err == nil {
		t.Error("expected error for missing plugin")
	}
	if _, err := New(context.Background(), t.TempDir(), Options{}); err == nil {
		t.Error("expected error for directory")
	}

	unknown := jsonInfo()
	unknown.PluginProtocol = "carrier-pigeon"
	if _, err := New(context.Background(), fakePluginFile(t), Options{Runner: &mockProcessRunner{info: unknown}}); err == nil {
		t.Error("expected error for unknown protocol")
	}

	old := jsonInfo()
	old.ProtocolVersion = "0.0.1"
	if _, err := New(context.Background(), fakePluginFile(t), Options{Runner: &mockProcessRunner{info: old}}); err == nil {
		t.Error("expected error for incompatible protocol version")
	}
}

func TestExtractJSONWithMock(t *testing.T) {
	var received pluginapi.ExtractRequest
	runner := &mockProcessRunner{
		info: jsonInfo(),
		runFunc: func(stdin io.Reader) ([]byte, []byte, error) {
			if err := json.NewDecoder(stdin).Decode(&received); err != nil {
				return nil, nil, err
			}
			return []byte(`{"colours":[{"r":1,"g":2,"b":3}]}`), nil, nil
		},
	}
	c, err := New(context.Background(), fakePluginFile(t), Options{Runner: runner})
	if err != nil {
		t.Fatal(err)
	}

	colours, err := c.Extract(context.Background(), []byte("png bytes"), 5)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if diff := cmp.Diff([]color.Color{color.NRGBA{R: 1, G: 2, B: 3, A: 255}}, colours); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
	if received.Count != 5 || string(received.Image) != "png bytes" {
		t.Errorf("plugin received %+v", received)
	}
	if len(runner.lastArgs) != 0 {
		t.Errorf("extract ran with args %v", runner.lastArgs)
	}
}

func TestExtractJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		runErr  error
		wantMsg string
	}{
		{"reported error", `{"error":"bad image"}`, nil, "bad image"},
		{"garbage", `not json`, nil, "failed to parse plugin output"},
		{"exit failure", ``, errors.New("exit status 3"), "plugin execution failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockProcessRunner{
				info: jsonInfo(),
				runFunc: func(io.Reader) ([]byte, []byte, error) {
					return []byte(tt.stdout), []byte("stderr text"), tt.runErr
				},
			}
			c, err := New(context.Background(), fakePluginFile(t), Options{Runner: runner})
			if err != nil {
				t.Fatal(err)
			}
			_, err = c.Extract(context.Background(), nil, 5)
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Extract() error = %v, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestExtractJSONScript(t *testing.T) {
	path := copyTestScript(t, "json-palette.sh")

	c, err := New(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if c.Info().Description != "Fixed two-colour palette" {
		t.Errorf("Info() = %+v", c.Info())
	}

	colours, err := c.Extract(context.Background(), []byte("image"), 5)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	want := []color.Color{
		color.NRGBA{R: 255, A: 255},
		color.NRGBA{G: 255, A: 255},
	}
	if diff := cmp.Diff(want, colours); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractJSONScriptFailure(t *testing.T) {
	c, err := New(context.Background(), copyTestScript(t, "failing.sh"), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = c.Extract(context.Background(), []byte("image"), 5)
	if err == nil || !strings.Contains(err.Error(), "cannot read image") {
		t.Errorf("Extract() error = %v, want the plugin's message", err)
	}
}

func TestExtractJSONScriptTimeout(t *testing.T) {
	c, err := New(context.Background(), copyTestScript(t, "slow.sh"), Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = c.Extract(ctx, []byte("image"), 5)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected context.DeadlineExceeded error, got: %v", err)
	}
}

func TestDetectProtocolScripts(t *testing.T) {
	runner := NewRealProcessRunner()

	if _, err := DetectProtocol(context.Background(), runner, copyTestScript(t, "incompatible.sh")); err == nil {
		t.Error("expected error for incompatible plugin")
	}

	_, err := DetectProtocol(context.Background(), runner, copyTestScript(t, "no-info.sh"))
	if err == nil || !strings.Contains(err.Error(), "usage: no-info") {
		t.Errorf("DetectProtocol() error = %v, want stderr in message", err)
	}
}

func TestExtractUnsupportedProtocol(t *testing.T) {
	c := &Client{protocolType: "smoke-signals"}
	if _, err := c.Extract(context.Background(), nil, 5); err == nil {
		t.Error("expected error for unsupported protocol")
	}
	c.Close()
}
