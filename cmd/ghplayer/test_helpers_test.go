package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"ghplayer/internal/config"
	"ghplayer/internal/contentapi"
	"ghplayer/internal/daemon"
	"ghplayer/internal/logging"
	"ghplayer/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	source     *testsupport.FakeSource
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("GHPLAYER_API_TOKEN", "")
	t.Setenv("GHPLAYER_ACCESS_TOKEN", "")
	t.Chdir(base)

	cfg := testsupport.NewConfig(t, testsupport.WithBackend("https://api.test", "anon-key"))
	store := testsupport.MustOpenCredentials(t, cfg)

	source := &testsupport.FakeSource{
		Latest: testsupport.Episodes("e1", "e2"),
		Series: []contentapi.Playlist{{ID: "p1", Title: "Empire"}},
	}
	source.Latest[0].ImageURL = "https://cdn.test/e1.jpg"
	d, err := daemon.New(cfg, store, logging.NewNop(),
		daemon.WithSource(source),
		daemon.WithArtwork(&testsupport.FakeArtwork{}),
	)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon start: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		d.Stop()
	})

	onDisk := *cfg
	onDisk.Paths.APIBind = d.APIAddress()
	configPath := filepath.Join(homeDir, ".config", "ghplayer", "config.toml")
	writeTestConfig(t, configPath, &onDisk)

	return &cliTestEnv{cfg: &onDisk, daemon: d, source: source, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
