package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ghplayer/internal/api"
	"ghplayer/internal/mediaid"
	"ghplayer/internal/testsupport"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	stdout, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	requireContains(t, stdout, "Wrote sample configuration to "+target)
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	requireContains(t, string(data), "[backend]")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
}

func TestConfigValidateAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	requireContains(t, stdout, "Config path: "+env.configPath)
	requireContains(t, stdout, "Configuration valid")

	stdout, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	requireContains(t, stdout, "https://api.test")
	if strings.Contains(stdout, "anon-key") {
		t.Fatalf("expected api key to be redacted, got %q", stdout)
	}
}

func TestConfigValidateRejectsBadBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[backend]\nurl = \"ftp://nope\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, path); err == nil {
		t.Fatal("expected validation failure for non-http backend url")
	}
}

func TestBrowseShowsSignInWhileLoggedOut(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"browse"}, env.configPath)
	if err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	requireContains(t, stdout, mediaid.LoginID)
	requireContains(t, stdout, "Sign in on your phone")

	stdout, _, err = runCLI(t, []string{"browse", "--logged-in", "true", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("browse --logged-in failed: %v", err)
	}
	var resp api.ChildrenResponse
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("decode browse json %q: %v", stdout, err)
	}
	if len(resp.Items) != 3 || resp.Items[0].ID != mediaid.SeriesListID {
		t.Fatalf("unexpected root sections %+v", resp.Items)
	}
}

func TestBrowseRejectsInvalidOverride(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"browse", "--logged-in", "maybe"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "--logged-in") {
		t.Fatalf("expected override parse error, got %v", err)
	}
}

func TestBrowseSeriesAndItem(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"browse", mediaid.SeriesListID, "--logged-in", "true"}, env.configPath)
	if err != nil {
		t.Fatalf("browse series failed: %v", err)
	}
	requireContains(t, stdout, "Empire")
	requireContains(t, stdout, "folder")

	stdout, _, err = runCLI(t, []string{"item", mediaid.LoginID}, env.configPath)
	if err != nil {
		t.Fatalf("item failed: %v", err)
	}
	requireContains(t, stdout, "Title:     Sign in on your phone")

	_, _, err = runCLI(t, []string{"item", mediaid.SeriesListID}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found while logged out, got %v", err)
	}
}

func TestPlayBuildsLatestQueue(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"play", mediaid.Latest("e2"), "--logged-in", "true"}, env.configPath)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	requireContains(t, stdout, mediaid.Latest("e1"))
	requireContains(t, stdout, "▶")
	requireContains(t, stdout, "Start position: player default")
	if !env.daemon.Host().HasPlaylist() {
		t.Fatal("expected daemon to record a playlist")
	}

	stdout, _, err = runCLI(t, []string{"play", mediaid.Latest("e2"), "--logged-in", "true", "--position", "1500", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("play --json failed: %v", err)
	}
	var resp api.QueueResponse
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("decode queue json %q: %v", stdout, err)
	}
	if resp.StartIndex != 1 || resp.StartPositionMs == nil || *resp.StartPositionMs != 1500 {
		t.Fatalf("unexpected queue %+v", resp)
	}
}

func TestLoginLogoutNotifiesDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	token := testsupport.NewJWT(t, time.Now().Add(time.Hour))

	stdout, _, err := runCLI(t, []string{"login", "--token", token}, env.configPath)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	requireContains(t, stdout, "Stored credentials for https://api.test")
	requireContains(t, stdout, "Token expires")
	requireContains(t, stdout, "Daemon notified")
	if loggedIn, ok := env.daemon.Host().Extras().LoggedIn(); !ok || !loggedIn {
		t.Fatal("expected daemon extras to report logged in")
	}

	stdout, _, err = runCLI(t, []string{"auth", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("auth status failed: %v", err)
	}
	requireContains(t, stdout, "Logged in:   yes")

	stdout, _, err = runCLI(t, []string{"logout"}, env.configPath)
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	requireContains(t, stdout, "Access token removed")
	if loggedIn, _ := env.daemon.Host().Extras().LoggedIn(); loggedIn {
		t.Fatal("expected daemon extras to report logged out")
	}

	stdout, _, err = runCLI(t, []string{"auth", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("auth status failed: %v", err)
	}
	requireContains(t, stdout, "Logged in:   no")
}

func TestLoginRejectsMalformedToken(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"login", "--token", "not-a-jwt"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "access token rejected") {
		t.Fatalf("expected malformed token rejection, got %v", err)
	}
}

func TestStatusReportsDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	requireContains(t, stdout, "Daemon:      running")
	requireContains(t, stdout, "Logged in:   no")
	requireContains(t, stdout, "Artwork cache")

	stdout, _, err = runCLI(t, []string{"status", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("status --json failed: %v", err)
	}
	var resp api.StatusResponse
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("decode status json %q: %v", stdout, err)
	}
	if !resp.Running || !resp.Worker.Running {
		t.Fatalf("unexpected status %+v", resp)
	}
}

func TestEventsListsLoginChange(t *testing.T) {
	env := setupCLITestEnv(t)
	env.daemon.Host().SetLoginState(true)

	stdout, _, err := runCLI(t, []string{"events"}, env.configPath)
	if err != nil {
		t.Fatalf("events failed: %v", err)
	}
	requireContains(t, stdout, "logged_in=yes")
}

func TestStatusWithoutDaemonExplainsRefusal(t *testing.T) {
	env := setupCLITestEnv(t)
	env.daemon.Stop()

	_, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err == nil {
		t.Fatal("expected status to fail with daemon stopped")
	}
}

func TestArtworkWritesOutputFile(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "covers", "e1.jpg")
	ref := "art:https://cdn.test/e1.jpg"

	_, _, err := runCLI(t, []string{"artwork", ref, "-o", target}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not cached") {
		t.Fatalf("expected unresolved ref to be refused, got %v", err)
	}

	if _, _, err := runCLI(t, []string{"browse", mediaid.EpisodesListID, "--logged-in", "true"}, env.configPath); err != nil {
		t.Fatalf("browse episodes failed: %v", err)
	}
	stdout, _, err := runCLI(t, []string{"artwork", ref, "-o", target}, env.configPath)
	if err != nil {
		t.Fatalf("artwork failed: %v", err)
	}
	requireContains(t, stdout, "Wrote ")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read artwork: %v", err)
	}
	if string(data) != "art:https://cdn.test/e1.jpg" {
		t.Fatalf("unexpected artwork bytes %q", data)
	}
}
