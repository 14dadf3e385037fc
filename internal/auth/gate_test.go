package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ghplayer/internal/auth"
	"ghplayer/internal/credentials"
	"ghplayer/internal/session"
	"ghplayer/internal/testsupport"
)

func TestExplicitFlagSkipsCredentialStore(t *testing.T) {
	creds := testsupport.LoggedInCredentials(t, "https://x.test")
	gate := auth.NewGate(creds, nil)

	if gate.IsLoggedIn(context.Background(), session.Extras{session.ExtraLoggedIn: "false"}) {
		t.Fatal("expected explicit false to win over a valid stored token")
	}
	if !gate.IsLoggedIn(context.Background(), session.Extras{session.ExtraLoggedIn: "true"}) {
		t.Fatal("expected explicit true")
	}
	if creds.Loads() != 0 {
		t.Fatalf("expected no credential loads on the fast path, got %d", creds.Loads())
	}
}

func TestSlowPathChecksStoredToken(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		setup func(*testsupport.StaticCredentials)
		want  bool
	}{
		{"valid token", func(s *testsupport.StaticCredentials) {
			s.Set(credentials.Config{AccessToken: testsupport.NewJWT(t, now.Add(time.Minute))})
		}, true},
		{"expired token", func(s *testsupport.StaticCredentials) {
			s.Set(credentials.Config{AccessToken: testsupport.NewJWT(t, now.Add(-time.Minute))})
		}, false},
		{"token without exp", func(s *testsupport.StaticCredentials) {
			s.Set(credentials.Config{AccessToken: testsupport.NewJWT(t, time.Time{})})
		}, true},
		{"garbage token", func(s *testsupport.StaticCredentials) {
			s.Set(credentials.Config{AccessToken: "not-a-jwt"})
		}, false},
		{"empty token", func(s *testsupport.StaticCredentials) {
			s.Set(credentials.Config{BaseURL: "https://x.test", APIKey: "k"})
		}, false},
		{"nothing stored", func(s *testsupport.StaticCredentials) { s.Empty() }, false},
		{"load error", func(s *testsupport.StaticCredentials) { s.Fail(errors.New("locked")) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := testsupport.NewStaticCredentials(credentials.Config{})
			tt.setup(creds)
			gate := auth.NewGate(creds, nil, auth.WithClock(func() time.Time { return now }))
			if got := gate.IsLoggedIn(context.Background(), session.Extras{}); got != tt.want {
				t.Fatalf("IsLoggedIn() = %v, want %v", got, tt.want)
			}
			if creds.Loads() != 1 {
				t.Fatalf("expected exactly one credential load, got %d", creds.Loads())
			}
		})
	}
}

func TestSnapshotReportsProvenance(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(-time.Hour).Truncate(time.Second)
	creds := testsupport.NewStaticCredentials(credentials.Config{AccessToken: testsupport.NewJWT(t, exp)})
	gate := auth.NewGate(creds, nil, auth.WithClock(func() time.Time { return now }))

	snap := gate.Snapshot(context.Background(), nil)
	if snap.Source != auth.SourceCredentials || snap.LoggedIn || !snap.Expired || !snap.HasToken {
		t.Fatalf("unexpected credential snapshot: %+v", snap)
	}
	if !snap.ExpiresAt.Equal(exp) {
		t.Fatalf("expected expiry %v, got %v", exp, snap.ExpiresAt)
	}

	snap = gate.Snapshot(context.Background(), session.Extras{session.ExtraLoggedIn: "true"})
	if snap.Source != auth.SourceExtras || !snap.LoggedIn || !snap.Expired {
		t.Fatalf("expected extras to decide while credentials still reported, got %+v", snap)
	}
}

func TestNilLoaderMeansLoggedOut(t *testing.T) {
	gate := auth.NewGate(nil, nil)
	if gate.IsLoggedIn(context.Background(), nil) {
		t.Fatal("expected logged out without a credential loader")
	}
}
