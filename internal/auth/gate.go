// Package auth decides whether real content or only the sign-in placeholder
// is exposed to a browsing client.
package auth

import (
	"context"
	"log/slog"
	"time"

	"ghplayer/internal/credentials"
	"ghplayer/internal/logging"
	"ghplayer/internal/session"
)

// Source names where a login decision came from.
type Source string

const (
	SourceExtras      Source = "extras"
	SourceCredentials Source = "credentials"
)

// Snapshot is a single login decision with its provenance.
type Snapshot struct {
	LoggedIn  bool      `json:"logged_in"`
	Source    Source    `json:"source"`
	Stored    bool      `json:"stored"`
	HasToken  bool      `json:"has_token"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	Expired   bool      `json:"expired"`
}

// Gate derives the logged-in state from session extras or stored credentials.
type Gate struct {
	creds  credentials.Loader
	logger *slog.Logger
	now    func() time.Time
}

// Option customizes a Gate.
type Option func(*Gate)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGate constructs a gate reading from creds on the slow path.
func NewGate(creds credentials.Loader, logger *slog.Logger, opts ...Option) *Gate {
	g := &Gate{
		creds:  creds,
		logger: logging.NewComponentLogger(logger, "auth"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsLoggedIn trusts an explicit flag in extras and otherwise checks the stored
// token's expiry.
func (g *Gate) IsLoggedIn(ctx context.Context, extras session.Extras) bool {
	if loggedIn, ok := extras.LoggedIn(); ok {
		return loggedIn
	}
	return g.fromCredentials(ctx).LoggedIn
}

// Snapshot reports the decision IsLoggedIn would make along with the details
// that produced it. Stored credentials are always inspected.
func (g *Gate) Snapshot(ctx context.Context, extras session.Extras) Snapshot {
	snap := g.fromCredentials(ctx)
	if loggedIn, ok := extras.LoggedIn(); ok {
		snap.LoggedIn = loggedIn
		snap.Source = SourceExtras
	}
	return snap
}

func (g *Gate) fromCredentials(ctx context.Context) Snapshot {
	snap := Snapshot{Source: SourceCredentials}
	if g.creds == nil {
		return snap
	}
	cfg, ok, err := g.creds.Load(ctx)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, g.logger), "credential load failed", "auth_credentials_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the credential database permissions"),
			logging.String(logging.FieldImpact, "treated as logged out"),
		)
		return snap
	}
	snap.Stored = ok
	snap.HasToken = ok && cfg.HasToken()
	if !snap.HasToken {
		return snap
	}
	if exp, hasExp, err := credentials.TokenExpiry(cfg.AccessToken); err == nil && hasExp {
		snap.ExpiresAt = exp
	}
	snap.Expired = credentials.IsTokenExpired(cfg.AccessToken, g.now())
	snap.LoggedIn = !snap.Expired
	return snap
}
