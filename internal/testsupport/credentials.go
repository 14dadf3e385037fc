package testsupport

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ghplayer/internal/config"
	"ghplayer/internal/credentials"
)

// NewJWT signs a throwaway HS256 token. A zero exp omits the exp claim.
func NewJWT(t testing.TB, exp time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{Subject: "listener-1", IssuedAt: jwt.NewNumericDate(time.Now())}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return signed
}

// MustOpenCredentials opens the SQLite credential store under cfg's data dir
// and registers cleanup.
func MustOpenCredentials(t testing.TB, cfg *config.Config) *credentials.Store {
	t.Helper()

	store, err := credentials.Open(cfg.CredentialsPath())
	if err != nil {
		t.Fatalf("credentials.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// StaticCredentials is an in-memory credentials.Loader.
type StaticCredentials struct {
	mu    sync.Mutex
	cfg   credentials.Config
	ok    bool
	err   error
	loads int
}

// NewStaticCredentials returns a loader holding cfg.
func NewStaticCredentials(cfg credentials.Config) *StaticCredentials {
	return &StaticCredentials{cfg: cfg, ok: true}
}

// LoggedInCredentials returns a loader with a token valid for an hour.
func LoggedInCredentials(t testing.TB, baseURL string) *StaticCredentials {
	t.Helper()
	return NewStaticCredentials(credentials.Config{
		BaseURL:     baseURL,
		APIKey:      "anon-key",
		AccessToken: NewJWT(t, time.Now().Add(time.Hour)),
	})
}

// Load implements credentials.Loader.
func (s *StaticCredentials) Load(context.Context) (credentials.Config, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.cfg, s.ok, s.err
}

// Set replaces the stored configuration.
func (s *StaticCredentials) Set(cfg credentials.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.ok = true
	s.err = nil
}

// Empty makes the loader report that nothing is stored.
func (s *StaticCredentials) Empty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = credentials.Config{}
	s.ok = false
}

// Fail makes subsequent loads return err.
func (s *StaticCredentials) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Loads returns how many times Load was called.
func (s *StaticCredentials) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}
