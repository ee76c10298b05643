// Package fixtures provides stores and configuration for tests.
package fixtures

import (
	"context"
	"testing"

	"github.com/billingcat/notes/model"
)

const (
	DefaultClientID     = "test-client"
	DefaultClientSecret = "test-client-secret"
	DefaultSecret       = "test-session-secret"
)

// NewTestConfig returns a valid configuration for the in-memory backend
// without simulated latency.
func NewTestConfig() *model.Config {
	return &model.Config{
		Mode:               "test",
		Port:               8080,
		BaseURL:            "http://localhost:8080",
		CookieSecret:       DefaultSecret,
		GoogleClientID:     DefaultClientID,
		GoogleClientSecret: DefaultClientSecret,
		Latency:            "0s",
	}
}

// NewTestStore opens a seeded in-memory store for cfg, or for
// NewTestConfig when cfg is nil.
func NewTestStore(t testing.TB, cfg *model.Config) *model.Store {
	t.Helper()
	if cfg == nil {
		cfg = NewTestConfig()
	}
	store, err := model.InitDatabase(context.Background(), cfg)
	if err != nil {
		t.Fatalf("cannot create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}
