// Package features provides shared test utilities for UI feature tests.
package features

import (
	"testing"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/djhelper/internal/generator"
	"github.com/leapstack-labs/djhelper/internal/panel/paneltest"
	"github.com/leapstack-labs/djhelper/internal/testutil"
	"github.com/leapstack-labs/djhelper/internal/ui/notifier"
	"github.com/leapstack-labs/djhelper/internal/workspace"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Workspace    *workspace.Store
	Runner       *paneltest.Runner
	Generator    *generator.Generator
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates an in-memory workspace seeded with folders and a
// generator whose process runs are recorded by a fake runner.
func SetupTestFixture(t *testing.T, folders ...string) *TestFixture {
	t.Helper()

	runner := &paneltest.Runner{}
	gen := generator.New(generator.Config{
		InPlace: true,
		Runner:  runner,
		Logger:  testutil.NewTestLogger(t),
	})

	return &TestFixture{
		Workspace:    workspace.NewMemory(folders...),
		Runner:       runner,
		Generator:    gen,
		Notifier:     NewTestNotifier(),
		SessionStore: NewTestSessionStore(),
	}
}

// NewTestNotifier creates a notifier for testing.
func NewTestNotifier() *notifier.Notifier {
	return notifier.New()
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
