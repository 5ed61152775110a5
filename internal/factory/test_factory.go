package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/snakegame-go/internal/dependencies/mocks"
	"github.com/mcoot/snakegame-go/internal/metrics"
	"github.com/mcoot/snakegame-go/internal/services/credential"
	"github.com/mcoot/snakegame-go/internal/services/ranking"
	"github.com/mcoot/snakegame-go/internal/services/session"
	"github.com/mcoot/snakegame-go/internal/storage/memory"
)

// TestEpoch is the initial time of the test app's mock clock
var TestEpoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
}

// NewTestApp creates an App configured for testing with mocked dependencies,
// in-memory storage, a cheap bcrypt cost and a private metrics registry
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(TestEpoch)
	mockIDs := mocks.NewMockIDs()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	app := newWithDependencies(
		store,
		mockClock,
		mockIDs,
		credential.NewBcryptHasher(bcrypt.MinCost),
		session.DefaultConfig(),
		ranking.DefaultConfig(),
		m,
		slog.New(slog.NewJSONHandler(io.Discard, nil)),
	)
	app.Registry = reg

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}
