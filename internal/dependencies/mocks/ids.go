package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/snakegame-go/internal/dependencies/ids"
	"github.com/mcoot/snakegame-go/internal/model"
)

// MockIDs is a deterministic Generator. Queued values are returned first,
// then sequential ids such as "user-1".
type MockIDs struct {
	mu sync.Mutex

	userIDs []model.UserID
	tokens  []string

	userCount  int
	scoreCount int
	tokenCount int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

func (m *MockIDs) UserID() model.UserID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.userIDs) > 0 {
		id := m.userIDs[0]
		m.userIDs = m.userIDs[1:]
		return id
	}
	m.userCount++
	return model.UserID(fmt.Sprintf("user-%d", m.userCount))
}

// ScoreIDs sort in issue order so tests can rely on them
func (m *MockIDs) ScoreID() model.ScoreID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoreCount++
	return model.ScoreID(fmt.Sprintf("score-%06d", m.scoreCount))
}

func (m *MockIDs) SessionToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tokens) > 0 {
		token := m.tokens[0]
		m.tokens = m.tokens[1:]
		return token
	}
	m.tokenCount++
	return fmt.Sprintf("token-%d", m.tokenCount)
}

// QueueUserIDs adds values to the UserID result queue
func (m *MockIDs) QueueUserIDs(values ...model.UserID) {
	m.mu.Lock()
	m.userIDs = append(m.userIDs, values...)
	m.mu.Unlock()
}

// QueueTokens adds values to the SessionToken result queue
func (m *MockIDs) QueueTokens(values ...string) {
	m.mu.Lock()
	m.tokens = append(m.tokens, values...)
	m.mu.Unlock()
}
