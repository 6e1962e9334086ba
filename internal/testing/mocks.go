package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/aristath/hindsight/internal/domain"
	"github.com/aristath/hindsight/internal/modules/prices"
)

// MockResolver serves fixed quotes keyed by class and ref. Unknown pairs fail
// with prices.ErrResolutionExhausted. Safe for concurrent use.
type MockResolver struct {
	mu     sync.Mutex
	quotes map[string]domain.Quote
	calls  int
}

// NewMockResolver creates a resolver with no quotes
func NewMockResolver() *MockResolver {
	return &MockResolver{quotes: make(map[string]domain.Quote)}
}

// Set registers the quote returned for class and ref
func (m *MockResolver) Set(class domain.AssetClass, ref string, q domain.Quote) *MockResolver {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[string(class)+"|"+ref] = q
	return m
}

// ResolveCurrent implements the current price resolver contract
func (m *MockResolver) ResolveCurrent(_ context.Context, class domain.AssetClass, ref string) (domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if q, ok := m.quotes[string(class)+"|"+ref]; ok {
		return q, nil
	}
	return domain.Quote{}, fmt.Errorf("%w: %s %s", prices.ErrResolutionExhausted, class, ref)
}

// Calls returns how many resolutions were requested
func (m *MockResolver) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
