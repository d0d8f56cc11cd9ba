package mocks

import (
	"context"
	"sync"

	"github.com/replaysight/replaysight/internal/domain"
)

// MockDetector is a mock implementation of domain.Detector for testing.
type MockDetector struct {
	mu           sync.Mutex
	DetectorName string
	Report       []domain.UserSignals
	Err          error
	Calls        int
}

func (m *MockDetector) Name() string {
	if m.DetectorName == "" {
		return "mock"
	}
	return m.DetectorName
}

func (m *MockDetector) Detect(ctx context.Context) ([]domain.UserSignals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Report, nil
}
