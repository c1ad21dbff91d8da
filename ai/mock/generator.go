package mock

import "context"

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, a canned answer is returned.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	// Prompts records every prompt passed to Generate.
	Prompts []string

	callCount int
}

// NewMockGenerator creates a mock generator returning a canned answer.
// Note: Returns concrete type to allow test assertions via CallCount().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate records the prompt and returns the canned or injected answer.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.callCount++
	m.Prompts = append(m.Prompts, prompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}

	return "mock answer", nil
}

// CallCount returns the number of Generate invocations.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears recorded prompts, the call count, and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.Prompts = nil
	m.GenerateFunc = nil
}
