package chatbackend

import (
	"context"
	"fmt"
)

// mockLLM implements LLMBackend for testing, covering the full
// interface surface the virtual filesystem actually calls.
type mockLLM struct {
	model          string
	temperature    float64
	prefill        string
	thinkingTokens int
	messages       []Message
	lastTokens     int
	totalTokens    int
	contextLimit   int

	compactCalled bool
	compactError  error
	askResponse   string
	askError      error
}

func newMockLLM() *mockLLM {
	return &mockLLM{
		model:        "mock-model",
		temperature:  0.7,
		contextLimit: 200000,
	}
}

func (m *mockLLM) Model() string                     { return m.model }
func (m *mockLLM) SetModel(model string)              { m.model = model }
func (m *mockLLM) Temperature() float64               { return m.temperature }
func (m *mockLLM) SetTemperature(temp float64) error {
	if temp < 0 || temp > 2 {
		return fmt.Errorf("invalid temperature")
	}
	m.temperature = temp
	return nil
}
func (m *mockLLM) ThinkingTokens() int          { return m.thinkingTokens }
func (m *mockLLM) SetThinkingTokens(tokens int) { m.thinkingTokens = tokens }
func (m *mockLLM) Prefill() string              { return m.prefill }
func (m *mockLLM) SetPrefill(prefill string)    { m.prefill = prefill }
func (m *mockLLM) LastTokens() int              { return m.lastTokens }
func (m *mockLLM) TotalTokens() int             { return m.totalTokens }
func (m *mockLLM) ContextLimit() int            { return m.contextLimit }

func (m *mockLLM) Compact(ctx context.Context) error {
	m.compactCalled = true
	if m.compactError != nil {
		return m.compactError
	}
	m.totalTokens = m.totalTokens / 4
	m.messages = []Message{{Role: "system", Content: "compacted summary"}}
	return nil
}

func (m *mockLLM) Messages() []Message {
	result := make([]Message, len(m.messages))
	copy(result, m.messages)
	return result
}

func (m *mockLLM) MessagesJSON() ([]byte, error) {
	return contextJSON(m.messages)
}

func (m *mockLLM) AddSystemMessage(content string) {
	m.messages = append([]Message{{Role: "system", Content: content}}, m.messages...)
}

func (m *mockLLM) Reset() {
	m.messages = nil
	m.lastTokens = 0
	m.totalTokens = 0
}

func (m *mockLLM) Ask(ctx context.Context, prompt string) (string, error) {
	if m.askError != nil {
		return "", m.askError
	}
	m.messages = append(m.messages, Message{Role: "user", Content: prompt})
	m.messages = append(m.messages, Message{Role: "assistant", Content: m.askResponse})
	m.lastTokens = len(prompt) + len(m.askResponse)
	m.totalTokens += m.lastTokens
	return m.askResponse, nil
}

func (m *mockLLM) StartStream(ctx context.Context, prompt string) error {
	return fmt.Errorf("streaming not implemented in mock")
}

func (m *mockLLM) ReadStreamChunk() (string, bool) { return "", false }
func (m *mockLLM) IsStreaming() bool               { return false }
func (m *mockLLM) WaitStream()                     {}

var _ LLMBackend = (*mockLLM)(nil)
