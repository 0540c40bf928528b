package chatbackend

import "testing"

func TestContextLimitForModel(t *testing.T) {
	tests := []struct {
		model    string
		expected int
	}{
		{"claude-3-opus-20240229", 200000},
		{"claude-3-sonnet-20240229", 200000},
		{"claude-3-haiku-20240307", 200000},
		{"CLAUDE-3-OPUS", 200000},
		{"unknown-model", 200000},
	}

	for _, tc := range tests {
		t.Run(tc.model, func(t *testing.T) {
			got := contextLimitForModel(tc.model)
			if got != tc.expected {
				t.Errorf("contextLimitForModel(%q) = %d, want %d", tc.model, got, tc.expected)
			}
		})
	}
}

func TestClientReset(t *testing.T) {
	c := NewClient("dummy-key")
	c.messages = []Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	}
	c.lastTokens = 100
	c.totalTokens = 500

	c.Reset()

	if len(c.messages) != 0 {
		t.Errorf("Reset() should clear messages, got %d", len(c.messages))
	}
	if c.lastTokens != 0 {
		t.Errorf("Reset() should clear lastTokens, got %d", c.lastTokens)
	}
	if c.totalTokens != 0 {
		t.Errorf("Reset() should clear totalTokens, got %d", c.totalTokens)
	}
}

func TestClientTemperatureValidation(t *testing.T) {
	c := NewClient("dummy-key")

	if got := c.Temperature(); got != 0.7 {
		t.Errorf("Temperature() = %f, want 0.7", got)
	}
	if err := c.SetTemperature(1.5); err != nil {
		t.Errorf("SetTemperature(1.5) error: %v", err)
	}
	if got := c.Temperature(); got != 1.5 {
		t.Errorf("Temperature() = %f, want 1.5", got)
	}
	if err := c.SetTemperature(-0.1); err == nil {
		t.Error("SetTemperature(-0.1) should return error")
	}
	if err := c.SetTemperature(2.1); err == nil {
		t.Error("SetTemperature(2.1) should return error")
	}
}

func TestClientPrefillRoundTrip(t *testing.T) {
	c := NewClient("dummy-key")
	if got := c.Prefill(); got != "" {
		t.Errorf("Prefill() = %q, want empty", got)
	}
	c.SetPrefill("[bot] ")
	if got := c.Prefill(); got != "[bot] " {
		t.Errorf("Prefill() = %q, want '[bot] '", got)
	}
}

func TestClientThinkingTokensRoundTrip(t *testing.T) {
	c := NewClient("dummy-key")
	if got := c.ThinkingTokens(); got != 0 {
		t.Errorf("ThinkingTokens() = %d, want 0", got)
	}
	c.SetThinkingTokens(-1)
	if got := c.ThinkingTokens(); got != -1 {
		t.Errorf("ThinkingTokens() = %d, want -1", got)
	}
}

func TestClientMessagesIsCopy(t *testing.T) {
	c := NewClient("dummy-key")
	c.messages = []Message{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Errorf("Messages() = %d messages, want 2", len(msgs))
	}

	msgs[0].Content = "modified"
	if c.messages[0].Content == "modified" {
		t.Error("Messages() should return a copy, not the original")
	}
}

func TestClientAddSystemMessage(t *testing.T) {
	c := NewClient("dummy-key")
	c.AddSystemMessage("Context info here")

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Messages() = %d messages, want 1", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Errorf("Message role = %q, want 'system'", msgs[0].Role)
	}
	if msgs[0].Content != "Context info here" {
		t.Errorf("Message content = %q, want 'Context info here'", msgs[0].Content)
	}
}

func TestClientModel(t *testing.T) {
	c := NewClient("dummy-key")
	if got := c.Model(); got != "claude-sonnet-4-20250514" {
		t.Errorf("Model() = %q, want 'claude-sonnet-4-20250514'", got)
	}
	c.SetModel("claude-3-haiku-20240307")
	if got := c.Model(); got != "claude-3-haiku-20240307" {
		t.Errorf("Model() = %q, want 'claude-3-haiku-20240307'", got)
	}
}

func TestClientMessagesJSON(t *testing.T) {
	c := NewClient("dummy-key")
	c.messages = []Message{{Role: "user", Content: "hello"}}

	data, err := c.MessagesJSON()
	if err != nil {
		t.Fatalf("MessagesJSON() error: %v", err)
	}
	js := string(data)
	if !containsSubstring(js, "hello") || !containsSubstring(js, "user") {
		t.Errorf("MessagesJSON() = %s, should contain 'hello' and 'user'", js)
	}
}

func TestClientIsStreamingInitiallyFalse(t *testing.T) {
	c := NewClient("dummy-key")
	if c.IsStreaming() {
		t.Error("IsStreaming() should be false initially")
	}
}

func TestContextJSONRoundTrip(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hi"},
	}
	doc, err := contextJSON(messages)
	if err != nil {
		t.Fatalf("contextJSON: %v", err)
	}
	if !containsSubstring(string(doc), "be terse") || !containsSubstring(string(doc), "hi") {
		t.Errorf("contextJSON = %s, missing expected content", doc)
	}
}

func TestContextWritePlainText(t *testing.T) {
	got := contextWrite([]byte("stay concise"))
	if got != "stay concise" {
		t.Errorf("contextWrite = %q, want %q", got, "stay concise")
	}
}

func TestContextWriteJSONSystemField(t *testing.T) {
	got := contextWrite([]byte(`{"system":"stay in character"}`))
	if got != "stay in character" {
		t.Errorf("contextWrite = %q, want %q", got, "stay in character")
	}
}

func TestContextWriteJSONWithoutSystemFieldFallsBack(t *testing.T) {
	raw := `{"note":"not a system directive"}`
	got := contextWrite([]byte(raw))
	if got != raw {
		t.Errorf("contextWrite = %q, want raw fallback %q", got, raw)
	}
}

func containsSubstring(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
