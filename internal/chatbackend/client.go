// Package chatbackend exposes an Anthropic chat session as a 9P2000.L
// filesystem: a flat set of virtual files under one directory (plus a
// stream/ subdirectory) that a client manipulates with ordinary
// read/write instead of a bespoke wire protocol.
package chatbackend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Message is one turn of conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMBackend is the capability set a chat backend exposes to the
// virtual filesystem: every method any virtual file reads or writes
// through, declared on the one interface type they're all called
// against.
type LLMBackend interface {
	Model() string
	SetModel(model string)
	Temperature() float64
	SetTemperature(temp float64) error
	ThinkingTokens() int
	SetThinkingTokens(tokens int)
	Prefill() string
	SetPrefill(prefill string)
	LastTokens() int
	TotalTokens() int
	ContextLimit() int
	Messages() []Message
	MessagesJSON() ([]byte, error)
	AddSystemMessage(content string)
	Reset()
	Ask(ctx context.Context, prompt string) (string, error)
	Compact(ctx context.Context) error
	StartStream(ctx context.Context, prompt string) error
	ReadStreamChunk() (string, bool)
	IsStreaming() bool
	WaitStream()
}

// Client wraps the Anthropic API with conversation state: model,
// temperature, extended-thinking budget, a response prefill string,
// and message history.
type Client struct {
	client anthropic.Client

	mu             sync.RWMutex
	model          string
	temperature    float64
	systemPrompt   string
	prefill        string
	messages       []Message
	lastTokens     int
	totalTokens    int
	thinkingTokens int
	streaming      bool
	streamChan     chan string
	streamDone     chan struct{}
}

// NewClient creates a chat client backed by the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       "claude-sonnet-4-20250514",
		temperature: 0.7,
		messages:    make([]Message, 0),
	}
}

func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

func (c *Client) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

func (c *Client) Temperature() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.temperature
}

func (c *Client) SetTemperature(temp float64) error {
	if temp < 0.0 || temp > 2.0 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.temperature = temp
	return nil
}

// ThinkingTokens returns the current thinking budget. The API backend
// does not use extended thinking today; the setting is tracked so the
// thinking file round-trips and future models can pick it up.
func (c *Client) ThinkingTokens() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.thinkingTokens
}

func (c *Client) SetThinkingTokens(tokens int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thinkingTokens = tokens
}

// Prefill returns the string prepended to the next assistant turn.
func (c *Client) Prefill() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prefill
}

func (c *Client) SetPrefill(prefill string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefill = prefill
}

func (c *Client) SystemPrompt() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.systemPrompt
}

func (c *Client) SetSystemPrompt(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.systemPrompt = prompt
}

func (c *Client) LastTokens() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastTokens
}

func (c *Client) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Message, len(c.messages))
	copy(result, c.messages)
	return result
}

func (c *Client) MessagesJSON() ([]byte, error) {
	c.mu.RLock()
	messages := make([]Message, len(c.messages))
	copy(messages, c.messages)
	c.mu.RUnlock()
	return contextJSON(messages)
}

func (c *Client) AddSystemMessage(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append([]Message{{Role: "system", Content: content}}, c.messages...)
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = make([]Message, 0)
	c.lastTokens = 0
	c.totalTokens = 0
}

func (c *Client) TotalTokens() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalTokens
}

func (c *Client) ContextLimit() int {
	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()
	return contextLimitForModel(model)
}

func contextLimitForModel(model string) int {
	model = strings.ToLower(model)
	switch {
	case strings.Contains(model, "opus"), strings.Contains(model, "sonnet"), strings.Contains(model, "haiku"):
		return 200000
	default:
		return 200000
	}
}

func (c *Client) apiMessages() ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	apiMessages := make([]anthropic.MessageParam, 0, len(c.messages))
	var systemBlocks []anthropic.TextBlockParam
	if c.systemPrompt != "" {
		systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: c.systemPrompt})
	}
	for _, msg := range c.messages {
		switch msg.Role {
		case "system":
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Content})
		case "user":
			apiMessages = append(apiMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case "assistant":
			apiMessages = append(apiMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return apiMessages, systemBlocks
}

// Compact summarizes the conversation to reduce token usage.
func (c *Client) Compact(ctx context.Context) error {
	c.mu.Lock()
	if len(c.messages) < 4 {
		c.mu.Unlock()
		return nil
	}
	var conversationText string
	for _, msg := range c.messages {
		if msg.Role == "system" {
			continue
		}
		conversationText += fmt.Sprintf("%s: %s\n\n", msg.Role, msg.Content)
	}
	model := c.model
	c.mu.Unlock()

	summaryPrompt := "Summarize this conversation concisely, preserving key facts, decisions, and context needed to continue:\n\n" + conversationText
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 2048,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(summaryPrompt))},
	}

	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return fmt.Errorf("compaction failed: %w", err)
	}

	var summary string
	for _, block := range response.Content {
		if block.Type == "text" {
			summary += block.Text
		}
	}

	c.mu.Lock()
	c.messages = []Message{{Role: "system", Content: "Previous conversation summary: " + summary}}
	c.totalTokens = int(response.Usage.InputTokens + response.Usage.OutputTokens)
	c.mu.Unlock()
	return nil
}

// Ask sends a prompt and returns the response, prefixed with the
// configured prefill string if one is set.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.messages = append(c.messages, Message{Role: "user", Content: prompt})
	apiMessages, systemBlocks := c.apiMessages()
	model := c.model
	temp := c.temperature
	prefill := c.prefill
	c.mu.Unlock()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   4096,
		Messages:    apiMessages,
		Temperature: anthropic.Float(temp),
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.mu.Lock()
		if len(c.messages) > 0 {
			c.messages = c.messages[:len(c.messages)-1]
		}
		c.mu.Unlock()
		return "", fmt.Errorf("API error: %w", err)
	}

	var responseText string
	for _, block := range response.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}
	if prefill != "" {
		responseText = prefill + responseText
	}

	c.mu.Lock()
	c.messages = append(c.messages, Message{Role: "assistant", Content: responseText})
	c.lastTokens = int(response.Usage.InputTokens + response.Usage.OutputTokens)
	c.totalTokens += c.lastTokens
	c.mu.Unlock()

	return responseText, nil
}

// StartStream begins streaming a response for the given prompt.
func (c *Client) StartStream(ctx context.Context, prompt string) error {
	c.mu.Lock()
	if c.streaming {
		c.mu.Unlock()
		return fmt.Errorf("stream already in progress")
	}
	c.messages = append(c.messages, Message{Role: "user", Content: prompt})
	apiMessages, systemBlocks := c.apiMessages()
	model := c.model
	temp := c.temperature
	prefill := c.prefill

	c.streaming = true
	c.streamChan = make(chan string, 100)
	c.streamDone = make(chan struct{})
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			c.streaming = false
			close(c.streamChan)
			close(c.streamDone)
			c.mu.Unlock()
		}()

		params := anthropic.MessageNewParams{
			Model:       anthropic.Model(model),
			MaxTokens:   4096,
			Messages:    apiMessages,
			Temperature: anthropic.Float(temp),
		}
		if len(systemBlocks) > 0 {
			params.System = systemBlocks
		}

		stream := c.client.Messages.NewStreaming(ctx, params)

		fullResponse := prefill
		if prefill != "" {
			select {
			case c.streamChan <- prefill:
			case <-ctx.Done():
				return
			}
		}
		var inputTokens, outputTokens int64

		for stream.Next() {
			event := stream.Current()
			switch event.Type {
			case "content_block_delta":
				if event.Delta.Type == "text_delta" {
					chunk := event.Delta.Text
					fullResponse += chunk
					select {
					case c.streamChan <- chunk:
					case <-ctx.Done():
						return
					}
				}
			case "message_delta":
				outputTokens = event.Usage.OutputTokens
			case "message_start":
				inputTokens = event.Message.Usage.InputTokens
			}
		}

		if err := stream.Err(); err != nil {
			select {
			case c.streamChan <- fmt.Sprintf("\n[Error: %v]", err):
			case <-ctx.Done():
			}
			c.mu.Lock()
			if len(c.messages) > 0 {
				c.messages = c.messages[:len(c.messages)-1]
			}
			c.mu.Unlock()
			return
		}

		c.mu.Lock()
		c.messages = append(c.messages, Message{Role: "assistant", Content: fullResponse})
		c.lastTokens = int(inputTokens + outputTokens)
		c.totalTokens += c.lastTokens
		c.mu.Unlock()
	}()

	return nil
}

func (c *Client) ReadStreamChunk() (string, bool) {
	c.mu.RLock()
	streamChan := c.streamChan
	c.mu.RUnlock()
	if streamChan == nil {
		return "", false
	}
	chunk, ok := <-streamChan
	return chunk, ok
}

func (c *Client) IsStreaming() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.streaming
}

func (c *Client) WaitStream() {
	c.mu.RLock()
	done := c.streamDone
	c.mu.RUnlock()
	if done != nil {
		<-done
	}
}

var _ LLMBackend = (*Client)(nil)
