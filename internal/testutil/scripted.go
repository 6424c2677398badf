package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/alexanderramin/itinera/internal/llm"
)

// ScriptedClient is an llm.LLMClient that replays canned responses in order.
// Once the script runs out the last entry repeats. Requests are recorded.
type ScriptedClient struct {
	mu       sync.Mutex
	steps    []ScriptStep
	requests []llm.GenerateRequest
	// Block, when set, makes Generate wait until it is closed or ctx ends.
	Block chan struct{}
}

// ScriptStep is one canned reply.
type ScriptStep struct {
	Text string
	Err  error
}

// NewScriptedClient replies with texts in order.
func NewScriptedClient(texts ...string) *ScriptedClient {
	c := &ScriptedClient{}
	for _, t := range texts {
		c.steps = append(c.steps, ScriptStep{Text: t})
	}
	return c
}

// NewFailingClient always fails with err.
func NewFailingClient(err error) *ScriptedClient {
	return &ScriptedClient{steps: []ScriptStep{{Err: err}}}
}

func (c *ScriptedClient) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if c.Block != nil {
		select {
		case <-c.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if len(c.steps) == 0 {
		return nil, errors.New("scripted client has no responses")
	}
	step := c.steps[0]
	if len(c.steps) > 1 {
		c.steps = c.steps[1:]
	}
	if step.Err != nil {
		return nil, step.Err
	}
	return &llm.GenerateResponse{Text: step.Text, Model: "scripted"}, nil
}

func (c *ScriptedClient) Available(context.Context) bool { return true }

// Requests returns the requests received so far.
func (c *ScriptedClient) Requests() []llm.GenerateRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.GenerateRequest(nil), c.requests...)
}

// LastPrompt returns the user prompt of the most recent request.
func (c *ScriptedClient) LastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return ""
	}
	return c.requests[len(c.requests)-1].UserPrompt
}
