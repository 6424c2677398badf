package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIWebModel = "gpt-4o-mini-search-preview"

// openAIClient implements LLMClient on the chat completions API. Requests
// with UseWebContext go to a search-capable model with web search enabled.
type openAIClient struct {
	cfg      LLMConfig
	client   openai.Client
	observer Observer
}

// NewOpenAIClient creates an LLMClient backed by the OpenAI API. An empty
// cfg.APIKey leaves the SDK to read OPENAI_API_KEY.
func NewOpenAIClient(cfg LLMConfig, observer Observer) LLMClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	if cfg.WebModel == "" {
		cfg.WebModel = defaultOpenAIWebModel
	}
	opts := []option.RequestOption{option.WithMaxRetries(cfg.MaxRetries)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	return &openAIClient{
		cfg:      cfg,
		client:   openai.NewClient(opts...),
		observer: observer,
	}
}

func (c *openAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	temp, maxTok := c.cfg.params(req)
	model := c.cfg.ModelFor(req)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TaskTimeout(req.Task))*time.Millisecond)
	defer cancel()

	var msgs []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	msgs = append(msgs, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: msgs,
	}
	if maxTok > 0 {
		params.MaxCompletionTokens = openai.Int(int64(maxTok))
	}
	if req.UseWebContext {
		// Search models reject sampling parameters.
		params.WebSearchOptions = openai.ChatCompletionNewParamsWebSearchOptions{
			SearchContextSize: "medium",
		}
	} else {
		params.Temperature = openai.Float(temp)
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err == nil && (len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "") {
		err = fmt.Errorf("%w: empty completion", ErrInvalidOutput)
	}
	if err != nil {
		err = classify(ctx, openAIError(err))
		c.observer.OnCallComplete(LLMCallEvent{
			Task:      req.Task,
			Provider:  ProviderOpenAI,
			Web:       req.UseWebContext,
			Model:     model,
			LatencyMs: time.Since(start).Milliseconds(),
			Success:   false,
			ErrorCode: errorCode(err),
		})
		return nil, err
	}

	latency := time.Since(start).Milliseconds()
	c.observer.OnCallComplete(LLMCallEvent{Task: req.Task, Provider: ProviderOpenAI, Web: req.UseWebContext, Model: model, LatencyMs: latency, Success: true})
	return &GenerateResponse{
		Text:      completion.Choices[0].Message.Content,
		Model:     completion.Model,
		LatencyMs: latency,
	}, nil
}

// openAIError tags provider throttling so callers see ErrRateLimited.
func openAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return err
}

func (c *openAIClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := c.client.Models.Get(ctx, c.cfg.Model)
	return err == nil
}
