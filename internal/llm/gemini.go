package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiClient implements LLMClient on the Gemini API. UseWebContext turns on
// Google Search grounding for the request.
type geminiClient struct {
	cfg      LLMConfig
	cli      *genai.Client
	observer Observer
}

// NewGeminiClient creates an LLMClient backed by the Gemini API. An empty
// cfg.APIKey lets the SDK read GOOGLE_API_KEY / GEMINI_API_KEY.
func NewGeminiClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, error) {
	if observer == nil {
		observer = NoopObserver{}
	}
	cc := &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	if cfg.Endpoint != "" {
		cc.HTTPOptions.BaseURL = strings.TrimRight(cfg.Endpoint, "/") + "/"
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &geminiClient{cfg: cfg, cli: cli, observer: observer}, nil
}

func (g *geminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	temp, maxTok := g.cfg.params(req)
	model := g.cfg.ModelFor(req)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.TaskTimeout(req.Task))*time.Millisecond)
	defer cancel()

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temp)),
	}
	if maxTok > 0 {
		gc.MaxOutputTokens = int32(maxTok)
	}
	if req.SystemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.UseWebContext {
		gc.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	var (
		text    string
		lastErr error
	)
	for i := 0; i < 1+g.cfg.MaxRetries; i++ {
		resp, err := g.cli.Models.GenerateContent(ctx, model, genai.Text(req.UserPrompt), gc)
		if err == nil {
			text = resp.Text()
			if strings.TrimSpace(text) != "" {
				lastErr = nil
				break
			}
			err = fmt.Errorf("%w: empty candidates", ErrInvalidOutput)
		}
		lastErr = geminiError(err)
		if ctx.Err() != nil || errors.Is(lastErr, ErrRateLimited) {
			break
		}
	}

	if lastErr != nil {
		err := classify(ctx, lastErr)
		g.observer.OnCallComplete(LLMCallEvent{
			Task:      req.Task,
			Provider:  ProviderGemini,
			Web:       req.UseWebContext,
			Model:     model,
			LatencyMs: time.Since(start).Milliseconds(),
			Success:   false,
			ErrorCode: errorCode(err),
		})
		return nil, err
	}

	latency := time.Since(start).Milliseconds()
	g.observer.OnCallComplete(LLMCallEvent{Task: req.Task, Provider: ProviderGemini, Web: req.UseWebContext, Model: model, LatencyMs: latency, Success: true})
	return &GenerateResponse{Text: text, Model: model, LatencyMs: latency}, nil
}

func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return err
}

func (g *geminiClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := g.cli.Models.Get(ctx, g.cfg.Model, nil)
	return err == nil
}
