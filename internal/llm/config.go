package llm

import (
	"os"
	"strconv"
	"strings"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskGenerate   TaskType = "generate"
	TaskRefineDay  TaskType = "refine_day"
	TaskRefineSlot TaskType = "refine_slot"
	TaskInsertDay  TaskType = "insert_day"
)

// Provider selects the backend behind LLMClient.
type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

const DefaultOllamaEndpoint = "http://localhost:11434"

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Provider   Provider
	Endpoint   string
	Model      string
	WebModel   string // used instead of Model when a request asks for web context
	APIKey     string
	TimeoutMs  int
	MaxRetries int
	RPS        float64 // 0 disables the local limiter
	Burst      int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// LLM is disabled by default.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    false,
		LogCalls:   false,
		Provider:   ProviderOllama,
		Endpoint:   DefaultOllamaEndpoint,
		Model:      defaultModel(ProviderOllama),
		TimeoutMs:  60000,
		MaxRetries: 1,
		Burst:      1,
		Tasks: map[TaskType]TaskConfig{
			TaskGenerate:   {Temperature: 0.7, MaxTokens: 8192, TimeoutMs: 120000},
			TaskRefineDay:  {Temperature: 0.7, MaxTokens: 2048, TimeoutMs: 60000},
			TaskRefineSlot: {Temperature: 0.6, MaxTokens: 512, TimeoutMs: 30000},
			TaskInsertDay:  {Temperature: 0.7, MaxTokens: 2048, TimeoutMs: 60000},
		},
	}
}

func defaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "llama3.2"
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() LLMConfig {
	cfg := DefaultConfig()

	if v := os.Getenv("ITINERA_LLM_ENABLED"); v != "" {
		cfg.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("ITINERA_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("ITINERA_LLM_PROVIDER"); v != "" {
		cfg.Provider = Provider(strings.ToLower(strings.TrimSpace(v)))
		cfg.Model = defaultModel(cfg.Provider)
		if cfg.Provider != ProviderOllama {
			cfg.Endpoint = ""
		}
	}
	if v := os.Getenv("ITINERA_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("ITINERA_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("ITINERA_LLM_WEB_MODEL"); v != "" {
		cfg.WebModel = v
	}
	if v := os.Getenv("ITINERA_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("ITINERA_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("ITINERA_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("ITINERA_LLM_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.RPS = f
		}
	}
	if v := os.Getenv("ITINERA_LLM_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Burst = n
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskGenerate, "ITINERA_LLM_GENERATE_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskRefineDay, "ITINERA_LLM_REFINE_DAY_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskRefineSlot, "ITINERA_LLM_REFINE_SLOT_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskInsertDay, "ITINERA_LLM_INSERT_DAY_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// ModelFor picks the model name for a request.
func (c LLMConfig) ModelFor(req GenerateRequest) string {
	if req.UseWebContext && c.WebModel != "" {
		return c.WebModel
	}
	return c.Model
}

// params resolves temperature and token limits, letting the request override
// the task defaults.
func (c LLMConfig) params(req GenerateRequest) (float64, int) {
	tc := c.Tasks[req.Task]
	temp, maxTok := tc.Temperature, tc.MaxTokens
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}
	return temp, maxTok
}

func applyTaskTimeoutEnv(cfg *LLMConfig, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
