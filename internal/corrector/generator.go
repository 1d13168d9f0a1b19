// Package corrector generates pedagogical corrections for LaTeX exercises
// with a chat model, validating and caching the results.
package corrector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"latex-corrector/internal/config"
	"latex-corrector/internal/logger"
	"latex-corrector/internal/types"
	"latex-corrector/internal/validator"
)

const (
	// DefaultTimeout bounds a single model call
	DefaultTimeout = 30 * time.Second
	// DefaultMaxAttempts is the number of generations tried before keeping an invalid answer
	DefaultMaxAttempts = 3
	// DefaultTemperature keeps mathematical answers consistent
	DefaultTemperature float32 = 0.3
	// DefaultMaxTokens bounds the length of a correction
	DefaultMaxTokens = 2000
)

// ChatModel is the part of an eino chat model the generator needs.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Recorder receives correction metrics.
type Recorder interface {
	ObserveCorrection(elapsed time.Duration, fromCache bool)
	ObserveCorrectionFailure(code string)
}

// Options configures a Generator. Zero values fall back to defaults.
type Options struct {
	Timeout     time.Duration
	MaxAttempts int
	RateLimit   int
	RateWindow  time.Duration
	EnableCache bool
	CacheSize   int
	CacheTTL    time.Duration
	Temperature float32
	MaxTokens   int
}

// OptionsFromConfig maps the configuration onto generator options.
func OptionsFromConfig(cm *config.ConfigManager) Options {
	c := cm.GetConfig()
	limit, window := cm.GetRateLimit()
	return Options{
		Timeout:     cm.GetAITimeout(),
		MaxAttempts: c.MaxRegenerationAttempts,
		RateLimit:   limit,
		RateWindow:  window,
		EnableCache: c.EnableCorrectionCache,
		CacheSize:   c.CorrectionCacheSize,
		CacheTTL:    cm.GetCorrectionCacheTTL(),
	}
}

// Generator produces correction bodies for exercises.
// It is safe for concurrent use.
type Generator struct {
	model    ChatModel
	opts     Options
	limiter  *rate.Limiter
	cache    *CorrectionCache
	recorder Recorder
}

// NewGenerator creates a Generator around a chat model.
func NewGenerator(m ChatModel, opts Options) *Generator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = config.DefaultRateLimitMaxRequests
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = config.DefaultRateLimitWindowSeconds * time.Second
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}

	g := &Generator{
		model:   m,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Every(opts.RateWindow/time.Duration(opts.RateLimit)), opts.RateLimit),
	}
	if opts.EnableCache {
		g.cache = NewCorrectionCache(opts.CacheSize, opts.CacheTTL)
	}
	return g
}

// SetRecorder installs a metrics recorder. Passing nil disables recording.
func (g *Generator) SetRecorder(r Recorder) {
	g.recorder = r
}

// Generate returns a correction body for the exercise content, without
// correction tags. The document numbering is passed to the model when given.
func (g *Generator) Generate(ctx context.Context, exerciseContent string, ds *types.DocumentStructure) (string, error) {
	return g.generate(ctx, exerciseContent, ds, true)
}

// Regenerate is Generate without reading the cache. The new answer replaces
// the cached one.
func (g *Generator) Regenerate(ctx context.Context, exerciseContent string, ds *types.DocumentStructure) (string, error) {
	return g.generate(ctx, exerciseContent, ds, false)
}

// ClearCache drops every cached correction.
func (g *Generator) ClearCache() {
	if g.cache != nil {
		g.cache.Clear()
		logger.Info("correction cache cleared")
	}
}

func (g *Generator) generate(ctx context.Context, exerciseContent string, ds *types.DocumentStructure, useCache bool) (string, error) {
	correction, err := g.doGenerate(ctx, exerciseContent, ds, useCache)
	if err != nil && g.recorder != nil {
		g.recorder.ObserveCorrectionFailure(string(types.CodeOf(err)))
	}
	return correction, err
}

func (g *Generator) doGenerate(ctx context.Context, exerciseContent string, ds *types.DocumentStructure, useCache bool) (string, error) {
	if strings.TrimSpace(exerciseContent) == "" {
		return "", types.NewAppError(types.ErrInvalidInput, "exercise content is empty", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", contextError(err)
	}

	if useCache && g.cache != nil {
		if cached, ok := g.cache.Get(exerciseContent); ok {
			logger.Info("correction served from cache")
			if g.recorder != nil {
				g.recorder.ObserveCorrection(0, true)
			}
			return cached, nil
		}
	}

	if err := g.reserve(); err != nil {
		return "", err
	}

	start := time.Now()
	var correction, previous, issues string
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		logger.Debug("correction attempt", logger.Int("attempt", attempt))

		raw, err := g.callModel(ctx, buildMessages(exerciseContent, ds, previous, issues))
		if err != nil {
			return "", err
		}

		correction = validator.CleanCorrection(raw).Content
		if correction == "" {
			return "", types.NewAppError(types.ErrAPICall, "empty response from model", nil)
		}

		result := validator.ValidateCorrection(correction)
		if result.Valid {
			break
		}

		issues = validator.FormatIssues(result.Issues)
		logger.Warn("generated LaTeX has syntax errors",
			logger.Int("attempt", attempt),
			logger.Int("maxAttempts", g.opts.MaxAttempts),
			logger.String("issues", issues))
		if attempt == g.opts.MaxAttempts {
			logger.Warn("keeping last correction despite syntax errors")
			break
		}
		previous = correction
	}

	elapsed := time.Since(start)
	if g.cache != nil {
		g.cache.Put(exerciseContent, correction)
	}
	if g.recorder != nil {
		g.recorder.ObserveCorrection(elapsed, false)
	}
	logger.Info("correction generated", logger.Duration("elapsed", elapsed), logger.Int("length", len(correction)))
	return correction, nil
}

// reserve takes one request from the rate limiter without waiting.
func (g *Generator) reserve() error {
	r := g.limiter.Reserve()
	if !r.OK() {
		return types.NewAppError(types.ErrAPIRateLimit, "too many correction requests", nil)
	}
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		logger.Warn("correction rate limit reached", logger.Duration("retryAfter", delay))
		return types.NewAppErrorWithDetails(
			types.ErrAPIRateLimit,
			"too many correction requests",
			fmt.Sprintf("limit is %d per %s, retry in %s", g.opts.RateLimit, g.opts.RateWindow, delay.Round(time.Second)),
			nil,
		)
	}
	return nil
}

// callModel runs one model call under the per-call timeout.
func (g *Generator) callModel(ctx context.Context, messages []*schema.Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	msg, err := g.model.Generate(callCtx, messages,
		model.WithTemperature(g.opts.Temperature),
		model.WithMaxTokens(g.opts.MaxTokens),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", contextError(ctxErr)
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", types.NewAppErrorWithDetails(types.ErrTimeout, "model call timed out",
				fmt.Sprintf("no answer within %s", g.opts.Timeout), err)
		}
		logger.Error("model call failed", err)
		return "", classifyModelError(err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", types.NewAppError(types.ErrAPICall, "empty response from model", nil)
	}
	return msg.Content, nil
}

// contextError maps a done parent context to CANCELLED or TIMEOUT.
func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewAppError(types.ErrTimeout, "correction request timed out", err)
	}
	return types.NewAppError(types.ErrCancelled, "correction generation cancelled", err)
}

// classifyModelError maps provider errors onto application error codes.
func classifyModelError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient_quota"):
		return types.NewAppErrorWithDetails(types.ErrAPICall, "API quota exhausted", "check your subscription", err)
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return types.NewAppError(types.ErrAPIRateLimit, "API rate limit exceeded", err)
	case strings.Contains(msg, "invalid_api_key") || strings.Contains(msg, "401"):
		return types.NewAppErrorWithDetails(types.ErrAPICall, "API authentication failed", "invalid API key or unauthorized access", err)
	case strings.Contains(msg, "model_not_found"):
		return types.NewAppErrorWithDetails(types.ErrAPICall, "model not found", "check the configured model name", err)
	default:
		return types.NewAppError(types.ErrAPICall, "model call failed", err)
	}
}
