package ai

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-insight/internal/normalize"
	"github.com/spigell/resume-insight/internal/utils"
)

const rateLimitWindow = time.Minute

// Overridable in tests.
var (
	timeNow = time.Now
	wait    = utils.WaitFor
)

// Config carries every orchestration policy knob explicitly; there is no
// process-wide state, so independent instances can run with mocked adapters.
type Config struct {
	// Name identifies the owning agent in logs and fallback messages.
	Name string
	// ReturnMode selects the shaping policy. Defaults to aggregate.
	ReturnMode ReturnMode
	// PromptTemplate is rendered with the {{INPUT}} placeholder replaced
	// by the input text. When empty the input text is sent as-is.
	PromptTemplate string
	// DisableFallback makes Process return the raw failed collection
	// instead of a fallback result when no provider succeeds.
	DisableFallback bool
	// RateLimitPerMinute caps requests over a sliding 60-second window.
	// Zero disables rate limiting.
	RateLimitPerMinute int
	// CacheEnabled keeps computed results keyed by input fingerprint for
	// the orchestrator's lifetime. No eviction.
	CacheEnabled bool
	// PostprocessHook, when set, is applied to the shaped result exactly
	// once, after shaping and before caching. It is invoked without a
	// guard: a panicking hook propagates to the caller.
	PostprocessHook func(*Result) *Result
}

// Orchestrator invokes providers sequentially in priority order and shapes
// their responses. Safe for concurrent use: the rate-limit window and the
// cache share one mutex.
type Orchestrator struct {
	cfg       Config
	providers []Provider
	logger    *zap.Logger

	mu     sync.Mutex
	stamps []time.Time
	cache  map[string]*Result
}

// NewOrchestrator creates an orchestrator over the given providers. The
// slice order is the priority order and is authoritative for primary
// provider selection.
func NewOrchestrator(cfg Config, providers []Provider, logger *zap.Logger) *Orchestrator {
	if cfg.ReturnMode == "" {
		cfg.ReturnMode = ModeAggregate
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		cfg:       cfg,
		providers: providers,
		logger:    logger,
	}
	if cfg.CacheEnabled {
		o.cache = make(map[string]*Result)
	}

	return o
}

// Process obtains a best-effort result for the input. Adapter failures never
// propagate as errors; the only failure a caller observes is a fallback
// result with Success=false.
func (o *Orchestrator) Process(ctx context.Context, input normalize.Value) *Result {
	var fingerprint string
	if o.cfg.CacheEnabled {
		fingerprint = Fingerprint(input)

		o.mu.Lock()
		cached, ok := o.cache[fingerprint]
		o.mu.Unlock()
		if ok {
			o.logger.Debug("returning cached result", zap.String("fingerprint", fingerprint))
			return cached
		}
	}

	if o.cfg.RateLimitPerMinute > 0 {
		o.enforceRateLimit(ctx)
	}

	prompt := o.renderPrompt(input)
	o.logger.Debug("rendered prompt",
		zap.String("agent", o.cfg.Name),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, 120)),
	)

	responses := make(map[string]ProviderResponse, len(o.providers))
	order := make([]string, 0, len(o.providers))
	for _, provider := range o.providers {
		if provider == nil {
			continue
		}
		name := provider.Name()
		o.logger.Debug("invoking provider", zap.String("provider", name))

		resp := provider.Invoke(ctx, prompt)
		responses[name] = resp
		order = append(order, name)

		if !resp.Success {
			o.logger.Warn("provider call failed",
				zap.String("provider", name),
				zap.String("error", resp.Error),
			)
		}
	}

	result := o.shape(input, responses, order)

	if o.cfg.PostprocessHook != nil {
		result = o.cfg.PostprocessHook(result)
	}

	if o.cfg.CacheEnabled {
		o.mu.Lock()
		o.cache[fingerprint] = result
		o.mu.Unlock()
	}

	return result
}

// shape partitions responses into successes and failures and applies the
// configured return mode.
func (o *Orchestrator) shape(input normalize.Value, responses map[string]ProviderResponse, order []string) *Result {
	successes := make(map[string]ProviderResponse, len(responses))
	successOrder := make([]string, 0, len(responses))
	for _, name := range order {
		if resp := responses[name]; resp.Success {
			successes[name] = resp
			successOrder = append(successOrder, name)
		}
	}

	if len(successes) == 0 {
		if o.cfg.DisableFallback {
			return &Result{Responses: responses}
		}
		errMsg := "All providers failed"
		if len(responses) == 0 {
			errMsg = "No providers available"
		}
		return o.fallbackResult(input, errMsg)
	}

	switch o.cfg.ReturnMode {
	case ModeAggregate:
		primary := successes[successOrder[0]]
		return &Result{
			Success:         true,
			Response:        primary.Text,
			ProvidersUsed:   successOrder,
			PrimaryProvider: primary.Provider,
			Aggregated:      true,
		}
	case ModeCompare:
		return &Result{
			Success:        true,
			Responses:      successes,
			ComparisonMode: true,
			ProvidersCount: len(successes),
		}
	default:
		return &Result{Success: true, Responses: successes}
	}
}

func (o *Orchestrator) fallbackResult(input normalize.Value, errMsg string) *Result {
	o.logger.Info("no provider produced a usable result",
		zap.String("agent", o.cfg.Name),
		zap.String("reason", errMsg),
	)

	return &Result{
		Success:       false,
		Fallback:      true,
		Error:         errMsg,
		Message:       fmt.Sprintf("AI providers not available for %s", o.cfg.Name),
		InputReceived: inputReceived(input),
		Recommendations: []string{
			"Check API keys configuration",
			"Verify internet connection",
			"Check provider status pages",
		},
	}
}

func (o *Orchestrator) renderPrompt(input normalize.Value) string {
	text := input.PromptText()
	if o.cfg.PromptTemplate == "" {
		return text
	}
	return strings.ReplaceAll(o.cfg.PromptTemplate, "{{INPUT}}", text)
}

// enforceRateLimit blocks until the sliding window has room, then records
// the new timestamp. Prune and append happen under the shared mutex so
// concurrent callers serialize.
func (o *Orchestrator) enforceRateLimit(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := timeNow()
	o.stamps = pruneStamps(o.stamps, now)

	if len(o.stamps) >= o.cfg.RateLimitPerMinute {
		if d := rateLimitWindow - now.Sub(o.stamps[0]); d > 0 {
			o.logger.Debug("rate limit reached, holding request", zap.Duration("wait", d))
			_ = wait(ctx, d)
		}
		o.stamps = pruneStamps(o.stamps, timeNow())
	}

	o.stamps = append(o.stamps, timeNow())
}

func pruneStamps(stamps []time.Time, now time.Time) []time.Time {
	kept := stamps[:0]
	for _, t := range stamps {
		if now.Sub(t) < rateLimitWindow {
			kept = append(kept, t)
		}
	}
	return kept
}

// Fingerprint derives the deterministic cache key from the canonical form of
// the input.
func Fingerprint(input normalize.Value) string {
	sum := sha256.Sum256([]byte(input.Canonical()))
	return fmt.Sprintf("%x", sum[:])
}

func inputReceived(input normalize.Value) bool {
	switch input.Kind {
	case normalize.KindStructured:
		return len(input.Map) > 0
	case normalize.KindList:
		return len(input.List) > 0
	case normalize.KindText:
		return strings.TrimSpace(input.Text) != ""
	default:
		return input.Scalar != nil
	}
}
