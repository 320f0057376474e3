package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sellerdesk/listing-pipeline/internal/core/ports"
)

// StepOptions bounds the AI attempt cycle shared by every AI-backed stage:
// a fixed ordered list of model identifiers is tried at most once each,
// with a fixed delay between attempts and a timeout per attempt.
type StepOptions struct {
	Models         []string
	AttemptTimeout time.Duration
	RetryDelay     time.Duration
}

func (o StepOptions) normalize() StepOptions {
	out := o
	if len(out.Models) == 0 {
		out.Models = []string{"gpt-4o-mini"}
	}
	if out.AttemptTimeout <= 0 {
		out.AttemptTimeout = 30 * time.Second
	}
	if out.RetryDelay < 0 {
		out.RetryDelay = 0
	}
	return out
}

// stepOutcome records how a stage's value was produced, for the result
// narrative and for fallback metrics.
type stepOutcome struct {
	UsedAI bool
	Model  string
	Reason string
}

// runAIStep is the attempt-parse-fallback combinator. It tries each model
// in order; a provider failure and a non-parseable success are handled
// identically, by moving to the next model. After the list is exhausted the
// deterministic fallback supplies the value, so the step always produces a
// usable result.
func runAIStep[T any](
	ctx context.Context,
	gen ports.TextGenerator,
	opts StepOptions,
	step, systemPrompt, userPrompt string,
	parse func(string) (T, error),
	fallback func() T,
) (T, stepOutcome) {
	if gen == nil {
		return fallback(), stepOutcome{Reason: "text generation disabled"}
	}
	opts = opts.normalize()

	var lastErr error
	for i, model := range opts.Models {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		if i > 0 && opts.RetryDelay > 0 {
			timer := time.NewTimer(opts.RetryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				lastErr = ctx.Err()
			case <-timer.C:
			}
			if lastErr != nil && ctx.Err() != nil {
				break
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, opts.AttemptTimeout)
		raw, err := gen.Generate(attemptCtx, ports.GenerationRequest{
			SystemPrompt: systemPrompt,
			UserPrompt:   userPrompt,
			Model:        model,
			JSONMode:     true,
		})
		cancel()
		if err != nil {
			lastErr = err
			slog.Warn("ai_step_attempt_failed", "step", step, "model", model, "error", err)
			continue
		}

		value, err := parse(stripCodeFence(raw))
		if err != nil {
			lastErr = err
			slog.Warn("ai_step_parse_failed", "step", step, "model", model, "error", err)
			continue
		}
		return value, stepOutcome{UsedAI: true, Model: model}
	}

	reason := "all model attempts exhausted"
	if lastErr != nil {
		reason = fmt.Sprintf("all model attempts exhausted, last error: %v", lastErr)
	}
	return fallback(), stepOutcome{Reason: reason}
}

// stripCodeFence removes a single leading/trailing fenced code block, the
// common wrapper providers put around requested JSON.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// Drop the language tag line ("json", "JSON", ...).
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
