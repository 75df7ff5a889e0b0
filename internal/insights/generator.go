package insights

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/JoseAndresM/LKND/internal/model"
)

// Generator produces market commentary over a set of jobs. Commentary is
// an enrichment, never a gate: every failure is logged and swallowed so
// a report still goes out without it.
type Generator struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGenerator wraps provider. A nil provider disables generation; every
// call then returns the empty string.
func NewGenerator(provider Provider, timeout time.Duration, logger *slog.Logger) *Generator {
	return &Generator{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// Generate returns model commentary for the jobs, or "" when generation
// is disabled, the set is empty, or the provider fails.
func (g *Generator) Generate(ctx context.Context, jobs []model.Job) string {
	if g.provider == nil || len(jobs) == 0 {
		return ""
	}

	prompt, err := BuildPrompt(jobs)
	if err != nil {
		g.logger.Warn("insights prompt failed", "error", err)
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("insights generation failed", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}
