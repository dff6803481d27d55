// Package autoword is the library entry point: ProcessDocument wraps the
// five-stage pipeline (extract, plan, execute, validate, audit) behind a
// single call, building its internal collaborators from an Options value
// so callers never construct internal/* types directly.
package autoword

import (
	"context"
	"log/slog"

	"github.com/hazyhaar/autoword-vnext/internal/auditor"
	"github.com/hazyhaar/autoword-vnext/internal/config"
	"github.com/hazyhaar/autoword-vnext/internal/executor"
	"github.com/hazyhaar/autoword-vnext/internal/extractor"
	"github.com/hazyhaar/autoword-vnext/internal/idgen"
	"github.com/hazyhaar/autoword-vnext/internal/localization"
	"github.com/hazyhaar/autoword-vnext/internal/model"
	"github.com/hazyhaar/autoword-vnext/internal/orchestrator"
	"github.com/hazyhaar/autoword-vnext/internal/planner"
	"github.com/hazyhaar/autoword-vnext/internal/validator"
)

// Result is what ProcessDocument returns to its caller.
type Result = model.Result

// Options overrides the pipeline's default configuration for one run. Any
// zero-valued field falls back to config.Default().
type Options struct {
	ModelID                string
	Temperature            float64
	AuditDir               string
	ExecutionTimeLimitS    int
	MemoryWarningMB        int
	MemoryCriticalMB       int
	MonitoringLevel        config.MonitoringLevel
	RevisionStrategy       config.RevisionStrategy
	Localization           config.LocalizationConfig
	ValidationRules        *config.ValidationConfig
	CommentsEnabled        bool
	CommentsExecuteTagOnly bool
	CommentsLLMFallback    bool
}

func (o Options) apply(c *config.Config) {
	if o.ModelID != "" {
		c.LLM.ModelID = o.ModelID
	}
	if o.Temperature != 0 {
		c.LLM.Temperature = o.Temperature
	}
	if o.AuditDir != "" {
		c.Audit.BaseDir = o.AuditDir
	}
	if o.ExecutionTimeLimitS != 0 {
		c.Executor.TimeLimitSeconds = o.ExecutionTimeLimitS
	}
	if o.MemoryWarningMB != 0 {
		c.Executor.MemoryWarningMB = o.MemoryWarningMB
	}
	if o.MemoryCriticalMB != 0 {
		c.Executor.MemoryCriticalMB = o.MemoryCriticalMB
	}
	if o.MonitoringLevel != "" {
		c.MonitoringLevel = o.MonitoringLevel
	}
	if o.RevisionStrategy != "" {
		c.RevisionStrategy = o.RevisionStrategy
	}
	if len(o.Localization.StyleAliases) > 0 {
		c.Localization.StyleAliases = o.Localization.StyleAliases
	}
	if len(o.Localization.FontFallbacks) > 0 {
		c.Localization.FontFallbacks = o.Localization.FontFallbacks
	}
	if len(o.Localization.HostFonts) > 0 {
		c.Localization.HostFonts = o.Localization.HostFonts
	}
	if o.ValidationRules != nil {
		c.Validation = *o.ValidationRules
	}
	c.Comments = config.CommentsConfig{
		Enabled:        o.CommentsEnabled,
		ExecuteTagOnly: o.CommentsExecuteTagOnly,
		LLMFallback:    o.CommentsLLMFallback,
	}
}

// ProcessDocument runs one full pipeline cycle against docxPath, guided by
// userIntent, using client as the Planner's language-model collaborator.
// It never mutates docxPath until validation has passed.
func ProcessDocument(ctx context.Context, docxPath, userIntent string, client planner.LMClient, opts Options, log *slog.Logger) (Result, error) {
	if log == nil {
		log = slog.Default()
	}

	cfg := config.Default()
	opts.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	loc := localization.New(cfg.Localization.StyleAliases, cfg.Localization.FontFallbacks, cfg.Localization.HostFonts)

	pipeline := orchestrator.New(
		extractor.New(),
		planner.New(client, planner.WithMaxRetries(cfg.LLM.MaxRetries), planner.WithLogger(log)),
		executor.New(loc, log),
		validator.New(extractor.New(), log),
		auditor.New(cfg.Audit.BaseDir, idgen.RunID()),
		cfg,
		log,
	)

	return pipeline.Run(ctx, docxPath, userIntent)
}
