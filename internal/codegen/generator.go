package codegen

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kolah/apimodel/internal/builder"
	"github.com/kolah/apimodel/internal/config"
	"github.com/kolah/apimodel/internal/definition"
	"github.com/kolah/apimodel/internal/diag"
	"github.com/kolah/apimodel/internal/loader"
	"github.com/kolah/apimodel/internal/model"
)

// Source loads one document. Warnings are reported as info diagnostics.
type Source func(ctx context.Context, path string) (spec *model.Spec, warnings []string, err error)

// LoaderSource reads documents from disk.
func LoaderSource(_ context.Context, path string) (*model.Spec, []string, error) {
	return loader.Open(path)
}

type Generator struct {
	config  config.Generator
	builder *builder.Builder
	source  Source
	logger  *slog.Logger
}

type Option func(*Generator)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithSource(source Source) Option {
	return func(g *Generator) {
		if source != nil {
			g.source = source
		}
	}
}

func New(cfg config.Generator, opts ...Option) *Generator {
	g := &Generator{
		config:  cfg,
		builder: builder.New(cfg),
		source:  LoaderSource,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result is the outcome for one document. Model is nil whenever a
// document-level failure was reported.
type Result struct {
	Document    string
	Model       *definition.Model
	Diagnostics []diag.Diagnostic
}

func (r *Result) HasErrors() bool {
	return diag.HasErrors(r.Diagnostics)
}

func (r *Result) report(severity diag.Severity, code diag.Code, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, diag.Diagnostic{
		Document: r.Document,
		Severity: severity,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Generate builds the model for one document. It never fails: every problem
// is reported as a diagnostic on the result.
func (g *Generator) Generate(ctx context.Context, path string) *Result {
	res := &Result{Document: path}
	g.logger.Debug("generating model", "document", path)

	g.run(ctx, res)

	for _, d := range res.Diagnostics {
		g.logger.Log(ctx, d.Severity.Level(), d.Message,
			"document", d.Document, "code", string(d.Code), "severity", d.Severity.String())
	}
	if res.Model != nil {
		g.logger.Info("model generated", "document", path,
			"contracts", len(res.Model.Contracts), "controllers", len(res.Model.Controllers))
	}
	return res
}

func (g *Generator) run(ctx context.Context, res *Result) {
	defer func() {
		if r := recover(); r != nil {
			res.Model = nil
			res.report(diag.Error, diag.CodeGenerationError, "generation failed: %v", r)
		}
	}()

	if g.config.NothingToGenerate() {
		res.report(diag.Warning, diag.CodeConfiguration,
			"generate-contracts and generate-controllers are both disabled; nothing to generate")
		return
	}

	if err := ctx.Err(); err != nil {
		res.report(diag.Error, diag.CodeGenerationError, "generation cancelled: %v", err)
		return
	}

	// Loader notes are only reported for documents that produce a model;
	// a failed or empty document gets exactly one diagnostic.
	spec, warnings, err := g.source(ctx, res.Document)
	if err != nil {
		res.report(diag.Error, diag.CodeInvalidDocument, "%v", err)
		return
	}
	if spec == nil || !g.hasWork(spec) {
		res.report(diag.Warning, diag.CodeEmptyDocument, "document has no %s", g.missingWhat())
		return
	}
	for _, w := range warnings {
		res.report(diag.Info, diag.CodeLoader, "%s", w)
	}

	res.Model = g.builder.Build(res.Document, spec)
}

func (g *Generator) hasWork(spec *model.Spec) bool {
	return (g.config.GenerateContracts && len(spec.Schemas) > 0) ||
		(g.config.GenerateControllers && len(spec.Operations) > 0)
}

func (g *Generator) missingWhat() string {
	switch {
	case g.config.GenerateContracts && g.config.GenerateControllers:
		return "schemas or operations"
	case g.config.GenerateContracts:
		return "schemas"
	}
	return "operations"
}

// GenerateAll processes paths with at most workers documents in flight
// (runtime.NumCPU when workers <= 0). Results keep the order of paths.
// Once ctx is done, documents not yet started are reported as cancelled.
func (g *Generator) GenerateAll(ctx context.Context, paths []string, workers int) []*Result {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*Result, len(paths))

	var eg errgroup.Group
	eg.SetLimit(workers)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			res := &Result{Document: path}
			res.report(diag.Error, diag.CodeGenerationError, "generation cancelled: %v", err)
			results[i] = res
			continue
		}

		eg.Go(func() error {
			results[i] = g.Generate(ctx, path)
			return nil
		})
	}

	_ = eg.Wait()
	return results
}
