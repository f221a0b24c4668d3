package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolah/apimodel/internal/codegen"
	"github.com/kolah/apimodel/internal/config"
	"github.com/kolah/apimodel/internal/diag"
	"github.com/kolah/apimodel/internal/emit"
)

func GenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [spec...]",
		Short: "Generate code models from OpenAPI documents",
		Example: "  apimodel generate api.yaml -o generated\n" +
			"  apimodel generate api.yaml --grouping ByPath --dry-run\n" +
			"  apimodel generate api.yaml --plugin csharp -o src/Api",
		RunE: runGenerate,
	}

	config.BindFlags(cmd)

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd, args)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cmd.ErrOrStderr())
	gen := codegen.New(cfg.Generator, codegen.WithLogger(logger))
	emitter := emit.New(cfg.Output, cmd.OutOrStdout())
	if p, ok := emitter.(*emit.Plugin); ok {
		p.Stderr = cmd.ErrOrStderr()
	}

	ctx := cmd.Context()
	results := gen.GenerateAll(ctx, cfg.Specs, cfg.Workers)

	var all []diag.Diagnostic
	failed := 0
	for _, res := range results {
		all = append(all, res.Diagnostics...)
		if res.HasErrors() {
			failed++
			continue
		}
		if res.Model == nil {
			continue
		}

		if err := emitter.Emit(ctx, res.Model); err != nil {
			return fmt.Errorf("emitting %s: %w", res.Document, err)
		}
		if w, ok := emitter.(*emit.Writer); ok {
			logger.Info("model written", "document", res.Document, "path", w.Path(res.Model))
		}
	}

	logger.Info("generation finished",
		"documents", len(results),
		"errors", diag.Count(all, diag.Error),
		"warnings", diag.Count(all, diag.Warning))

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}
