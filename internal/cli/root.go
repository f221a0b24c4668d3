package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "apimodel",
		Short: "Build language-agnostic code models from OpenAPI documents",
		Long: "apimodel reads OpenAPI 3.x and Swagger 2.0 documents and turns them into contract\n" +
			"and controller definitions for code generators.",
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	bindRootFlags(root.PersistentFlags())
	root.AddCommand(GenerateCommand())

	return root
}

func bindRootFlags(flags *pflag.FlagSet) {
	flags.BoolP("verbose", "v", false, "Log debug output")
}

// newLogger writes text logs to w, at debug level when --verbose is set.
func newLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
