package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/sink"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var (
		levelFlag     string
		filenameFlag  string
		formatterFlag string
	)

	cmd := &cobra.Command{
		Use:   "validate <identifier>...",
		Short: "Check documents and overrides against the sink rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ov := conf.Overrides{
				Level:     levelFlag,
				Filename:  filenameFlag,
				Formatter: formatterFlag,
			}
			docs, err := ctx.loadDocuments(args, ov)
			if err != nil {
				return err
			}

			eff, realSinks := conf.Merge(docs)
			formatters, err := sink.CompileFormatters(eff.Formatters)
			if err != nil {
				return err
			}
			for _, spec := range realSinks {
				if err := sink.Validate(spec, formatters); err != nil {
					return fmt.Errorf("sink %s (from %s): %w", spec.Name, spec.Origin, err)
				}
			}

			out := cmd.OutOrStdout()
			for _, doc := range docs {
				fmt.Fprintf(out, "Document %s: %d formatters, %d handlers, %d loggers\n",
					doc.Identity, len(doc.Formatters), len(doc.Handlers), len(doc.Loggers))
			}
			fmt.Fprintf(out, "Merged: %d sinks behind relay %q, %d loggers\n",
				len(realSinks), eff.Relay.Name, len(eff.Loggers))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}

	cmd.Flags().StringVar(&levelFlag, "level", "", "Override every handler level")
	cmd.Flags().StringVar(&filenameFlag, "filename", "", "Override the target of file-backed handlers")
	cmd.Flags().StringVar(&formatterFlag, "formatter", "", "Override every handler formatter reference")
	return cmd
}
