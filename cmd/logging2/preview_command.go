package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zoorn/logging2/conf"
)

type previewFormatter struct {
	Name       string `json:"name"`
	Format     string `json:"format"`
	DateFormat string `json:"datefmt,omitempty"`
}

type previewSink struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Level     string `json:"level"`
	Formatter string `json:"formatter,omitempty"`
	Target    string `json:"target,omitempty"`
	Origin    string `json:"origin,omitempty"`
}

type previewLogger struct {
	Name      string `json:"name"`
	Level     string `json:"level"`
	Propagate bool   `json:"propagate"`
}

type previewReport struct {
	Formatters []previewFormatter `json:"formatters"`
	Relay      previewSink        `json:"relay"`
	Sinks      []previewSink      `json:"sinks"`
	Loggers    []previewLogger    `json:"loggers"`
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "preview <identifier>...",
		Short: "Render the effective configuration a merge would produce",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := ctx.loadDocuments(args, conf.Overrides{})
			if err != nil {
				return err
			}
			report := buildPreview(conf.Merge(docs))
			if asJSON {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Relay: %s (level %s)\n", report.Relay.Name, report.Relay.Level)

			if len(report.Formatters) > 0 {
				rows := make([][]string, 0, len(report.Formatters))
				for _, f := range report.Formatters {
					rows = append(rows, []string{f.Name, f.Format, f.DateFormat})
				}
				fmt.Fprintln(out, renderTable([]string{"Formatter", "Template", "Datefmt"}, rows))
			}

			if len(report.Sinks) == 0 {
				fmt.Fprintln(out, "No sinks configured; records will be discarded")
			} else {
				rows := make([][]string, 0, len(report.Sinks))
				for _, s := range report.Sinks {
					rows = append(rows, []string{s.Name, s.Kind, s.Level, s.Formatter, s.Target, s.Origin})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Sink", "Kind", "Level", "Formatter", "Target", "Origin"}, rows))
			}

			rows := make([][]string, 0, len(report.Loggers))
			for _, l := range report.Loggers {
				name := l.Name
				if name == "" {
					name = "(root)"
				}
				rows = append(rows, []string{name, l.Level, yesNo(l.Propagate)})
			}
			fmt.Fprintln(out, renderTable([]string{"Logger", "Level", "Propagate"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of tables")
	return cmd
}

func buildPreview(eff *conf.Effective, realSinks []conf.SinkSpec) previewReport {
	report := previewReport{Relay: previewSinkOf(eff.Relay)}
	for _, f := range eff.Formatters {
		report.Formatters = append(report.Formatters, previewFormatter{
			Name:       f.Name,
			Format:     f.Format(),
			DateFormat: f.DateFormat(),
		})
	}
	for _, s := range realSinks {
		report.Sinks = append(report.Sinks, previewSinkOf(s))
	}
	for _, l := range eff.Loggers {
		report.Loggers = append(report.Loggers, previewLogger{
			Name:      l.Name,
			Level:     l.Level.String(),
			Propagate: l.Propagate,
		})
	}
	return report
}

func previewSinkOf(spec conf.SinkSpec) previewSink {
	return previewSink{
		Name:      spec.Name,
		Kind:      spec.Kind.String(),
		Level:     spec.Level.String(),
		Formatter: spec.Formatter,
		Target:    sinkTarget(spec),
		Origin:    spec.Origin,
	}
}

func sinkTarget(spec conf.SinkSpec) string {
	switch spec.Kind {
	case conf.KindStream:
		if spec.Target == "" {
			return "stderr"
		}
		return spec.Target
	case conf.KindSQLite:
		if spec.Table != "" {
			return spec.Filename + "#" + spec.Table
		}
		return spec.Filename
	case conf.KindRelay:
		return ""
	default:
		return spec.Filename
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
