package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zoorn/logging2"
	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/record"
)

func newEmitCommand(ctx *commandContext) *cobra.Command {
	var (
		loggerFlag   string
		messageFlag  string
		levelFlags   []string
		filenameFlag string
	)

	cmd := &cobra.Command{
		Use:   "emit <identifier>...",
		Short: "Push test records through a real pipeline built from the documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			levels := make([]record.Level, 0, len(levelFlags))
			for _, name := range levelFlags {
				level, err := record.ParseLevel(name)
				if err != nil {
					return err
				}
				if level == record.LevelUnset {
					return fmt.Errorf("cannot emit at %s", level)
				}
				levels = append(levels, level)
			}

			coord := logging2.New(logging2.Options{
				Sources:          ctx.sources(),
				DisableBootstrap: true,
				Fallback:         cmd.ErrOrStderr(),
			})
			specs := make([]logging2.LoadSpec, 0, len(args))
			for _, identifier := range args {
				specs = append(specs, logging2.LoadSpec{
					Identifier: identifier,
					Overrides:  conf.Overrides{Filename: filenameFlag},
				})
			}
			if err := coord.LoadMany(specs); err != nil {
				return err
			}

			logger, err := coord.GetLogger(loggerFlag)
			if err != nil {
				return err
			}
			for _, level := range levels {
				emitAt(logger, level, messageFlag)
			}

			shutdownCtx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := coord.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("drain pipeline: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Emitted %d record(s) on logger %q\n", len(levels), loggerFlag)
			return nil
		},
	}

	cmd.Flags().StringVar(&loggerFlag, "logger", "logging2.cli", "Logger name records are emitted on")
	cmd.Flags().StringVar(&messageFlag, "message", "logging2 test record", "Record message")
	cmd.Flags().StringArrayVar(&levelFlags, "level", []string{"INFO"}, "Record severity, repeatable")
	cmd.Flags().StringVar(&filenameFlag, "filename", "", "Redirect file-backed handlers to this path")
	return cmd
}

func emitAt(logger *logging2.Logger, level record.Level, message string) {
	switch {
	case level >= record.LevelCritical:
		logger.Critical(message)
	case level >= record.LevelError:
		logger.Error(message)
	case level >= record.LevelWarn:
		logger.Warn(message)
	case level >= record.LevelInfo:
		logger.Info(message)
	default:
		logger.Debug(message)
	}
}
