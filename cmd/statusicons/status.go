package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/statusicons/internal/app"
	"github.com/dshills/statusicons/internal/logging"
	"github.com/dshills/statusicons/internal/vcs"
)

type statusFlags struct {
	timeout time.Duration
	members bool
	mode    string
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	sf := &statusFlags{}

	cmd := &cobra.Command{
		Use:   "status [dir]",
		Short: "Print the status icon of every item without a terminal UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, flags, sf, rootArg(args))
		},
	}

	f := cmd.Flags()
	f.DurationVar(&sf.timeout, "timeout", 30*time.Second, "give up waiting for fetches after this long")
	f.BoolVar(&sf.members, "members", false, "list archive entries")
	f.StringVar(&sf.mode, "mode", "", "reflection mode: local or remote (default from config)")
	return cmd
}

func runStatus(cmd *cobra.Command, flags *globalFlags, sf *statusFlags, root string) error {
	log, err := setupLogging(logging.Config{
		Level:      flags.logLevel,
		Format:     "console",
		OutputPath: "stderr",
	})
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync() }()

	stopMetrics := serveMetrics(flags.metricsAddr, log)
	defer stopMetrics()

	application, err := app.New(app.Options{
		Root:        root,
		ConfigFiles: flags.configFiles,
		Logger:      log,
	})
	if err != nil {
		return err
	}
	defer application.Close()

	if sf.mode != "" {
		mode, err := vcs.ParseMode(sf.mode)
		if err != nil {
			return err
		}
		if err := application.Store().Set("overlay.project_reflection", mode.String()); err != nil {
			return err
		}
	}

	lines, err := application.Scan(cmd.Context(), app.ScanOptions{
		Timeout: sf.timeout,
		Members: sf.members,
	})
	if err != nil {
		return err
	}
	return printLines(cmd.OutOrStdout(), lines)
}

// printLines writes one "glyph level kind path" line per item.
func printLines(w io.Writer, lines []app.Line) error {
	for _, l := range lines {
		kind := "-"
		if l.Status.ReflectionLevel > vcs.LevelPending {
			kind = l.Status.Kind.String()
			if l.Status.Staged {
				kind += "+staged"
			}
			if l.Status.OutOfDate {
				kind += "+outdated"
			}
		}
		if _, err := fmt.Fprintf(w, "%c %-10s %-12s %s\n", l.Glyph, l.Status.ReflectionLevel, kind, l.Path); err != nil {
			return err
		}
	}
	return nil
}
