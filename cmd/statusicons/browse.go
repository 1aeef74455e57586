package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/app"
	"github.com/dshills/statusicons/internal/logging"
	"github.com/dshills/statusicons/internal/renderer/backend"
)

func newBrowseCmd(flags *globalFlags) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "browse [dir]",
		Short: "Browse a project with status icons",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The terminal owns stdout, so logs go to a file.
			if logFile == "" {
				logFile = filepath.Join(os.TempDir(), "statusicons.log")
			}
			log, err := setupLogging(logging.Config{
				Level:      flags.logLevel,
				Format:     "json",
				OutputPath: logFile,
			})
			if err != nil {
				return err
			}
			defer func() { _ = logging.Sync() }()

			stopMetrics := serveMetrics(flags.metricsAddr, log)
			defer stopMetrics()

			term, err := backend.NewTerminal()
			if err != nil {
				return err
			}
			application, err := app.New(app.Options{
				Root:        rootArg(args),
				ConfigFiles: flags.configFiles,
				Backend:     term,
				Logger:      log,
			})
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Run(cmd.Context()); err != nil {
				log.Error("browser failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "log file (default $TMPDIR/statusicons.log)")
	return cmd
}
