package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/josegonzalez/dupcheck/pkg/dupcheck"
	"github.com/josegonzalez/dupcheck/pkg/source"
)

// app carries the global flags shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "dupcheck",
		Short:        "Find likely duplicate CRM leads, accounts and contacts",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(a.logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newDetectCmd(a),
		newExplainCmd(a),
		newSimilarityCmd(a),
		newNormalizeCmd(a),
	)

	return cmd
}

// newLogger builds a console logger writing to w.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		lvl,
	)
	return zap.New(core), nil
}

// detector builds a Detector from the --config file, if any, plus extra options.
func (a *app) detector(opts ...dupcheck.Option) (*dupcheck.Detector, error) {
	cfg := dupcheck.DefaultConfig()
	if a.configPath != "" {
		var err error
		if cfg, err = dupcheck.LoadConfigFile(a.configPath); err != nil {
			return nil, err
		}
		a.logger.Debug("loaded configuration", zap.String("path", a.configPath))
	}

	all := append([]dupcheck.Option{dupcheck.WithConfig(cfg), dupcheck.WithLogger(a.logger)}, opts...)
	return dupcheck.NewDetector(all...)
}

func readRecord(entity dupcheck.EntityType, path string) (dupcheck.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return source.DecodeRecord(entity, data)
}

func checkFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	}
	return fmt.Errorf("unknown output format %q (want json or text)", format)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
