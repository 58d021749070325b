package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/buildinfo"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/config"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/domain/rules"
	"github.com/MolotilkaHolotilka/json-to-excel-converter/internal/infra/logger"
	exportsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/export"
)

var (
	cfgFile string
	verbose bool

	appCfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sheetctl",
	Short: "Convert JSON records into styled Excel files",
	Long: `sheetctl runs the same export as the HTTP service without a server.

Configuration is read from --config, then APP_CONFIG, then configs/config.yaml;
environment overrides apply exactly as for the API.`,
	Version:           buildinfo.Version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log export details to stderr")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = os.Getenv("APP_CONFIG")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	appCfg = cfg
	return nil
}

func newExportService() (*exportsvc.Service, error) {
	log := zap.NewNop()
	if verbose {
		l, err := logger.New("debug", appCfg.Env)
		if err != nil {
			return nil, err
		}
		log = l
	}

	order := rules.DefaultColumnOrder()
	if len(appCfg.Export.PreferredColumns) > 0 {
		order = rules.NewColumnOrder(appCfg.Export.PreferredColumns...)
	}

	return exportsvc.NewService(order, exportsvc.Config{
		SheetName:  appCfg.Export.SheetName,
		MaxRecords: appCfg.Export.MaxRecords,
	}, log), nil
}
