package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/auth"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/comparison"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/config"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/form"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/scenario"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/server"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/internal/storage"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/output"
	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// CLI override takes precedence
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zc zap.Config
	switch format {
	case "console":
		zc = zap.NewDevelopmentConfig()
	case "json":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zc.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}
		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zc.OutputPaths = []string{loggingConfig.OutputFile}
		zc.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zc.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	currencyFlag := flag.String("currency", "", "display currency override: SAR, USD, EUR, GBP, AED")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "serve the web UI and API instead of printing results")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flag.Parse()

	// A missing .env is not an error; it only seeds RECALC_* overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("{\"op\": \"main\", \"level\": \"warn\", \"msg\": \"failed to load .env\", \"error\": \"%v\"}\n", err)
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	if *serve {
		if err := runServer(conf, *serverConfigLocation, *logLevel); err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"server stopped\", \"error\": \"%v\"}\n", err)
			os.Exit(1)
		}
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}
	if *currencyFlag != "" {
		conf.Currency = *currencyFlag
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	table, err := evaluate(logger, conf)
	if err != nil {
		logger.Fatal("failed to evaluate scenarios",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(table)
	case constants.OutputFormatCSV:
		output.CsvFormat(table)
	}
}

// evaluate runs the presets and every configured scenario through the
// calculator and lays the valid ones out side by side.
func evaluate(logger *zap.Logger, conf *config.Configuration) (comparison.Table, error) {
	variant, err := conf.FormVariant()
	if err != nil {
		return comparison.Table{}, err
	}
	display, err := conf.DisplayCurrency()
	if err != nil {
		return comparison.Table{}, err
	}
	assumptions, err := conf.AssumptionFields()
	if err != nil {
		return comparison.Table{}, err
	}

	presets := scenario.PresetsFor(variant)
	configured, err := conf.BuildScenarios(presets)
	if err != nil {
		return comparison.Table{}, err
	}

	candidates := make([]scenario.NamedScenario, 0, len(presets)+len(configured))
	for _, p := range presets {
		if p.Fields == nil {
			continue
		}
		p.Fields = p.Fields.Merge(assumptions)
		for k := range p.Fields {
			if !variant.HasKey(k) {
				delete(p.Fields, k)
			}
		}
		candidates = append(candidates, p)
	}
	candidates = append(candidates, configured...)

	engine := comparison.NewEngine()
	for _, sc := range candidates {
		result, v := form.Evaluate(sc.Fields, variant)
		if !v.Valid {
			logger.Warn("skipping invalid scenario",
				zap.String("op", "main.evaluate"),
				zap.String("scenario", sc.Name),
				zap.Any("fieldErrors", v.FieldErrors),
			)
			continue
		}
		if !result.Finite() {
			logger.Warn("skipping scenario with non-finite result",
				zap.String("op", "main.evaluate"),
				zap.String("scenario", sc.Name),
			)
			continue
		}
		if _, err := engine.Add(sc.Name, result); err != nil {
			return comparison.Table{}, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		logger.Debug("evaluated scenario",
			zap.String("op", "main.evaluate"),
			zap.String("scenario", sc.Name),
			zap.Float64("netProfit", result.NetProfit),
		)
	}
	return engine.Table(display)
}

func runServer(conf *config.Configuration, serverConfigPath, logLevel string) error {
	serverConf, err := server.LoadConfig(serverConfigPath)
	if err != nil {
		return err
	}

	loggingConf := conf.Logging
	if serverConf.Logging != (config.LoggingConfig{}) {
		loggingConf = serverConf.Logging
	}
	logger, err := initializeLogger(loggingConf, logLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.NewOpener(conf.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close storage",
				zap.String("op", "main.runServer"),
				zap.Error(err),
			)
		}
	}()

	// The server config wins when it names a variant.
	variant := serverConf.FormVariant()
	if strings.TrimSpace(serverConf.Variant) == "" {
		if variant, err = conf.FormVariant(); err != nil {
			return err
		}
	}

	handler := server.NewHandler(logger, serverConf.RequestSizeBytes(), version,
		server.WithAuthenticator(auth.NewService(logger, conf.Auth)),
		server.WithStorage(store),
		server.WithVariant(variant),
	)
	srv := &http.Server{
		Addr:    serverConf.Address,
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving calculator",
			zap.String("op", "main.runServer"),
			zap.String("address", serverConf.Address),
			zap.String("variant", string(variant)),
			zap.String("storage", store.Driver()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConf.ShutdownTimeout)
	defer cancel()
	logger.Info("shutting down",
		zap.String("op", "main.runServer"),
	)
	return srv.Shutdown(shutdownCtx)
}
