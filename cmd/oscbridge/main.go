package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/opd-ai/oscbridge"
	"github.com/opd-ai/oscbridge/config"
	"github.com/opd-ai/oscbridge/factory"
	"github.com/opd-ai/oscbridge/metrics"
	"github.com/sirupsen/logrus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// CLIConfig holds the command-line flags.
type CLIConfig struct {
	configPath string
	logLevel   string
	simulate   bool
	metrics    bool
	help       bool
}

// parseCLIFlags parses args into a CLIConfig.
func parseCLIFlags(args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet("oscbridge", flag.ContinueOnError)

	fs.StringVar(&cfg.configPath, "config", "", "YAML configuration file (default: built-in defaults)")
	fs.StringVar(&cfg.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	fs.BoolVar(&cfg.simulate, "simulate", false, "Use the in-memory transport instead of UDP sockets")
	fs.BoolVar(&cfg.metrics, "metrics", false, "Log collected metric totals at shutdown")
	fs.BoolVar(&cfg.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// printUsage prints the usage information.
func printUsage() {
	fmt.Println("OSC Bridge")
	fmt.Println("==========")
	fmt.Println()
	fmt.Println("Opens OSC receivers and senders, relays packets between them and")
	fmt.Println("drains inbound packets once per iteration interval.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s [options]\n", os.Args[0])
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config string     YAML configuration file")
	fmt.Println("  -log-level string  Log level override (debug, info, warn, error)")
	fmt.Println("  -simulate          Use the in-memory transport instead of UDP sockets")
	fmt.Println("  -metrics           Log collected metric totals at shutdown")
	fmt.Println("  -help              Show this message")
	fmt.Println()
	fmt.Printf("Environment variables prefixed with %s override the file.\n", config.EnvPrefix)
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  %s -config bridge.yaml\n", os.Args[0])
	fmt.Printf("  OSCBRIDGE_RECEIVERS=8000 OSCBRIDGE_SENDERS=127.0.0.1:9000 %s -log-level debug\n", os.Args[0])
}

// buildOptions loads the configuration and applies flag overrides.
func buildOptions(cli *CLIConfig) (*config.Options, error) {
	opts, err := config.Load(cli.configPath)
	if err != nil {
		return nil, err
	}
	if cli.logLevel != "" {
		opts.LogLevel = cli.logLevel
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// newTransportFactory builds the transport factory for opts. The -simulate
// flag switches it to the in-memory transport whatever the configuration says.
func newTransportFactory(cli *CLIConfig, opts *config.Options) *factory.TransportFactory {
	f := factory.NewTransportFactory(opts.TransportConfig())
	if cli.simulate {
		f.SwitchToSimulation()
	}

	logrus.WithFields(logrus.Fields{
		"function":   "newTransportFactory",
		"simulation": f.IsUsingSimulation(),
	}).Debug("Transport factory ready")

	return f
}

// configureLogging sets the global logrus level and format.
func configureLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

// setupSignalHandling cancels ctx on SIGINT or SIGTERM.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logrus.WithFields(logrus.Fields{
			"function": "setupSignalHandling",
			"signal":   sig.String(),
		}).Info("Received signal, shutting down")
		cancel()
	}()
}

// run opens the configured endpoints and drains the bridge every iteration
// interval until ctx is cancelled or the bridge is killed. Endpoints are torn
// down before it returns.
func run(ctx context.Context, bridge *oscbridge.Bridge) error {
	if err := bridge.Start(); err != nil {
		return errors.Join(fmt.Errorf("start endpoints: %w", err), bridge.Kill())
	}

	logrus.WithFields(logrus.Fields{
		"function":  "run",
		"receivers":     bridge.Registry().Receivers(),
		"senders":       bridge.Registry().Senders(),
		"subscriptions": bridge.Dispatcher().Addresses(),
		"interval":      bridge.IterationInterval(),
	}).Info("Bridge running")

	ticker := time.NewTicker(bridge.IterationInterval())
	defer ticker.Stop()

	for bridge.IsRunning() {
		select {
		case <-ctx.Done():
			return bridge.Kill()
		case <-ticker.C:
			bridge.Iterate()
		}
	}
	return nil
}

// logMetricTotals logs every counter collected from reader in name order.
func logMetricTotals(ctx context.Context, reader sdkmetric.Reader) error {
	totals, err := metrics.Totals(ctx, reader)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		logrus.WithFields(logrus.Fields{
			"function": "logMetricTotals",
			"metric":   name,
			"total":    totals[name],
		}).Info("Metric total")
	}
	return nil
}

func main() {
	cli, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cli.help {
		printUsage()
		os.Exit(0)
	}

	opts, err := buildOptions(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Use -help for usage information.\n")
		os.Exit(1)
	}
	if err := configureLogging(opts.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	var rec metrics.Recorder = metrics.NoopRecorder{}
	if cli.metrics {
		rec = metrics.NewRecorderWithMeter(provider.Meter(metrics.InstrumentationName))
	}

	bridge, err := oscbridge.NewWithFactory(opts, newTransportFactory(cli, opts), oscbridge.WithRecorder(rec))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create bridge: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	setupSignalHandling(cancel)

	exitCode := 0
	err = run(ctx, bridge)
	cancel()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Error("Bridge stopped with errors")
		exitCode = 1
	}

	if cli.metrics {
		if err := logMetricTotals(context.Background(), reader); err != nil {
			logrus.WithError(err).Warn("Failed to collect metrics")
		}
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		logrus.WithError(err).Warn("Failed to shut down meter provider")
	}

	os.Exit(exitCode)
}
