// cmd/reachlist/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/valpere/reachlist/internal/config"
	"github.com/valpere/reachlist/internal/errors"
	"github.com/valpere/reachlist/internal/pipeline"
	"github.com/valpere/reachlist/internal/server"
	"github.com/valpere/reachlist/internal/utils"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// maxEntryWidth bounds entries echoed by run -v
const maxEntryWidth = 120

// Global error service instance
var errorService = errors.NewService()

func main() {
	os.Exit(runCLI(os.Args[1:], os.Stdout, os.Stderr))
}

// runCLI routes a command line to its command and returns the exit code
func runCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return errors.ExitGeneral
	}

	verbose := hasFlag(args, "-v") || hasFlag(args, "--verbose")
	errorService = errorService.WithVerbose(verbose)

	var err error
	switch command := args[0]; command {
	case "serve":
		err = serve(args[1:], stderr)

	case "run":
		err = runOnce(args[1:], stdout, stderr)

	case "validate":
		if len(args) < 2 {
			fmt.Fprintf(stderr, "Error: config file required\n")
			fmt.Fprintf(stderr, "Usage: reachlist validate <config.yaml>\n")
			return errors.ExitGeneral
		}
		err = validateConfig(args[1], stdout, verbose)

	case "template":
		err = generateTemplate(stdout)

	case "version", "--version":
		printVersion(stdout)

	case "help", "--help", "-h":
		printUsage(stdout)

	default:
		fmt.Fprintf(stderr, "Error: unknown command '%s'\n", command)
		printUsage(stderr)
		return errors.ExitGeneral
	}

	if err != nil {
		if err == flag.ErrHelp {
			return errors.ExitOK
		}
		fmt.Fprint(stderr, errorService.FormatErrorForCLI(err))
		return errorService.GetExitCode(err)
	}
	return errors.ExitOK
}

// serve runs the HTTP service until SIGINT or SIGTERM
func serve(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "service configuration file")
	addr := fs.String("addr", "", "listen address, overrides server.listen")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Listen = *addr
	}

	logger := newLogger(cfg, *verbose, stderr)

	srv, err := server.New(cfg, server.Options{Logger: logger, Version: version})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if *configFile != "" {
		watcher, err := config.NewConfigWatcher(*configFile, logger)
		if err != nil {
			return fmt.Errorf("failed to watch configuration: %w", err)
		}
		defer watcher.Close()

		watcher.OnChange(func(updated *config.ServiceConfig) {
			if *addr != "" {
				updated.Server.Listen = *addr
			}
			if err := srv.UpdateConfig(updated); err != nil {
				logger.Errorf("keeping previous configuration: %v", err)
			}
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

// runOnce filters a single source list and prints the result to stdout
func runOnce(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "service configuration file")
	sourceURL := fs.String("url", "", "source list location")
	maxMs := fs.String("max", "", "probe timeout in milliseconds (default 1000)")
	proto := fs.String("proto", "", "comma-separated scheme allow-list")
	keyword := fs.String("keyword", "", "substring the decoded entry must contain")
	addLatency := fs.Bool("add-latency", false, "append |Nms to the entry label")
	concurrency := fs.Int("concurrency", 0, "probes in flight (default 1)")
	verbose := fs.Bool("v", false, "print dropped entries to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if *concurrency > 0 {
		cfg.Probe.Concurrency = *concurrency
	}

	request := config.MapSource{
		config.ParamURL:     *sourceURL,
		config.ParamMax:     *maxMs,
		config.ParamProto:   *proto,
		config.ParamKeyword: *keyword,
	}
	if *addLatency {
		request[config.ParamAddLatency] = strconv.FormatBool(true)
	}

	params, err := cfg.ResolveRequest(request)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, *verbose, stderr)
	p, err := pipeline.NewFromConfig(cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := p.Execute(ctx, params)
	if err != nil {
		return err
	}

	if *verbose {
		for _, res := range result.Results {
			if res.Reason.Kept() {
				continue
			}
			fmt.Fprintf(stderr, "dropped %s (%s)\n", utils.TruncateString(res.Entry, maxEntryWidth), res.Reason)
		}
		fmt.Fprintf(stderr, "kept %d of %d entries in %s\n", len(result.Entries), len(result.Results), utils.FormatDuration(result.Duration))
	}

	if body := result.Body(); body != "" {
		fmt.Fprintln(stdout, body)
	}
	return nil
}

// validateConfig loads and validates a configuration file
func validateConfig(configFile string, stdout io.Writer, verbose bool) error {
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	details := cfg.ValidateWithDetails()
	for _, warning := range details.Warnings {
		fmt.Fprintf(stdout, "⚠ %s\n", warning)
	}

	if verbose {
		fmt.Fprintf(stdout, "Configuration details:\n")
		fmt.Fprintf(stdout, "  Name: %s\n", cfg.Name)
		fmt.Fprintf(stdout, "  Listen: %s\n", cfg.Server.Listen)
		fmt.Fprintf(stdout, "  Probe concurrency: %d\n", cfg.Probe.Concurrency)
		fmt.Fprintf(stdout, "  Overrides: %d\n", len(cfg.Overrides))
	}

	fmt.Fprintf(stdout, "✓ Configuration file '%s' is valid\n", configFile)
	return nil
}

// generateTemplate writes a YAML template with every default spelled out
func generateTemplate(stdout io.Writer) error {
	template := config.GenerateTemplate()
	if err := config.SaveToWriter(&template, stdout); err != nil {
		return fmt.Errorf("failed to generate template: %w", err)
	}
	return nil
}

func loadConfig(configFile string) (*config.ServiceConfig, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.ServiceConfig, verbose bool, out io.Writer) utils.Logger {
	level := utils.ParseLogLevel(cfg.Logging.Level)
	if verbose {
		level = utils.DebugLevel
	}
	return utils.NewLoggerWithOptions(utils.LoggerOptions{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: out,
	})
}

// hasFlag checks if a flag is present in command line arguments
func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == name {
			return true
		}
	}
	return false
}

// printUsage displays help information
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "reachlist - filter a remote URL list down to reachable entries")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  reachlist serve [-config file] [-addr host:port]   Run the HTTP service")
	fmt.Fprintln(w, "  reachlist run -url <list> [options]                Filter one list and print it")
	fmt.Fprintln(w, "  reachlist validate <config.yaml>                   Validate configuration file")
	fmt.Fprintln(w, "  reachlist template                                 Generate configuration template")
	fmt.Fprintln(w, "  reachlist version                                  Show version information")
	fmt.Fprintln(w, "  reachlist help                                     Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run options:")
	fmt.Fprintln(w, "  -max <ms>          Probe timeout in milliseconds (default 1000)")
	fmt.Fprintln(w, "  -proto <list>      Comma-separated scheme allow-list, e.g. https,socks5")
	fmt.Fprintln(w, "  -keyword <text>    Keep entries whose decoded text contains <text>")
	fmt.Fprintln(w, "  -add-latency       Append |Nms to each entry label")
	fmt.Fprintln(w, "  -concurrency <n>   Probes in flight (default 1)")
	fmt.Fprintln(w, "  -config <file>     Service configuration file")
	fmt.Fprintln(w, "  -v                 Verbose output")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Environment variables %s_URL, %s_MAX, %s_PROTO, %s_KEYWORD and %s_ADD_LATENCY\n",
		config.EnvPrefix, config.EnvPrefix, config.EnvPrefix, config.EnvPrefix, config.EnvPrefix)
	fmt.Fprintln(w, "override the corresponding parameters.")
}

// printVersion displays version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "reachlist %s\n", version)
	fmt.Fprintf(w, "Build time: %s\n", buildTime)
	fmt.Fprintf(w, "Git commit: %s\n", gitCommit)
}
