// Package main is the entry point for the console CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"admin-console/internal/common/config"
	"admin-console/internal/common/logger"
	"admin-console/internal/common/observability"
	"admin-console/internal/console"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version information set via ldflags during build.
var version = "dev"

type globalFlags struct {
	configPath string
	baseURL    string
	token      string
	output     string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "console",
		Short:         "Admin console API client",
		Long:          `Calls the admin console backend: login, menu routes, departments, users and roles.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to config file (default: configs/config.yaml)")
	pf.StringVar(&flags.baseURL, "base-url", "", "Backend base URL, overrides api.base_url")
	pf.StringVar(&flags.token, "token", os.Getenv("CONSOLE_TOKEN"), "Access token sent as Authorization (env CONSOLE_TOKEN)")
	pf.StringVarP(&flags.output, "output", "o", "json", "Output format: json or yaml")

	cmd.AddCommand(
		loginCmd(flags),
		menuCmd(flags),
		deptCmd(flags),
		usersCmd(flags),
		rolesCmd(flags),
		bootstrapCmd(flags),
		serveMetricsCmd(flags),
	)
	return cmd
}

// loadConfig reads --config, or the default search path. --base-url is
// applied through API_BASE_URL so it also satisfies validation.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	if flags.baseURL != "" {
		_ = os.Setenv("API_BASE_URL", flags.baseURL)
	}

	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.baseURL != "" {
		cfg.API.BaseURL = flags.baseURL
	}
	return cfg, nil
}

// withConsole builds a console for one command and closes it afterwards.
func withConsole(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, c *console.Console) (any, error)) error {
	if err := checkOutput(flags.output); err != nil {
		return err
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	log := logger.NewZapAdapter(logger.New(cfg.Logging.Level, "console"))
	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := console.New(ctx, cfg, console.WithLogger(log), console.WithObservability(obs))
	if err != nil {
		return err
	}
	defer c.Close()

	if flags.token != "" {
		c.Session.SetToken(flags.token)
	}

	out, err := fn(ctx, c)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), flags.output, out)
}

func checkOutput(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown output format %q, want json or yaml", format)
}

// writeOutput prints v as indented JSON or as YAML. YAML goes through JSON
// first so both formats use the same field names.
func writeOutput(w io.Writer, format string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if format == "json" {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
