// main.go bootstraps hubben: it builds the root Cobra command, binds viper configuration and executes with signal-aware contexts.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/example/hubben/internal/api"
	"github.com/example/hubben/internal/config"
	"github.com/example/hubben/internal/featureflags"
	"github.com/example/hubben/internal/logging"
	"github.com/example/hubben/internal/telemetry"
	"github.com/go-logr/logr"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(os.Stderr, err)
	if err != nil {
		os.Exit(1)
	}
}

// globals carries the persistent flags and what PersistentPreRunE derives
// from them.
type globals struct {
	opts         *config.Options
	logLevel     string
	featureNames []string
	stats        bool

	log      logr.Logger
	features featureflags.Flags
	// rec is set when --stats is given.
	rec *telemetry.Recorder
}

func newRootCommand() *cobra.Command {
	g := &globals{opts: config.NewOptions(), logLevel: "info", log: logr.Discard()}
	v := newViper()
	cmd := &cobra.Command{
		Use:           "hubben",
		Short:         "Read NPF Hubben news and survey reports",
		Long:          "hubben serves the public news and report pages of an NPF Hubben backend as a web portal, a terminal browser or one-shot commands.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfig(v, cmd); err != nil {
				return err
			}
			log, err := logging.New(g.logLevel)
			if err != nil {
				return err
			}
			g.log = log
			fromEnv, unknown := featureflags.EnabledFromEnv(nil)
			for _, key := range unknown {
				g.log.Info("ignoring unknown feature flag from environment", "variable", key)
			}
			flags, err := featureflags.Resolve(g.featureNames, fromEnv)
			if err != nil {
				return err
			}
			g.features = flags
			cmd.SetContext(featureflags.ContextWithFlags(cmd.Context(), flags))
			if g.stats {
				g.rec = telemetry.NewRecorder()
			}
			return g.opts.Validate()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if line := g.rec.Summary().Line(); line != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), line)
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	g.opts.BindFlags(pf)
	pf.StringVar(&g.logLevel, "log-level", g.logLevel, "Log level for hubben output (debug, info, warn, error)")
	pf.BoolVar(&g.stats, "stats", false, "Print a timing summary of backend requests to stderr")
	pf.StringSliceVar(&g.featureNames, "feature", nil, "Enable experimental hubben features (repeat or pass comma-separated names)")
	if err := pf.MarkHidden("feature"); err != nil {
		cobra.CheckErr(err)
	}

	cmd.AddCommand(
		newServeCommand(g),
		newNewsCommand(g),
		newReportsCommand(g),
		newReportCommand(g),
		newBrowseCommand(g),
		newCacheCommand(g),
		newVersionCommand(),
	)
	cmd.Example = `  # Serve the portal against a local backend
  hubben serve --backend http://localhost:8000 --listen :8080

  # List reports whose slug contains "skola"
  hubben reports --filter skola

  # Read one report as YAML
  hubben report grundskola-2024 --kommun Lund -o yaml`
	return cmd
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("HUBBEN")
	v.AutomaticEnv()
	configureConfigFile(v, os.Getenv("HUBBEN_CONFIG"))
	return v
}

// applyConfig fills every flag the user did not set from the environment or
// the config file.
func applyConfig(v *viper.Viper, cmd *cobra.Command) error {
	flagSets := []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()}
	for _, fs := range flagSets {
		if err := v.BindPFlags(fs); err != nil {
			return err
		}
	}
	if err := readConfigFile(v, os.Getenv("HUBBEN_CONFIG") != ""); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var firstErr error
	for _, fs := range flagSets {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed || !v.IsSet(f.Name) {
				return
			}
			val := fmt.Sprintf("%v", v.Get(f.Name))
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				if err := sv.Replace(v.GetStringSlice(f.Name)); err != nil && firstErr == nil {
					firstErr = fmt.Errorf("config %s: %w", f.Name, err)
				}
				return
			}
			if val == "" {
				return
			}
			if err := f.Value.Set(val); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("config %s=%q: %w", f.Name, val, err)
			}
		})
	}
	return firstErr
}

func configureConfigFile(v *viper.Viper, explicitPath string) {
	if explicitPath != "" {
		if expanded, err := homedir.Expand(explicitPath); err == nil {
			explicitPath = expanded
		}
		v.SetConfigFile(explicitPath)
		return
	}
	v.SetConfigName("config")
	for _, dir := range configSearchDirs() {
		v.AddConfigPath(dir)
	}
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}

func configSearchDirs() []string {
	added := make(map[string]struct{})
	var dirs []string
	add := func(path string) {
		if path == "" {
			return
		}
		if _, ok := added[path]; ok {
			return
		}
		added[path] = struct{}{}
		dirs = append(dirs, path)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		add(filepath.Join(xdg, "hubben"))
	}
	if home, err := homedir.Dir(); err == nil && home != "" {
		add(filepath.Join(home, ".config", "hubben"))
		add(filepath.Join(home, ".hubben"))
	}
	add(".")
	return dirs
}

func handleError(w io.Writer, err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	var statusErr *api.StatusError
	var opErr *net.OpError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		message = fmt.Sprintf("%s\nHint: increase --timeout or check that the backend responds.", err)
	case api.IsNotFound(err):
		message = fmt.Sprintf("%s\nHint: list valid slugs with 'hubben reports' and check the kommun spelling.", err)
	case errors.As(err, &statusErr) && statusErr.Temporary():
		message = fmt.Sprintf("%s\nHint: the backend is failing; retry later or enable --feature offline-fallback with --cache-db.", err)
	case errors.As(err, &opErr):
		message = fmt.Sprintf("%s\nHint: is the backend running? Point --backend (or HUBBEN_BACKEND) at it.", err)
	}
	fmt.Fprintf(w, "Error: %s\n", message)
}
