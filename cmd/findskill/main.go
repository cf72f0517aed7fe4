package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/findskill/pkg/config"
	"github.com/jingkaihe/findskill/pkg/logger"
	"github.com/jingkaihe/findskill/pkg/presenter"
	"github.com/jingkaihe/findskill/pkg/version"
)

// newViper returns a viper instance reading FINDSKILL_* environment variables
// on top of the built-in defaults.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("FINDSKILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	config.SetDefaults(v)
	return v
}

// readConfigFile loads an explicit config file, or config.yaml from
// $HOME/.findskill or the working directory when one exists.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", path)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.findskill")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "findskill <query>",
		Short: "Find Agent Skills on disk and on GitHub",
		Long: `findskill searches local skill directories and GitHub for Agent Skills whose
name or description matches the query.

Local directories are searched first, then configured repositories, then
repositories tagged with the configured topic, and finally a code search for
SKILL.md files. A local skill always wins over a remote one with the same name.

Examples:
  findskill pdf
  findskill "image resize" --local-only
  findskill email --json --limit 5
  findskill changelog --fetch`,
		Args:          cobra.ExactArgs(1),
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			format, _ := cmd.Flags().GetString("log-format")
			if err := logger.Configure(level, format); err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("config")
			return readConfigFile(v, path)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			shutdown, err := initTracing(ctx, cfg.Tracing)
			if err != nil {
				logger.G(ctx).WithError(err).Warn("failed to initialize tracing")
			} else {
				defer func() {
					if err := shutdown(context.WithoutCancel(ctx)); err != nil {
						logger.G(ctx).WithError(err).Debug("failed to shut down tracing")
					}
				}()
			}

			p := presenter.NewWithOptions(cmd.OutOrStdout(), cmd.ErrOrStderr(), presenter.DetectColorMode())
			return withTracing(ctx, cmd, args, func(ctx context.Context) error {
				return runFind(ctx, args[0], getFindConfigFromFlags(cmd), cfg, p)
			})
		},
	}
	cmd.SetVersionTemplate("findskill {{.Version}}\n")

	flags := cmd.Flags()
	flags.Bool("local-only", false, "Search only local skill directories")
	flags.Bool("json", false, "Output results as JSON (same as --format json)")
	flags.String("format", string(formatText), "Output format: text, json or yaml")
	flags.Bool("fetch", false, "Fetch and display the full SKILL.md of every result")
	flags.Int("limit", 10, "Maximum number of results")
	flags.String("config", "", "Config file (default $HOME/.findskill/config.yaml)")
	flags.String("log-level", logger.DefaultLevel, "Log level (panic, fatal, error, warn, info, debug, trace)")
	flags.String("log-format", "text", "Log format (text or json)")

	_ = v.BindPFlag("limit", flags.Lookup("limit"))

	return cmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(newViper()).ExecuteContext(ctx); err != nil {
		presenter.Error(err, "")
		cancel()
		os.Exit(1)
	}
}
