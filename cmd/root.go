// Package cmd provides the entrypoint for the traffic-dash cli.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/isometry/traffic-dash/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigFilePath = "config.yaml"

var (
	configFilePath string
	logger         *slog.Logger
	logOutput      io.Writer = os.Stdout
)

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
}

// New returns the root command for traffic-dash.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "traffic-dash",
		Short:         "Relays the traffic JSON feed and serves the dashboard assets",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			config.Global.Mode = strings.TrimSpace(config.Global.Mode)
			// A subcommand names the mode it runs in, whatever the configuration says.
			if cmd.HasParent() {
				config.Global.Mode = cmd.Name()
			}
			logger = slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
				AddSource: config.Global.Logging.CallerTrace,
				Level:     slog.LevelWarn - slog.Level(config.Global.Logging.Verbosity*4),
			})).With("mode", config.Global.Mode)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch config.Global.Mode {
			case config.ModeService:
				return cmdService().RunE(cmd, args)
			case config.ModeLambda:
				return cmdLambda().RunE(cmd, args)
			default:
				return fmt.Errorf("invalid mode: %s", config.Global.Mode)
			}
		},
	}

	// Root command flags
	configFilePath = configPathFromArgs(os.Args[1:])
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", configFilePath, "path to the configuration file")

	// Configuration loading & defaults
	if err := errors.Join(
		config.LoadFromFile(configFilePath),
		config.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdLambda(),
		cmdService(),
	)

	return cmd
}

func setupDynamicFlags(cmd *cobra.Command) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapCount)
	bindEnvMap(cmd, envMapDuration)
	bindEnvMap(cmd, envMapInt64)
}

// configPathFromArgs finds the configuration file before flags are parsed, since the file provides the flag defaults.
func configPathFromArgs(args []string) string {
	path := defaultConfigFilePath
	if env, found := os.LookupEnv("CONFIG"); found {
		path = env
	}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return path
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				path = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--config="):
			path = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-c="):
			path = strings.TrimPrefix(arg, "-c=")
		case strings.HasPrefix(arg, "-c") && len(arg) > 2 && !strings.HasPrefix(arg, "--"):
			path = arg[2:]
		}
	}
	return path
}
