// Package cli wires the apexsim commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"apex-sim/internal/camera"
	"apex-sim/internal/config"
	"apex-sim/internal/log"
	"apex-sim/internal/physics"
	"apex-sim/internal/track"
)

const envPrefix = "APEXSIM"

// Version is set at build time.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:     "apexsim",
	Short:   "Racetrack sector viewer and camera simulator",
	Version: Version,

	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := camera.ParseEasing(config.Easing); err != nil {
			return err
		}
		return setupLogger()
	},
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:funlen // flag list
func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.apexsim.yml)")

	pf.StringVar(&config.LogLevel, "log-level", "info",
		"controls the log level (debug, info, warn, error, fatal)")
	pf.StringVar(&config.LogFormat, "log-format", "text",
		"controls the log output format (text, json)")
	pf.StringVar(&config.LogFilter, "log-filter", "",
		"zapfilter rules, e.g. \"*:* -debug:camera\"")

	pf.StringVar(&config.CatalogFile, "catalog", "",
		"YAML track catalog (default is the embedded catalog)")
	pf.StringVar(&config.AssetDir, "asset-dir", "",
		"directory searched for track SVGs before the embedded assets")
	pf.StringVar(&config.AssetBaseURL, "asset-url", "",
		"base URL searched for track SVGs not found locally")
	pf.DurationVar(&config.CacheTTL, "cache-ttl", defaultCacheTTL,
		"how long fetched path data stays cached")

	pf.IntVar(&config.PointBudget, "point-budget", track.DefaultPointBudget,
		"max number of polyline points per track")
	pf.Float64Var(&config.LineSpacing, "line-spacing", track.DefaultLineSpacing,
		"track units between samples on straight lines")
	pf.IntVar(&config.CubicSteps, "cubic-steps", track.DefaultCubicSteps,
		"samples per cubic curve")
	pf.IntVar(&config.QuadSteps, "quad-steps", track.DefaultQuadSteps,
		"samples per quadratic curve")
	pf.IntVar(&config.ArcSteps, "arc-steps", track.DefaultArcSteps,
		"samples per arc")
	pf.IntVar(&config.SectorCount, "sector-count", track.DefaultSectorCount,
		"sectors per track when the catalog does not define them")

	pf.Float64Var(&config.Smoothing, "smoothing", camera.DefaultSmoothing,
		"camera smoothing factor per tick")
	pf.Float64Var(&config.TickRate, "tick-rate", camera.DefaultTickRate,
		"nominal ticks per second")
	pf.Float64Var(&config.FitPadding, "fit-padding", camera.DefaultFitPadding,
		"viewport padding in pixels when fitting the whole track")
	pf.Float64Var(&config.ZoomPadding, "zoom-padding", camera.DefaultZoomPadding,
		"viewport padding in pixels when zooming to a sector")
	pf.DurationVar(&config.ZoomDuration, "zoom-duration", camera.DefaultZoomDuration,
		"duration of the zoom-to-sector animation")
	pf.DurationVar(&config.ResetDuration, "reset-duration", camera.DefaultResetDuration,
		"duration of the zoom-out animation")
	pf.StringVar(&config.Easing, "easing", "inOutCubic",
		"zoom animation curve (linear, inQuad, outQuad, inOutQuad, inOutCubic)")
	pf.Float64Var(&config.CarSpeed, "car-speed", physics.DefaultSpeed,
		"car progress per tick as a lap fraction")

	pf.IntVar(&config.ViewportWidth, "width", 1200, "viewport width in pixels")
	pf.IntVar(&config.ViewportHeight, "height", 800, "viewport height in pixels")

	rootCmd.AddCommand(NewViewCmd())
	rootCmd.AddCommand(NewSnapshotCmd())
	rootCmd.AddCommand(NewInspectCmd())
	rootCmd.AddCommand(NewServeCmd())
}

// initConfig layers the config file and APEXSIM_* environment variables
// under the command-line flags.
func initConfig() {
	v := viper.GetViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".apexsim")
	}
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}

	bindFlags(rootCmd, v)
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, v)
	}
}

// envKey maps a flag name to its environment variable, e.g. log-level to
// APEXSIM_LOG_LEVEL.
func envKey(flag string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// bindFlags fills every flag the user did not set from viper.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, "-") {
			if err := v.BindEnv(f.Name, envKey(f.Name)); err != nil {
				fmt.Fprintf(os.Stderr, "could not bind %s: %v\n", envKey(f.Name), err)
			}
		}
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, flagValue(v, f.Name)); err != nil {
			fmt.Fprintf(os.Stderr, "invalid value for --%s: %v\n", f.Name, err)
		}
	})
}

// flagValue renders a viper value the way pflag parses it; lists become
// comma separated.
func flagValue(v *viper.Viper, name string) string {
	switch val := v.Get(name).(type) {
	case []string:
		return strings.Join(val, ",")
	case []any:
		return strings.Join(lo.Map(val, func(x any, _ int) string { return fmt.Sprint(x) }), ",")
	default:
		return v.GetString(name)
	}
}
