package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "APEXSIM_LOG_LEVEL", envKey("log-level"))
	assert.Equal(t, "APEXSIM_WIDTH", envKey("width"))
}

func TestBindFlags(t *testing.T) {
	var (
		padding float64
		width   int
		origins []string
		format  string
	)
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Float64Var(&padding, "zoom-padding", 100, "")
	cmd.Flags().IntVar(&width, "width", 1200, "")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "")
	cmd.Flags().StringVar(&format, "log-format", "text", "")
	require.NoError(t, cmd.Flags().Set("log-format", "json"))

	t.Setenv("APEXSIM_ZOOM_PADDING", "42")
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.Set("width", 640)
	v.Set("origin", []any{"localhost:*", "example.com"})
	v.Set("log-format", "text")

	bindFlags(cmd, v)
	assert.InDelta(t, 42.0, padding, 1e-9)
	assert.Equal(t, 640, width)
	assert.Equal(t, []string{"localhost:*", "example.com"}, origins)
	assert.Equal(t, "json", format, "flags set on the command line win")
}
