package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every flag-derived environment variable,
// e.g. TICKTICK_MCP_TRANSPORT for --transport.
const envPrefix = "TICKTICK_MCP"

// bindConfig returns a viper instance that resolves each flag of cmd from the
// command line first, then from the environment, then from the flag default.
func bindConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}
