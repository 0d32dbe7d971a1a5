package main

import (
	"fmt"

	"github.com/raykavin/atradx/pkg/config"
	"github.com/spf13/cobra"
)

func buildConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective strategy parameters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			s := cfg.Strategy
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "atr_period:           %d\n", s.ATRPeriod)
			fmt.Fprintf(out, "adx_period:           %d\n", s.ADXPeriod)
			fmt.Fprintf(out, "atr_threshold:        %g\n", s.ATRThreshold)
			fmt.Fprintf(out, "bull_high_multiplier: %g\n", s.BullHighMultiplier)
			fmt.Fprintf(out, "bull_low_multiplier:  %g\n", s.BullLowMultiplier)
			fmt.Fprintf(out, "bear_high_multiplier: %g\n", s.BearHighMultiplier)
			fmt.Fprintf(out, "bear_low_multiplier:  %g\n", s.BearLowMultiplier)
			fmt.Fprintf(out, "warmup_period:        %d\n", s.WarmupPeriod())
			return nil
		},
	})

	return configCmd
}
