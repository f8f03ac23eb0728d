package main

import (
	"github.com/spf13/cobra"
)

var inspectFlags struct {
	config string
	style  string
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the compiled transition and observation matrices",
		Args:  cobra.NoArgs,
		RunE:  runInspect,
	}
	cmd.Flags().StringVarP(&inspectFlags.config, "config", "c", "", "Model configuration (required)")
	cmd.Flags().StringVar(&inspectFlags.style, "style", "default", "Table style: default, light, round, bold, double")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(inspectFlags.config, "")
	if err != nil {
		return err
	}
	observations, err := cfg.Observations()
	if err != nil {
		return err
	}
	rows, _ := observations.Dims()
	compiler, err := cfg.Compiler(rows)
	if err != nil {
		return err
	}
	transition, observation, err := compiler.Compile()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	renderMatrix(out, inspectFlags.style, "TRANSITION", transition)
	renderMatrix(out, inspectFlags.style, "OBSERVATION", observation)
	return nil
}
