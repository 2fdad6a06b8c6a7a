package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScenariosCmd(opts *rootOptions) *cobra.Command {
	var extensions string
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenarios a run would execute, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("extensions") {
				cfg.Extensions = extensions
			}
			scenarios, err := loadScenarios(cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, s := range scenarios {
				fmt.Fprintf(out, "%3d  %-12s %s\n", i+1, s.Family, s.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&extensions, "extensions", "", "directory of extension scenario files")
	return cmd
}
