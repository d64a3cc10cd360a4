//go:build profile

package main

import (
	"github.com/spf13/cobra"

	"github.com/ardnew/asynchid/pkg/prof"
)

// bindProfileFlags adds a --cpu-profile flag that streams a CPU profile
// for the lifetime of the command. Only present in builds tagged
// "profile"; see pkg/prof's doc comment for the tag's rationale.
func bindProfileFlags(root *cobra.Command) {
	var cpuProfilePath string
	root.PersistentFlags().StringVar(&cpuProfilePath, "cpu-profile", "", "write a CPU profile to this path")

	prePersistent := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if prePersistent != nil {
			if err := prePersistent(cmd, args); err != nil {
				return err
			}
		}
		if cpuProfilePath != "" {
			return prof.StartCPU(cpuProfilePath)
		}
		return nil
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if cpuProfilePath != "" {
			prof.StopCPU()
		}
	}
}
