//go:build !profile

package main

import "github.com/spf13/cobra"

// bindProfileFlags is a no-op in the default build; rebuild with
// "-tags profile" to get --cpu-profile support.
func bindProfileFlags(root *cobra.Command) {}
