package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardnew/asynchid"
)

func newEnumerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enumerate",
		Short: "List every HID device currently present",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := asynchid.NewHidBackend()
			defer backend.Close()

			infos, err := backend.Enumerate(cmd.Context())
			if err != nil {
				return err
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tvid=%04x pid=%04x usage=%04x:%04x %q\n",
					info.ID, info.VendorID, info.ProductID, info.UsagePage, info.UsageID, info.Name)
			}
			return nil
		},
	}
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print connect/disconnect events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := asynchid.NewHidBackend()
			defer backend.Close()

			ctx := cmd.Context()
			events, cancel, err := backend.Watch(ctx)
			if err != nil {
				return err
			}
			defer cancel()

			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", ev.Kind, ev.Info.ID)
				case <-ctx.Done():
					return context.Cause(ctx)
				}
			}
		},
	}
}
