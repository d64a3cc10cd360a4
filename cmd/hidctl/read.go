package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardnew/asynchid"
)

// findDevice enumerates and returns the DeviceInfo whose ID string matches
// id exactly; the backend never exposes a way to construct a DeviceId from
// a bare string, so the CLI always resolves one in terms of a fresh
// enumeration.
func findDevice(ctx context.Context, backend *asynchid.HidBackend, id string) (asynchid.DeviceInfo, error) {
	infos, err := backend.Enumerate(ctx)
	if err != nil {
		return asynchid.DeviceInfo{}, err
	}
	for _, info := range infos {
		if info.ID.String() == id {
			return info, nil
		}
	}
	return asynchid.DeviceInfo{}, fmt.Errorf("no device with id %q is currently present", id)
}

func newReadCmd() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "read <id>",
		Short: "Open a device and print one input report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := asynchid.NewHidBackend()
			defer backend.Close()

			ctx := cmd.Context()
			info, err := findDevice(ctx, backend, args[0])
			if err != nil {
				return err
			}

			dev, err := backend.Open(ctx, info.ID, asynchid.ModeRead)
			if err != nil {
				return err
			}
			defer dev.Close()

			buf := make([]byte, size)
			n, err := dev.Read(ctx, buf)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "% x\n", buf[:n])
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 64, "input report buffer size in bytes")
	return cmd
}
