package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardnew/asynchid"
)

func newWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write <id> <hex-report>",
		Short: "Open a device and send one output report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := hex.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("decoding report bytes: %w", err)
			}

			backend := asynchid.NewHidBackend()
			defer backend.Close()

			ctx := cmd.Context()
			info, err := findDevice(ctx, backend, args[0])
			if err != nil {
				return err
			}

			dev, err := backend.Open(ctx, info.ID, asynchid.ModeWrite)
			if err != nil {
				return err
			}
			defer dev.Close()

			n, err := dev.Write(ctx, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes\n", n)
			return nil
		},
	}
}
