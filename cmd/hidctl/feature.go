package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardnew/asynchid"
)

func newFeatureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feature",
		Short: "Get or set a feature report",
	}
	cmd.AddCommand(newGetFeatureCmd(), newSetFeatureCmd())
	return cmd
}

func newGetFeatureCmd() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "get <id> <report-id>",
		Short: "Request a feature report by report ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportID, err := parseReportID(args[1])
			if err != nil {
				return err
			}

			backend := asynchid.NewHidBackend()
			defer backend.Close()

			ctx := cmd.Context()
			info, err := findDevice(ctx, backend, args[0])
			if err != nil {
				return err
			}

			dev, err := backend.Open(ctx, info.ID, asynchid.ModeReadWrite)
			if err != nil {
				return err
			}
			defer dev.Close()

			buf := make([]byte, size)
			n, err := dev.GetFeatureReport(ctx, reportID, buf)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "% x\n", buf[:n])
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 64, "feature report buffer size in bytes")
	return cmd
}

func newSetFeatureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <hex-report>",
		Short: "Send a feature report; the first byte is the report ID",
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

			dev, err := backend.Open(ctx, info.ID, asynchid.ModeReadWrite)
			if err != nil {
				return err
			}
			defer dev.Close()

			if err := dev.SetFeatureReport(ctx, data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func parseReportID(s string) (byte, error) {
	var v uint64
	_, err := fmt.Sscanf(s, "%d", &v)
	if err != nil || v > 0xff {
		return 0, fmt.Errorf("invalid report id %q: must be 0-255", s)
	}
	return byte(v), nil
}
