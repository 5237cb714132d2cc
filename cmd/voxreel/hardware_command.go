package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHardwareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "hardware",
		Short: "Show the detected hardware profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.newLogger(true)
			if err != nil {
				return err
			}
			profile := ctx.hardwareProfile(cmd.Context(), logger)
			rows := make([][]string, 0, 10)
			for _, row := range profile.Rows() {
				rows = append(rows, []string{row.Label, row.Value})
			}
			rows = append(rows,
				[]string{"Voice device", profile.TorchDevice()},
				[]string{"Whisper device", profile.WhisperDevice()},
			)
			fmt.Fprintln(cmd.OutOrStdout(), renderKeyValueTable(rows))
			return nil
		},
	}
}
