package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bisub/internal/logging"
	"bisub/internal/media/ffprobe"
)

type probeView struct {
	Video           string  `json:"video"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	DurationSeconds float64 `json:"duration_seconds"`
	Portrait        bool    `json:"portrait"`
	Fallback        bool    `json:"fallback"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "probe <video>",
		Short: "Show the frame size and duration used for styling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			video := args[0]
			view := probeView{Video: video}
			geometry, err := ffprobe.Probe(cmd.Context(), cfg.FFprobeBinary(), video)
			if err != nil {
				ctx.loggerFor(cmd).Debug("probe failed", logging.Error(err))
				geometry = ffprobe.DefaultGeometry
				view.Fallback = true
			}
			view.Width = geometry.Width
			view.Height = geometry.Height
			view.DurationSeconds = geometry.DurationSeconds
			view.Portrait = geometry.Portrait()

			if jsonOutput {
				return writeJSON(cmd, view)
			}
			duration := "unknown"
			if view.DurationSeconds > 0 {
				duration = strconv.FormatFloat(view.DurationSeconds, 'f', 2, 64) + "s"
			}
			rows := [][]string{
				{"Resolution", geometry.String()},
				{"Duration", duration},
				{"Portrait", yesNo(view.Portrait)},
				{"Default geometry", yesNo(view.Fallback)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(video, []string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	return cmd
}
