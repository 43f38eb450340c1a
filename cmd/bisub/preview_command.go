package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bisub/internal/ffmpeg"
	"bisub/internal/preview"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "preview <video> <subtitles>",
		Short: "Render one styled frame to check subtitle appearance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.loggerFor(cmd)
			video, cuePath := args[0], args[1]

			cues, err := loadCues(cuePath)
			if err != nil {
				return err
			}

			opts := []preview.Option{preview.WithTimeout(timeout)}
			if store := ctx.historyStore(cmd.Context(), logger); store != nil {
				opts = append(opts, preview.WithRecorder(store))
			}
			generator, err := preview.NewGenerator(cfg, logger, opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			result, err := generator.Render(cmd.Context(), preview.Request{
				Video:   video,
				Cues:    cues,
				CuePath: cuePath,
				Output:  outputPath,
			})
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Preview", statusError, "no preview produced", colorize))
				return err
			}
			fmt.Fprintln(out, renderStatusLine("Preview", statusOK, result.Image, colorize))
			fmt.Fprintln(out, renderStatusLine("Cue", statusInfo, fmt.Sprintf("#%d", result.Cue.Index), colorize))
			fmt.Fprintln(out, renderStatusLine("Frame at", statusInfo, ffmpeg.FormatSeconds(result.Seek)+"s", colorize))
			fmt.Fprintln(out, renderStatusLine("Resolution", statusInfo, result.Geometry.String(), colorize))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Image path (default: <video>_preview.png beside the input)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort frame extraction after this long (default from config)")
	return cmd
}
