package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bisub/internal/fileutil"
	"bisub/internal/logging"
	"bisub/internal/media/ffprobe"
	"bisub/internal/services"
	"bisub/internal/track"
)

func newTrackCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "track <video> <subtitles>",
		Short: "Write the styled ASS track without rendering",
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
			opts, err := track.OptionsFromConfig(cfg.Style)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = fileutil.SiblingPath(cuePath, "", track.Extension)
			}
			if samePath(target, cuePath) {
				return services.Wrap(services.ErrValidation, "track", "output", "track path would overwrite the subtitle file", nil)
			}
			geometry := ffprobe.ProbeGeometry(cmd.Context(), cfg.FFprobeBinary(), video, logger)
			built, err := track.BuildFile(target, cues, geometry, opts)
			if err != nil {
				return err
			}
			logger.Info("track written",
				logging.String(logging.FieldEventType, "track_written"),
				logging.String("track", target),
				logging.Int("events", len(built.Events)),
			)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Track", statusOK, target, colorize))
			fmt.Fprintln(out, renderStatusLine("Resolution", statusInfo, geometry.String(), colorize))
			fmt.Fprintln(out, renderStatusLine("Events", statusInfo, fmt.Sprintf("%d", len(built.Events)), colorize))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Track path (default: subtitles path with .ass)")
	return cmd
}
