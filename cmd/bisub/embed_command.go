package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"bisub/internal/fileutil"
	"bisub/internal/logging"
	"bisub/internal/preflight"
	"bisub/internal/render"
	"bisub/internal/services"
)

func newEmbedCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var retryEmpty bool
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "embed <video> <subtitles>",
		Short: "Burn styled subtitles into a copy of the video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.loggerFor(cmd)
			video, cuePath := args[0], args[1]
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			cues, err := loadCues(cuePath)
			if err != nil {
				return err
			}

			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = fileutil.SiblingPath(video, cfg.Render.OutputSuffix, ".mp4")
			}
			if failed := preflight.Failed(preflight.CheckOutputDir(video, output)); len(failed) > 0 {
				return services.Wrap(services.ErrValidation, "embed", failed[0].Name, failed[0].Detail, nil)
			}

			opts := []render.Option{}
			if store := ctx.historyStore(cmd.Context(), logger); store != nil {
				opts = append(opts, render.WithRecorder(store))
			}
			manager, err := render.NewManager(cfg, logger, opts...)
			if err != nil {
				return err
			}

			req := render.Request{Video: video, Cues: cues, CuePath: cuePath, Output: output}
			started := time.Now()
			err = runEmbed(cmd, manager, req, !noProgress && colorize, logger)
			if err != nil && retryEmpty && services.IsRetryable(err) {
				fmt.Fprintln(out, renderStatusLine("Retry", statusWarn, "output was empty; rendering once more", colorize))
				err = runEmbed(cmd, manager, req, !noProgress && colorize, logger)
			}
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Render", statusError, services.Hint(err), colorize))
				return err
			}

			size, _ := fileutil.Size(output)
			fmt.Fprintln(out, renderStatusLine("Output", statusOK, output, colorize))
			fmt.Fprintln(out, renderStatusLine("Size", statusInfo, humanize.Bytes(uint64(size)), colorize))
			fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, time.Since(started).Round(time.Second).String(), colorize))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: <video><suffix>.mp4 beside the input)")
	cmd.Flags().BoolVar(&retryEmpty, "retry-empty", false, "Render once more when ffmpeg exits cleanly without output")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the interactive progress bar")
	return cmd
}

// runEmbed renders one job, drawing a progress bar on terminals and sampled
// progress lines elsewhere.
func runEmbed(cmd *cobra.Command, manager *render.Manager, req render.Request, interactive bool, logger *slog.Logger) error {
	out := cmd.OutOrStdout()
	reporter := newProgressReporter(out, interactive)
	cb := render.Callbacks{
		OnProgress: reporter.update,
		OnDone:     func(string) { reporter.finish() },
		OnError:    func(error) { reporter.abort() },
	}
	err := manager.Embed(cmd.Context(), req, cb)
	if err != nil && !errors.Is(err, services.ErrBusy) {
		logger.Debug("embed finished with error", logging.Error(err))
	}
	return err
}

type progressReporter struct {
	out     io.Writer
	bar     *progressbar.ProgressBar
	sampler *logging.ProgressSampler
}

func newProgressReporter(out io.Writer, interactive bool) *progressReporter {
	r := &progressReporter{out: out}
	if interactive {
		r.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("rendering"),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
		)
		return r
	}
	r.sampler = logging.NewProgressSampler(25)
	return r
}

func (r *progressReporter) update(percent int) {
	if r.bar != nil {
		_ = r.bar.Set(percent)
		return
	}
	if r.sampler.ShouldLog(percent) {
		fmt.Fprintf(r.out, "  progress: %d%%\n", percent)
	}
}

func (r *progressReporter) finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

func (r *progressReporter) abort() {
	if r.bar != nil {
		_ = r.bar.Exit()
		fmt.Fprintln(r.out)
	}
}
