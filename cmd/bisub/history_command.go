package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bisub/internal/history"
)

type historyView struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	Status          string  `json:"status"`
	InputPath       string  `json:"input_path"`
	OutputPath      string  `json:"output_path"`
	ProgressPercent int     `json:"progress_percent"`
	Resolution      string  `json:"resolution,omitempty"`
	CueCount        int     `json:"cue_count"`
	OutputBytes     int64   `json:"output_bytes,omitempty"`
	ExitCode        int     `json:"exit_code"`
	Retryable       bool    `json:"retryable"`
	Error           string  `json:"error,omitempty"`
	CreatedAt       string  `json:"created_at"`
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent render and preview jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := ctx.historyStore(cmd.Context(), ctx.loggerFor(cmd))
			if store == nil {
				return fmt.Errorf("history database unavailable")
			}
			jobs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}

			now := time.Now()
			if jsonOutput {
				views := make([]historyView, 0, len(jobs))
				for _, job := range jobs {
					views = append(views, toHistoryView(job, now))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(jobs))
			for _, job := range jobs {
				rows = append(rows, historyRow(job, now))
			}
			headers := []string{"ID", "Kind", "Status", "Input", "Output", "Size", "Started", "Took"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight}
			fmt.Fprintln(out, renderTable("", headers, rows, aligns))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	return cmd
}

func historyRow(job history.Job, now time.Time) []string {
	status := string(job.Status)
	if job.Status == history.StatusRunning {
		status = fmt.Sprintf("%s %d%%", status, job.ProgressPercent)
	}
	if job.Status == history.StatusFailed && job.ExitCode > 0 {
		status = fmt.Sprintf("%s (exit %d)", status, job.ExitCode)
	}
	size := "-"
	if job.OutputBytes > 0 {
		size = humanize.Bytes(uint64(job.OutputBytes))
	}
	return []string{
		shortID(job.ID),
		string(job.Kind),
		status,
		filepath.Base(job.InputPath),
		filepath.Base(job.OutputPath),
		size,
		humanize.RelTime(job.CreatedAt, now, "ago", "from now"),
		job.Elapsed(now).Round(time.Second).String(),
	}
}

func toHistoryView(job history.Job, now time.Time) historyView {
	view := historyView{
		ID:              job.ID,
		Kind:            string(job.Kind),
		Status:          string(job.Status),
		InputPath:       job.InputPath,
		OutputPath:      job.OutputPath,
		ProgressPercent: job.ProgressPercent,
		CueCount:        job.CueCount,
		OutputBytes:     job.OutputBytes,
		ExitCode:        job.ExitCode,
		Retryable:       job.Retryable,
		Error:           job.ErrorMessage,
		CreatedAt:       job.CreatedAt.UTC().Format(time.RFC3339),
		ElapsedSeconds:  job.Elapsed(now).Seconds(),
	}
	if job.Width > 0 && job.Height > 0 {
		view.Resolution = strconv.Itoa(job.Width) + "x" + strconv.Itoa(job.Height)
	}
	return view
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
