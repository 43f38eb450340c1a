package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bisub/internal/deps"
	"bisub/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report ffmpeg/ffprobe availability and directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			lines := renderSectionHeader("Tools", colorize)
			lines = append(lines, dependencyLines(statuses, colorize)...)

			results := preflight.RunAll(cfg)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if !deps.AllAvailable(statuses) || len(preflight.Failed(results)) > 0 {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}

func dependencyLines(statuses []deps.Status, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	missing := make([]string, 0)
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			if dep.Version != "" {
				message += " " + dep.Version
			}
			kind := statusOK
			if dep.Detail != "" {
				kind = statusWarn
				message += " " + dep.Detail
			}
			lines = append(lines, renderStatusLine(dep.Name, kind, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing tools", statusWarn,
			fmt.Sprintf("%s (set [tools] in the config or BISUB_FFMPEG/BISUB_FFPROBE)", strings.Join(missing, ", ")), colorize))
	}
	return lines
}
