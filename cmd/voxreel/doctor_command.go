package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voxreel/internal/deps"
	"voxreel/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories and the stock media provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			problems := 0

			var lines []string
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			for _, status := range preflight.CheckSystemDeps(cfg) {
				kind := checkKind(status.Available, status.Optional)
				if kind == statusError {
					problems++
				}
				lines = append(lines, renderStatusLine(status.Name, kind, dependencyDetail(status), colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("FFmpeg", colorize)...)
			if version, err := deps.FFmpegVersion(cmd.Context(), cfg.Render.FFmpegBinary); err != nil {
				lines = append(lines, renderStatusLine("Version", statusError, err.Error(), colorize))
				problems++
			} else {
				lines = append(lines, renderStatusLine("Version", statusInfo, version, colorize))
			}
			filter := preflight.CheckSubtitleFilter(cmd.Context(), cfg.Render.FFmpegBinary)
			if !filter.Passed {
				problems++
			}
			lines = append(lines, renderStatusLine(filter.Name, checkKind(filter.Passed, false), filter.Detail, colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			for _, dir := range []struct{ name, path string }{
				{"Output", cfg.Paths.OutputDir},
				{"Work", cfg.Paths.WorkDir},
				{"Media cache", cfg.Paths.CacheDir},
				{"Logs", cfg.Paths.LogDir},
			} {
				result := preflight.CheckDirectoryAccess(dir.name, dir.path)
				if !result.Passed {
					problems++
				}
				lines = append(lines, renderStatusLine(result.Name, checkKind(result.Passed, false), result.Detail, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Stock media", colorize)...)
			if offline {
				lines = append(lines, renderStatusLine("Pexels", statusInfo, "skipped (offline)", colorize))
			} else {
				result := preflight.CheckPexelsFromConfig(cmd.Context(), cfg)
				lines = append(lines, renderStatusLine(result.Name, checkKind(result.Passed, true), result.Detail, colorize))
			}

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if problems > 0 {
				return fmt.Errorf("doctor found %d problem(s)", problems)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the network check against the stock media provider")
	return cmd
}

func dependencyDetail(status deps.Status) string {
	if status.Available {
		return fmt.Sprintf("%s (%s)", status.Path, status.Description)
	}
	detail := status.Detail
	if status.Optional {
		detail += " (optional)"
	}
	return detail
}
