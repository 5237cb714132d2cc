package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voxreel/internal/keywords"
)

func newKeywordsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:         "keywords TEXT",
		Short:       "Show the search keywords extracted from a script",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}
			text := strings.Join(args, " ")
			kw := keywords.Extract(text, limit)
			out := cmd.OutOrStdout()
			if len(kw) == 0 {
				fmt.Fprintf(out, "No keywords found; searches would use %q\n", strings.Join(keywords.ExtractOrFallback(text, limit), " "))
				return nil
			}
			fmt.Fprintln(out, strings.Join(kw, " "))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", keywords.DefaultMax, "Maximum number of keywords")
	return cmd
}
