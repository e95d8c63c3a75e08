package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mktrend/internal/files"
)

var (
	reportsSince time.Duration
	reportsJSON  bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List the trend reports written to the reports directory",
	Args:  cobra.NoArgs,
	RunE:  runReports,
}

func init() {
	reportsCmd.Flags().DurationVar(&reportsSince, "since", 0, "only reports modified within this duration, e.g. 72h")
	reportsCmd.Flags().BoolVar(&reportsJSON, "json", false, "print the list as JSON")
}

func runReports(cmd *cobra.Command, args []string) error {
	paths, err := cfg.Paths.Resolve()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	reports, err := files.NewDiscovery(paths.BaseDir).FindReports(paths.ReportsDir)
	if err != nil {
		return err
	}
	if reportsSince > 0 {
		reports = files.FilterFilesByDateRange(reports, time.Now().Add(-reportsSince), time.Time{})
	}

	out := cmd.OutOrStdout()
	if reportsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if reports == nil {
			reports = []files.FileInfo{}
		}
		return enc.Encode(reports)
	}

	if len(reports) == 0 {
		fmt.Fprintf(out, "No reports in %s\n", paths.ReportsDir)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFORMAT\tSIZE\tMODIFIED")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Name, r.Format, r.Size, r.ModTime.Format(time.DateTime))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	latest, _ := files.GetLatestFile(reports)
	fmt.Fprintf(out, "\n%d reports in %s, latest %s\n", len(reports), paths.ReportsDir, latest.Name)
	return nil
}
