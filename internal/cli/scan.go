package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tagsentry/tagsentry/pkg/client"
)

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Manage compliance scans",
	}
	cmd.AddCommand(newScanStartCmd())
	cmd.AddCommand(newScanStatusCmd())
	cmd.AddCommand(newScanListCmd())
	return cmd
}

func newScanStartCmd() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "start <account-id>",
		Short: "Start a compliance scan for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id: %s", args[0])
			}

			job, err := apiClient.Scans().Start(cmd.Context(), accountID)
			if err != nil {
				return err
			}
			fmt.Printf("Scan started: %s\n", job.ID)

			if !wait {
				return nil
			}
			for !isTerminal(job.Status) {
				time.Sleep(2 * time.Second)
				job, err = apiClient.Scans().Get(cmd.Context(), job.ID)
				if err != nil {
					return err
				}
			}
			printJob(job)
			if job.Status == "failed" {
				return fmt.Errorf("scan failed: %s", job.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the scan finishes")
	return cmd
}

func newScanStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of a scan job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := apiClient.Scans().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(job)
			}
			printJob(job)
			return nil
		},
	}
}

func newScanListCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list <account-id>",
		Short: "List scan jobs for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id: %s", args[0])
			}

			result, err := apiClient.Scans().ListByAccount(cmd.Context(), accountID,
				&client.ListOptions{Page: page, PageSize: pageSize})
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			t := NewTable("ID", "STATUS", "RESOURCES", "VIOLATIONS", "RESOLVED", "CREATED")
			for _, job := range result.Data {
				t.AddRow(
					truncate(job.ID, 12),
					formatStatus(job.Status),
					strconv.Itoa(job.ResourcesScanned),
					strconv.Itoa(job.ViolationsFound),
					strconv.Itoa(job.ViolationsResolved),
					job.CreatedAt.Format(time.RFC3339),
				)
			}
			t.Render()
			fmt.Printf("\nPage %d of %d (%d total)\n", result.Page, result.TotalPages, result.TotalItems)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "items per page")
	return cmd
}

func printJob(job *client.ScanJob) {
	t := NewTable("FIELD", "VALUE")
	t.AddRow("ID", job.ID)
	t.AddRow("Account", strconv.FormatInt(job.AccountID, 10))
	t.AddRow("Status", formatStatus(job.Status))
	t.AddRow("Resources scanned", strconv.Itoa(job.ResourcesScanned))
	t.AddRow("Violations found", strconv.Itoa(job.ViolationsFound))
	t.AddRow("Violations resolved", strconv.Itoa(job.ViolationsResolved))
	if job.Error != "" {
		t.AddRow("Error", job.Error)
	}
	t.Render()
}

func isTerminal(status string) bool {
	return status == "success" || status == "failed"
}
