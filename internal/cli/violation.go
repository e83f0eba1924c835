package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tagsentry/tagsentry/pkg/client"
)

func newViolationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "violations",
		Aliases: []string{"violation"},
		Short:   "Browse and manage tag policy violations",
	}
	cmd.AddCommand(newViolationListCmd())
	cmd.AddCommand(newViolationIgnoreCmd())
	cmd.AddCommand(newViolationReopenCmd())
	return cmd
}

func newViolationListCmd() *cobra.Command {
	var (
		accountID      int64
		status         string
		severity       string
		page, pageSize int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List violations",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Violations().List(cmd.Context(), &client.ViolationListOptions{
				ListOptions: client.ListOptions{Page: page, PageSize: pageSize},
				AccountID:   accountID,
				Status:      status,
				Severity:    severity,
			})
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			t := NewTable("ID", "RESOURCE", "POLICY", "STATUS", "SEVERITY", "PROBLEM")
			for _, v := range result.Data {
				t.AddRow(
					strconv.FormatInt(v.ID, 10),
					strconv.FormatInt(v.ResourceID, 10),
					strconv.FormatInt(v.PolicyID, 10),
					formatStatus(v.Status),
					v.Severity,
					truncate(describeDetails(v.Details), 60),
				)
			}
			t.Render()
			fmt.Printf("\nPage %d of %d (%d total)\n", result.Page, result.TotalPages, result.TotalItems)
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "filter by account ID")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (open, resolved, ignored)")
	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "items per page")
	return cmd
}

func newViolationIgnoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ignore <id>",
		Short: "Suppress a violation until explicitly reopened",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid violation id: %s", args[0])
			}
			if err := apiClient.Violations().Ignore(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Violation %d ignored\n", id)
			return nil
		},
	}
}

func newViolationReopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <id>",
		Short: "Return a violation to the open state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid violation id: %s", args[0])
			}
			if err := apiClient.Violations().Reopen(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Violation %d reopened\n", id)
			return nil
		},
	}
}

func describeDetails(d client.ViolationDetails) string {
	var parts []string
	if len(d.MissingTags) > 0 {
		parts = append(parts, "missing: "+strings.Join(d.MissingTags, ", "))
	}
	for key, detail := range d.InvalidTags {
		parts = append(parts, fmt.Sprintf("%s=%q not allowed", key, detail.Current))
	}
	return strings.Join(parts, "; ")
}
