package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage cloud accounts",
	}
	cmd.AddCommand(newAccountListCmd())
	return cmd
}

func newAccountListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List connected cloud accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := apiClient.Accounts().List(cmd.Context(), "", status)
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(accounts)
			}

			t := NewTable("ID", "NAME", "PROVIDER", "STATUS", "LAST SCANNED")
			for _, acct := range accounts {
				lastScanned := "never"
				if acct.LastScannedAt != nil {
					lastScanned = acct.LastScannedAt.Format(time.RFC3339)
				}
				t.AddRow(
					strconv.FormatInt(acct.ID, 10),
					acct.Name,
					acct.Provider,
					formatStatus(acct.Status),
					lastScanned,
				)
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	return cmd
}
