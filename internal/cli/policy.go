package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "policies",
		Aliases: []string{"policy"},
		Short:   "Manage tagging policies",
	}
	cmd.AddCommand(newPolicyListCmd())
	return cmd
}

func newPolicyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tagging policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			policies, err := apiClient.Policies().List(cmd.Context())
			if err != nil {
				return err
			}
			if getOutputFormat() != "table" {
				return printOutput(policies)
			}

			t := NewTable("ID", "NAME", "SEVERITY", "ENABLED", "REQUIRED TAGS", "TYPES")
			for _, p := range policies {
				keys := make([]string, 0, len(p.RequiredTags))
				for k := range p.RequiredTags {
					keys = append(keys, k)
				}
				sort.Strings(keys)

				t.AddRow(
					strconv.FormatInt(p.ID, 10),
					p.Name,
					p.Severity,
					fmt.Sprintf("%t", p.Enabled),
					truncate(strings.Join(keys, ", "), 40),
					truncate(strings.Join(p.ResourceTypes, ", "), 40),
				)
			}
			t.Render()
			return nil
		},
	}
}
