// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func (a *app) newIssueTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issue-types <project-key>",
		Short: "List the issue types of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.loggedInClient()
			if err != nil {
				return err
			}
			types, err := client.IssueTypes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.v.GetString(keyOutput), types, func(w io.Writer) error {
				printf(w, "ID\tNAME\tSUBTASK\n")
				for _, t := range types {
					printf(w, "%s\t%s\t%t\n", t.ID, t.Name, t.Subtask)
				}
				return nil
			})
		},
	}
}
