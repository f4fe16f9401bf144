// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package cli

import (
	"io"
	"os"
	"time"

	"github.com/fugitivexyz/jira-bug-mointor/internal/pipeline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) newReportCmd() *cobra.Command {
	var (
		opts   dashboardOptions
		sprint string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export a bug report for a project and sprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.loggedInClient()
			if err != nil {
				return err
			}
			dashboard, err := a.buildDashboard(cmd.Context(), client, opts)
			if err != nil {
				return err
			}
			report := pipeline.GenerateReport(dashboard.Bugs, pipeline.ReportFilters{Project: opts.project, Sprint: sprint}, time.Now())

			out := cmd.OutOrStdout()
			if file != "" {
				f, err := os.Create(file)
				if err != nil {
					return errors.Wrap(err, "unable to create report file")
				}
				defer f.Close()
				out = f
			}

			format := a.v.GetString(keyOutput)
			if format == formatText {
				format = formatJSON
			}
			if err := render(out, format, report, func(io.Writer) error { return nil }); err != nil {
				return err
			}
			if file != "" {
				printf(cmd.ErrOrStderr(), "Wrote %d bugs to %s\n", len(report.Bugs), file)
			}
			return nil
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&sprint, "sprint", "", "only keep bugs of this sprint")
	cmd.Flags().StringVarP(&file, "file", "f", "", "write the report to a file instead of stdout")
	return cmd
}
