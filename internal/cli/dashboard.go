// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package cli

import (
	"context"
	"io"
	"time"

	"github.com/fugitivexyz/jira-bug-mointor/internal/pipeline"
	"github.com/fugitivexyz/jira-bug-mointor/internal/relay"
	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/mattermost/mattermost-server/v6/shared/mlog"
	"github.com/spf13/cobra"
)

const metricsSource = "cli"

type dashboardOptions struct {
	project    string
	issueType  string
	jql        string
	serverSide bool
}

func (o *dashboardOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.project, "project", "p", "", "only keep bugs of this project key")
	cmd.Flags().StringVarP(&o.issueType, "issue-type", "t", pipeline.DefaultIssueType, "issue type to search for")
	cmd.Flags().StringVar(&o.jql, "jql", "", "raw JQL, overrides --issue-type")
	cmd.Flags().BoolVar(&o.serverSide, "server-side", false, "let the relay build the dashboard")
}

func (o *dashboardOptions) query() string {
	if o.jql != "" {
		return o.jql
	}
	return pipeline.QueryForIssueType(o.issueType)
}

func (a *app) buildDashboard(ctx context.Context, client *relay.Client, opts dashboardOptions) (*model.Dashboard, error) {
	if opts.serverSide {
		return client.Dashboard(ctx, model.DashboardRequest{
			JQL:     opts.query(),
			Project: opts.project,
		})
	}

	p := pipeline.New(client,
		pipeline.WithConcurrency(a.v.GetInt(keyConcurrency)),
		pipeline.WithExpansionObserver(func(key string, err error) {
			a.metrics.IncreaseLinkExpansionFailures(metricsSource)
		}),
	)

	start := time.Now()
	dashboard, err := p.Build(ctx, client, opts.query())
	a.metrics.ObserveDashboardBuildDuration(metricsSource, time.Since(start).Seconds())
	if err != nil {
		a.metrics.IncreaseDashboardBuildErrors(metricsSource)
		return nil, err
	}
	mlog.Debug("Built dashboard", mlog.Int("bugs", len(dashboard.Bugs)), mlog.String("jql", opts.query()))

	if opts.project != "" {
		dashboard = pipeline.ForProject(dashboard, opts.project)
	}
	return dashboard, nil
}

func (a *app) newDashboardCmd() *cobra.Command {
	var opts dashboardOptions

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Fetch bugs with their linked issues and print the dashboard",
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
			return render(cmd.OutOrStdout(), a.v.GetString(keyOutput), dashboard, func(w io.Writer) error {
				writeDashboardText(w, dashboard)
				return nil
			})
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func writeDashboardText(w io.Writer, d *model.Dashboard) {
	m := d.Metrics
	if d.CurrentUser != nil {
		printf(w, "User:\t%s\n", d.CurrentUser.DisplayName)
	}
	printf(w, "Total bugs:\t%d\n", m.TotalBugs)
	printf(w, "Active bugs:\t%d\n", m.ActiveBugs)
	printf(w, "Critical bugs:\t%d\n", m.CriticalBugs)
	printf(w, "Avg resolution:\t%d days\n", m.AvgResolutionTime)
	for _, s := range m.StatusDistribution {
		printf(w, "  %s\t%d\n", s.Name, s.Value)
	}
	for _, p := range m.BugsByProject {
		printf(w, "  %s\t%d\n", p.Name, p.Bugs)
	}
	printf(w, "\nKEY\tSTATUS\tPRIORITY\tSPRINT\tASSIGNEE\tLINKED\tSUMMARY\n")
	for i := range d.Bugs {
		b := &d.Bugs[i]
		printf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			b.Key, b.Status, b.Priority, b.SprintName, b.Assignee.DisplayName(), len(b.LinkedIssues), b.Summary)
	}
}

func (a *app) newLinkedCmd() *cobra.Command {
	var opts dashboardOptions

	cmd := &cobra.Command{
		Use:   "linked",
		Short: "List the linked issues of the bugs grouped by sprint",
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
			groups := pipeline.LinkedBySprint(dashboard.Bugs)
			return render(cmd.OutOrStdout(), a.v.GetString(keyOutput), groups, func(w io.Writer) error {
				for _, g := range groups {
					printf(w, "%s (%d)\n", g.Name, len(g.Entries))
					for _, e := range g.Entries {
						printf(w, "  %s\t%s\t%s\t%s %s\n", e.Issue.Key, e.Issue.Status, e.Issue.Summary, e.Issue.LinkType, e.FromBug)
					}
				}
				return nil
			})
		},
	}
	opts.addFlags(cmd)
	return cmd
}
