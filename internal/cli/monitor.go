// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package cli

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fugitivexyz/jira-bug-mointor/internal/relay"
	"github.com/fugitivexyz/jira-bug-mointor/metrics"
	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/mattermost/mattermost-server/v6/shared/mlog"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

const refreshTaskName = "dashboard_refresh"

// monitor refreshes the dashboard on a schedule and keeps the latest one.
type monitor struct {
	app    *app
	client *relay.Client
	opts   dashboardOptions
	file   string

	mu     sync.Mutex
	latest *model.Dashboard
}

func (m *monitor) refresh(ctx context.Context) error {
	start := time.Now()
	dashboard, err := m.app.buildDashboard(ctx, m.client, m.opts)
	m.app.metrics.ObserveCronTaskDuration(refreshTaskName, time.Since(start).Seconds())
	if err != nil {
		m.app.metrics.IncreaseCronTaskErrors(refreshTaskName)
		mlog.Error("Dashboard refresh failed", mlog.Err(err))
		return err
	}

	m.mu.Lock()
	m.latest = dashboard
	m.mu.Unlock()

	mlog.Info("Dashboard refreshed",
		mlog.Int("bugs", dashboard.Metrics.TotalBugs),
		mlog.Int("active", dashboard.Metrics.ActiveBugs),
		mlog.Int("critical", dashboard.Metrics.CriticalBugs))

	if m.file != "" {
		if err := writeDashboardFile(m.file, dashboard); err != nil {
			m.app.metrics.IncreaseCronTaskErrors(refreshTaskName)
			mlog.Error("Unable to write dashboard", mlog.String("file", m.file), mlog.Err(err))
			return err
		}
	}
	return nil
}

func (m *monitor) Latest() *model.Dashboard {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest
}

func writeDashboardFile(path string, dashboard *model.Dashboard) error {
	data, err := dashboard.ToJSON()
	if err != nil {
		return errors.Wrap(err, "unable to encode dashboard")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(data), 0600); err != nil {
		return errors.Wrap(err, "unable to write dashboard")
	}
	return errors.Wrap(os.Rename(tmp, path), "unable to replace dashboard")
}

func (a *app) newMonitorCmd() *cobra.Command {
	var (
		opts dashboardOptions
		file string
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Refresh the dashboard on a schedule",
		Long: "monitor rebuilds the dashboard on the cron schedule (default every five\n" +
			"minutes), optionally writing it to a file and exposing Prometheus metrics.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.loggedInClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			m := &monitor{app: a, client: client, opts: opts, file: file}
			c := cron.New()
			if _, err := c.AddFunc(a.v.GetString(keySchedule), func() { _ = m.refresh(ctx) }); err != nil {
				return errors.Wrapf(err, "invalid schedule %q", a.v.GetString(keySchedule))
			}

			if port := a.v.GetString(keyMetricsPort); port != "" {
				metricsServer := metrics.NewServer(port, a.metrics.Handler(), false)
				metricsServer.Start()
				defer metricsServer.Stop()
			}

			// first refresh happens immediately, failures are retried on schedule
			_ = m.refresh(ctx)

			c.Start()
			mlog.Info("Monitoring started", mlog.String("schedule", a.v.GetString(keySchedule)))
			<-ctx.Done()
			<-c.Stop().Done()
			mlog.Info("Monitoring stopped")
			return nil
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "write every refreshed dashboard to this file")
	cmd.Flags().String(keySchedule, defaultSchedule, "cron schedule of the refresh")
	cmd.Flags().String(keyMetricsPort, "", "serve Prometheus metrics on this port")
	_ = a.v.BindPFlag(keySchedule, cmd.Flags().Lookup(keySchedule))
	_ = a.v.BindPFlag(keyMetricsPort, cmd.Flags().Lookup(keyMetricsPort))
	return cmd
}
