// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/fugitivexyz/jira-bug-mointor/internal/pipeline"
	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/mattermost/mattermost-server/v6/shared/mlog"
)

const dashboardSource = "relay"

// jiraSource feeds the pipeline straight from the upstream client.
type jiraSource struct {
	client     JiraClient
	maxResults int
}

func (j *jiraSource) Search(ctx context.Context, jql string, fields []string) ([]model.RawIssue, error) {
	result, err := j.client.Search(ctx, model.SearchOptions{JQL: jql, Fields: fields, MaxResults: j.maxResults})
	if err != nil {
		return nil, err
	}
	return result.Issues, nil
}

func (j *jiraSource) Get(ctx context.Context, key string) (*model.RawIssue, error) {
	return j.client.GetIssue(ctx, key)
}

func (j *jiraSource) WhoAmI(ctx context.Context) (*model.UserProfile, error) {
	user, err := j.client.Myself(ctx, 3)
	if err != nil {
		return nil, err
	}
	return model.UserProfileFromRaw(user), nil
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	var req model.DashboardRequest
	if appErr := decodeBody(r, "dashboard", &req); appErr != nil {
		s.writeError(w, r, appErr)
		return
	}
	if appErr := s.checkCredentials("dashboard", &req.Credentials); appErr != nil {
		s.writeError(w, r, appErr)
		return
	}

	jql := req.JQL
	switch {
	case jql != "":
	case req.IssueType != "":
		jql = pipeline.QueryForIssueType(req.IssueType)
	default:
		jql = s.Config.DefaultJQL
	}

	source := &jiraSource{client: s.Jira(&req.Credentials), maxResults: s.Config.MaxResults}
	p := pipeline.New(source,
		pipeline.WithConcurrency(s.Config.ExpansionConcurrency),
		pipeline.WithExpansionObserver(func(key string, err error) {
			s.Metrics.IncreaseLinkExpansionFailures(dashboardSource)
		}),
	)

	start := time.Now()
	dashboard, err := p.Build(r.Context(), source, jql)
	s.Metrics.ObserveDashboardBuildDuration(dashboardSource, time.Since(start).Seconds())
	if err != nil {
		s.Metrics.IncreaseDashboardBuildErrors(dashboardSource)
		s.writeError(w, r, upstreamError("dashboard", err))
		return
	}

	if req.Project != "" {
		dashboard = pipeline.ForProject(dashboard, req.Project)
	}
	mlog.Debug("Built dashboard",
		mlog.String("request_id", requestID(r.Context())),
		mlog.Int("bugs", len(dashboard.Bugs)),
		mlog.Int("projects", len(dashboard.Projects)))
	s.writeJSON(w, r, http.StatusOK, dashboard)
}
