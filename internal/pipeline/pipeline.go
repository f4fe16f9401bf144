// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

// Package pipeline turns raw Jira search results into the dashboard view
// model: normalized bugs, expanded linked issues and aggregate metrics.
package pipeline

import (
	"context"
	"fmt"

	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/mattermost/mattermost-server/v6/shared/mlog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultIssueType   = "Bug"
	DefaultConcurrency = 8
)

// SearchFields is the field list requested for dashboard searches.
var SearchFields = []string{
	"summary",
	"description",
	"status",
	"priority",
	"created",
	"updated",
	"project",
	model.FieldSprint,
	model.FieldTeam,
	"assignee",
	"reporter",
	"issuelinks",
	"issuetype",
}

// Expander fetches the full record of one issue by key.
type Expander interface {
	Get(ctx context.Context, key string) (*model.RawIssue, error)
}

// ExpanderFunc adapts a function to an Expander.
type ExpanderFunc func(ctx context.Context, key string) (*model.RawIssue, error)

func (f ExpanderFunc) Get(ctx context.Context, key string) (*model.RawIssue, error) {
	return f(ctx, key)
}

// Searcher runs the initial issue search.
type Searcher interface {
	Search(ctx context.Context, jql string, fields []string) ([]model.RawIssue, error)
}

// Profiler resolves the authenticated user. Searchers that implement it
// get the current user attached to the dashboard.
type Profiler interface {
	WhoAmI(ctx context.Context) (*model.UserProfile, error)
}

type Option func(*Pipeline)

// WithConcurrency bounds how many bugs and, per bug, how many links are
// expanded at once.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithExpansionObserver registers a hook called for every dropped link.
func WithExpansionObserver(fn func(key string, err error)) Option {
	return func(p *Pipeline) {
		p.observer = fn
	}
}

type Pipeline struct {
	expander    Expander
	concurrency int
	observer    func(key string, err error)
}

func New(expander Expander, opts ...Option) *Pipeline {
	p := &Pipeline{
		expander:    expander,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// QueryForIssueType returns the dashboard JQL for one issue type.
func QueryForIssueType(issueType string) string {
	if issueType == "" {
		issueType = DefaultIssueType
	}
	return fmt.Sprintf("type = %q ORDER BY created DESC", issueType)
}

// Build searches, normalizes the results and attaches the current user.
// A failed search returns the error and no dashboard.
func (p *Pipeline) Build(ctx context.Context, searcher Searcher, jql string) (*model.Dashboard, error) {
	issues, err := searcher.Search(ctx, jql, SearchFields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch Jira data")
	}

	dashboard := p.Normalize(ctx, issues)

	if profiler, ok := searcher.(Profiler); ok {
		user, err := profiler.WhoAmI(ctx)
		if err != nil {
			mlog.Warn("Unable to resolve current user", mlog.Err(err))
		} else {
			dashboard.CurrentUser = user
		}
	}

	return dashboard, nil
}

// Normalize maps every raw issue to a Bug, in input order, and computes the
// aggregates once all bugs are assembled.
func (p *Pipeline) Normalize(ctx context.Context, issues []model.RawIssue) *model.Dashboard {
	bugs := make([]model.Bug, len(issues))
	flight := newFetchGroup(p.expander)

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i := range issues {
		i := i
		g.Go(func() error {
			linked := p.expandLinks(ctx, flight, issues[i].Fields.IssueLinks)
			bugs[i] = mapBug(&issues[i], linked)
			return nil
		})
	}
	_ = g.Wait()

	return &model.Dashboard{
		Projects: DistinctProjects(bugs),
		Bugs:     bugs,
		Metrics:  Aggregate(bugs),
	}
}
