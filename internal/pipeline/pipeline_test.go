// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTracker struct {
	mu        sync.Mutex
	issues    map[string]*model.RawIssue
	failing   map[string]bool
	calls     map[string]int
	search    []model.RawIssue
	searchErr error
	user      *model.UserProfile
	userErr   error
	lastJQL   string
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		issues:  map[string]*model.RawIssue{},
		failing: map[string]bool{},
		calls:   map[string]int{},
	}
}

func (f *fakeTracker) Get(_ context.Context, key string) (*model.RawIssue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	if f.failing[key] {
		return nil, errors.Errorf("failed to fetch issue %s", key)
	}
	issue, ok := f.issues[key]
	if !ok {
		return nil, errors.Errorf("issue %s not found", key)
	}
	return issue, nil
}

func (f *fakeTracker) Search(_ context.Context, jql string, _ []string) ([]model.RawIssue, error) {
	f.lastJQL = jql
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.search, nil
}

func (f *fakeTracker) WhoAmI(_ context.Context) (*model.UserProfile, error) {
	return f.user, f.userErr
}

func rawIssue(key, status, project string, links ...model.RawIssueLink) model.RawIssue {
	return model.RawIssue{
		Key: key,
		Fields: model.RawFields{
			Summary:    "Summary of " + key,
			Status:     &model.RawNamed{Name: status},
			Priority:   &model.RawNamed{Name: "Medium"},
			Created:    "2024-01-01T10:00:00.000+0000",
			Updated:    "2024-01-03T10:00:00.000+0000",
			Project:    &model.RawProject{Key: project, Name: project + " Project"},
			IssueLinks: links,
		},
	}
}

func inward(key string) model.RawIssueLink {
	return model.RawIssueLink{
		Type:        model.RawLinkType{Name: "Blocks", Inward: "is blocked by", Outward: "blocks"},
		InwardIssue: &model.RawIssueRef{Key: key},
	}
}

func outward(key string) model.RawIssueLink {
	return model.RawIssueLink{
		Type:         model.RawLinkType{Name: "Blocks", Inward: "is blocked by", Outward: "blocks"},
		OutwardIssue: &model.RawIssueRef{Key: key},
	}
}

func TestNormalize(t *testing.T) {
	tracker := newFakeTracker()
	for _, key := range []string{"DEP-1", "DEP-2", "DEP-3"} {
		issue := rawIssue(key, "In Progress", "DEP")
		tracker.issues[key] = &issue
	}
	p := New(tracker, WithConcurrency(2))

	t.Run("Should keep one bug per input issue in order", func(t *testing.T) {
		issues := []model.RawIssue{
			rawIssue("BUG-3", "Open", "WEB"),
			rawIssue("BUG-1", "Done", "API"),
			rawIssue("BUG-2", "Open", "WEB"),
		}
		dashboard := p.Normalize(context.Background(), issues)
		require.Len(t, dashboard.Bugs, 3)
		assert.Equal(t, "BUG-3", dashboard.Bugs[0].Key)
		assert.Equal(t, "BUG-1", dashboard.Bugs[1].Key)
		assert.Equal(t, "BUG-2", dashboard.Bugs[2].Key)
		assert.Equal(t, []string{"WEB", "API"}, dashboard.Projects)
		assert.Equal(t, 3, dashboard.Metrics.TotalBugs)
	})

	t.Run("Should keep average resolution time sane with a malformed timestamp", func(t *testing.T) {
		broken := rawIssue("BUG-1", "Done", "WEB")
		broken.Fields.Created = "garbage"
		dashboard := p.Normalize(context.Background(), []model.RawIssue{broken, rawIssue("BUG-2", "Done", "WEB")})

		assert.True(t, dashboard.Bugs[0].Created.IsZero())
		assert.Equal(t, 2, dashboard.Metrics.AvgResolutionTime)
	})

	t.Run("Should return an empty linked issue list when there are no links", func(t *testing.T) {
		dashboard := p.Normalize(context.Background(), []model.RawIssue{rawIssue("BUG-1", "Open", "WEB")})
		require.NotNil(t, dashboard.Bugs[0].LinkedIssues)
		require.Empty(t, dashboard.Bugs[0].LinkedIssues)

		js, err := dashboard.Bugs[0].ToJSON()
		require.NoError(t, err)
		assert.Contains(t, js, `"linkedIssues":[]`)
	})

	t.Run("Should resolve link direction per link", func(t *testing.T) {
		issues := []model.RawIssue{rawIssue("BUG-1", "Open", "WEB", inward("DEP-1"), outward("DEP-2"))}
		dashboard := p.Normalize(context.Background(), issues)
		linked := dashboard.Bugs[0].LinkedIssues
		require.Len(t, linked, 2)
		assert.Equal(t, "DEP-1", linked[0].Key)
		assert.Equal(t, "is blocked by", linked[0].LinkType)
		assert.Equal(t, "DEP-2", linked[1].Key)
		assert.Equal(t, "blocks", linked[1].LinkType)
		assert.Equal(t, "In Progress", linked[0].Status)
	})

	t.Run("Should drop only the link whose expansion fails", func(t *testing.T) {
		tracker.failing["DEP-2"] = true
		defer delete(tracker.failing, "DEP-2")

		var dropped int32
		p := New(tracker, WithExpansionObserver(func(key string, err error) {
			assert.Equal(t, "DEP-2", key)
			assert.Error(t, err)
			atomic.AddInt32(&dropped, 1)
		}))
		issues := []model.RawIssue{rawIssue("BUG-1", "Open", "WEB", inward("DEP-1"), outward("DEP-2"), outward("DEP-3"))}
		dashboard := p.Normalize(context.Background(), issues)
		linked := dashboard.Bugs[0].LinkedIssues
		require.Len(t, linked, 2)
		assert.Equal(t, "DEP-1", linked[0].Key)
		assert.Equal(t, "DEP-3", linked[1].Key)
		assert.Equal(t, int32(1), atomic.LoadInt32(&dropped))
	})

	t.Run("Should skip links without a referenced issue", func(t *testing.T) {
		broken := model.RawIssueLink{Type: model.RawLinkType{Inward: "relates to", Outward: "relates to"}}
		dashboard := p.Normalize(context.Background(), []model.RawIssue{rawIssue("BUG-1", "Open", "WEB", broken, inward("DEP-3"))})
		require.Len(t, dashboard.Bugs[0].LinkedIssues, 1)
		assert.Equal(t, "DEP-3", dashboard.Bugs[0].LinkedIssues[0].Key)
	})

	t.Run("Should return an empty dashboard for no issues", func(t *testing.T) {
		dashboard := p.Normalize(context.Background(), nil)
		require.NotNil(t, dashboard.Bugs)
		require.Empty(t, dashboard.Bugs)
		require.Empty(t, dashboard.Projects)
		assert.Equal(t, 0, dashboard.Metrics.AvgResolutionTime)
	})
}

func TestResolveLink(t *testing.T) {
	t.Run("Should use the inward label for an inward reference", func(t *testing.T) {
		key, label, ok := ResolveLink(inward("A-1"))
		require.True(t, ok)
		assert.Equal(t, "A-1", key)
		assert.Equal(t, "is blocked by", label)
	})

	t.Run("Should use the outward label for an outward reference", func(t *testing.T) {
		key, label, ok := ResolveLink(outward("A-2"))
		require.True(t, ok)
		assert.Equal(t, "A-2", key)
		assert.Equal(t, "blocks", label)
	})

	t.Run("Should report links without references", func(t *testing.T) {
		_, _, ok := ResolveLink(model.RawIssueLink{})
		assert.False(t, ok)
	})
}

func TestBuild(t *testing.T) {
	t.Run("Should report a single error when the search fails", func(t *testing.T) {
		tracker := newFakeTracker()
		tracker.searchErr = errors.New("Jira API error: 401 Unauthorized")
		dashboard, err := New(tracker).Build(context.Background(), tracker, QueryForIssueType(""))
		require.Error(t, err)
		assert.Nil(t, dashboard)
		assert.Contains(t, err.Error(), "failed to fetch Jira data")
		assert.Contains(t, err.Error(), "401 Unauthorized")
	})

	t.Run("Should attach the current user", func(t *testing.T) {
		tracker := newFakeTracker()
		tracker.search = []model.RawIssue{rawIssue("BUG-1", "Open", "WEB")}
		tracker.user = &model.UserProfile{DisplayName: "Jane Doe", Email: "jane@example.com"}
		dashboard, err := New(tracker).Build(context.Background(), tracker, QueryForIssueType("Story"))
		require.NoError(t, err)
		require.Len(t, dashboard.Bugs, 1)
		require.NotNil(t, dashboard.CurrentUser)
		assert.Equal(t, "Jane Doe", dashboard.CurrentUser.DisplayName)
		assert.Equal(t, `type = "Story" ORDER BY created DESC`, tracker.lastJQL)
	})

	t.Run("Should absorb a failed user lookup", func(t *testing.T) {
		tracker := newFakeTracker()
		tracker.search = []model.RawIssue{rawIssue("BUG-1", "Open", "WEB")}
		tracker.userErr = errors.New("boom")
		dashboard, err := New(tracker).Build(context.Background(), tracker, QueryForIssueType(""))
		require.NoError(t, err)
		assert.Nil(t, dashboard.CurrentUser)
		assert.Equal(t, `type = "Bug" ORDER BY created DESC`, tracker.lastJQL)
	})
}
