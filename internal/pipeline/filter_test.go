// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package pipeline

import (
	"testing"
	"time"

	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForProject(t *testing.T) {
	bugs := []model.Bug{
		bug("Open", "High", "WEB", 0),
		bug("Done", "Low", "API", 48*time.Hour),
		bug("Open", "Low", "WEB", 0),
	}
	dashboard := &model.Dashboard{
		Projects:    DistinctProjects(bugs),
		Bugs:        bugs,
		Metrics:     Aggregate(bugs),
		CurrentUser: &model.UserProfile{DisplayName: "Jane"},
	}

	t.Run("Should recompute metrics for the selected project", func(t *testing.T) {
		scoped := ForProject(dashboard, "API")
		require.Len(t, scoped.Bugs, 1)
		assert.Equal(t, 1, scoped.Metrics.TotalBugs)
		assert.Equal(t, 0, scoped.Metrics.ActiveBugs)
		assert.Equal(t, 2, scoped.Metrics.AvgResolutionTime)
		assert.Equal(t, []string{"WEB", "API"}, scoped.Projects)
		assert.Equal(t, "Jane", scoped.CurrentUser.DisplayName)
	})

	t.Run("Should keep every bug without a project", func(t *testing.T) {
		scoped := ForProject(dashboard, "")
		assert.Len(t, scoped.Bugs, 3)
		assert.Equal(t, dashboard.Metrics, scoped.Metrics)
	})
}

func TestLinkedBySprint(t *testing.T) {
	day := func(n int) time.Time { return created.Add(time.Duration(n) * 24 * time.Hour) }
	bugs := []model.Bug{
		{Key: "BUG-1", LinkedIssues: []model.LinkedIssue{
			{Key: "A-1", SprintName: "Sprint 2", Updated: day(1)},
			{Key: "A-2", SprintName: "Backlog", Updated: day(2)},
			{Key: "A-3", SprintName: "", Updated: day(5)},
		}},
		{Key: "BUG-2", LinkedIssues: []model.LinkedIssue{
			{Key: "A-4", SprintName: "Sprint 2", Updated: day(3)},
			{Key: "A-5", SprintName: "Sprint 1", Updated: day(1)},
		}},
		{Key: "BUG-3", LinkedIssues: []model.LinkedIssue{}},
	}

	groups := LinkedBySprint(bugs)
	require.Len(t, groups, 3)
	assert.Equal(t, "Sprint 1", groups[0].Name)
	assert.Equal(t, "Sprint 2", groups[1].Name)
	assert.Equal(t, "Backlog", groups[2].Name)

	require.Len(t, groups[1].Entries, 2)
	assert.Equal(t, "A-4", groups[1].Entries[0].Issue.Key)
	assert.Equal(t, "BUG-2", groups[1].Entries[0].FromBug)
	assert.Equal(t, "A-1", groups[1].Entries[1].Issue.Key)

	require.Len(t, groups[2].Entries, 2)
	assert.Equal(t, "A-3", groups[2].Entries[0].Issue.Key)
	assert.Equal(t, "A-2", groups[2].Entries[1].Issue.Key)

	assert.Empty(t, LinkedBySprint(nil))
}
