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

var created = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func bug(status, priority, project string, resolvedAfter time.Duration) model.Bug {
	return model.Bug{
		Key:          project + "-" + status,
		Status:       status,
		Priority:     priority,
		ProjectKey:   project,
		ProjectName:  project + " Project",
		Created:      created,
		Updated:      created.Add(resolvedAfter),
		LinkedIssues: []model.LinkedIssue{},
	}
}

func TestAvgResolutionDays(t *testing.T) {
	tests := []struct {
		name     string
		bugs     []model.Bug
		expected int
	}{
		{
			name:     "no resolved bugs",
			bugs:     []model.Bug{bug("Open", "High", "WEB", 72*time.Hour)},
			expected: 0,
		},
		{
			name:     "empty list",
			bugs:     nil,
			expected: 0,
		},
		{
			name:     "created equals updated",
			bugs:     []model.Bug{bug("Done", "Low", "WEB", 0)},
			expected: 0,
		},
		{
			name:     "two day gap",
			bugs:     []model.Bug{bug("Done", "Low", "WEB", 48*time.Hour)},
			expected: 2,
		},
		{
			name: "rounds instead of truncating",
			bugs: []model.Bug{
				bug("Resolved", "Low", "WEB", 36*time.Hour),
				bug("Closed", "Low", "WEB", 48*time.Hour),
			},
			expected: 2,
		},
		{
			name: "rounds half days up",
			bugs: []model.Bug{
				bug("Closed", "Low", "WEB", 60*time.Hour),
			},
			expected: 3,
		},
		{
			name: "ignores bugs without timestamps",
			bugs: []model.Bug{
				bug("Done", "Low", "WEB", 24*time.Hour),
				{Key: "WEB-2", Status: "Done", Updated: created},
				{Key: "WEB-3", Status: "Closed", Created: created},
			},
			expected: 1,
		},
		{
			name:     "only bugs without timestamps",
			bugs:     []model.Bug{{Key: "WEB-4", Status: "Resolved"}},
			expected: 0,
		},
		{
			name: "ignores open bugs",
			bugs: []model.Bug{
				bug("Done", "Low", "WEB", 24*time.Hour),
				bug("Open", "Low", "WEB", 240*time.Hour),
			},
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AvgResolutionDays(tt.bugs))
		})
	}
}

func TestAggregate(t *testing.T) {
	bugs := []model.Bug{
		bug("Open", "Highest", "WEB", 0),
		bug("Open", "Low", "API", 0),
		bug("Done", "High", "WEB", 48*time.Hour),
		bug("Closed", "Medium", "API", 0),
		bug("Resolved", "Medium", "WEB", 0),
	}

	t.Run("Should count active and critical bugs", func(t *testing.T) {
		metrics := Aggregate(bugs)
		assert.Equal(t, 5, metrics.TotalBugs)
		// Resolved is not terminal for the active count.
		assert.Equal(t, 3, metrics.ActiveBugs)
		assert.Equal(t, 2, metrics.CriticalBugs)
		assert.Equal(t, 1, metrics.AvgResolutionTime)
	})

	t.Run("Should group status in first-seen order", func(t *testing.T) {
		got := StatusDistribution([]model.Bug{
			bug("Open", "Low", "WEB", 0),
			bug("Open", "Low", "WEB", 0),
			bug("Done", "Low", "WEB", 0),
		})
		assert.Equal(t, []model.NameValue{{Name: "Open", Value: 2}, {Name: "Done", Value: 1}}, got)
	})

	t.Run("Should group projects by name in first-seen order", func(t *testing.T) {
		got := BugsByProject(bugs)
		assert.Equal(t, []model.ProjectCount{{Name: "WEB Project", Bugs: 3}, {Name: "API Project", Bugs: 2}}, got)
	})

	t.Run("Should return empty trend and heatmap", func(t *testing.T) {
		metrics := Aggregate(bugs)
		require.NotNil(t, metrics.BugTrend)
		require.NotNil(t, metrics.BugHeatmap)
		assert.Empty(t, metrics.BugTrend)
		assert.Empty(t, metrics.BugHeatmap)
	})

	t.Run("Should list distinct project keys", func(t *testing.T) {
		assert.Equal(t, []string{"WEB", "API"}, DistinctProjects(bugs))
	})
}
