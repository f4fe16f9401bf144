// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package pipeline

import (
	"sort"

	"github.com/fugitivexyz/jira-bug-mointor/model"
)

// ForProject scopes a dashboard to one project key and recomputes its
// metrics. The project list is kept whole so callers can switch scope.
// An empty key keeps every bug.
func ForProject(d *model.Dashboard, projectKey string) *model.Dashboard {
	bugs := FilterBugs(d.Bugs, projectKey, "")
	return &model.Dashboard{
		Projects:    d.Projects,
		Bugs:        bugs,
		Metrics:     Aggregate(bugs),
		CurrentUser: d.CurrentUser,
	}
}

// FilterBugs keeps bugs matching a project key and a sprint name. Empty
// values match everything.
func FilterBugs(bugs []model.Bug, projectKey, sprintName string) []model.Bug {
	out := make([]model.Bug, 0, len(bugs))
	for i := range bugs {
		if projectKey != "" && bugs[i].ProjectKey != projectKey {
			continue
		}
		if sprintName != "" && bugs[i].SprintName != sprintName {
			continue
		}
		out = append(out, bugs[i])
	}
	return out
}

type LinkedEntry struct {
	Issue   model.LinkedIssue `json:"linkedIssue" yaml:"linkedIssue"`
	FromBug string            `json:"fromBug" yaml:"fromBug"`
}

type SprintGroup struct {
	Name    string        `json:"name" yaml:"name"`
	Entries []LinkedEntry `json:"entries" yaml:"entries"`
}

// LinkedBySprint groups every linked issue of the bugs by sprint. Entries
// are most recently updated first; groups are sorted by name with the
// backlog last.
func LinkedBySprint(bugs []model.Bug) []SprintGroup {
	groups := make(map[string][]LinkedEntry)
	for i := range bugs {
		for _, linked := range bugs[i].LinkedIssues {
			name := linked.SprintName
			if name == "" {
				name = model.DefaultSprintName
			}
			groups[name] = append(groups[name], LinkedEntry{Issue: linked, FromBug: bugs[i].Key})
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == model.DefaultSprintName {
			return false
		}
		if names[j] == model.DefaultSprintName {
			return true
		}
		return names[i] < names[j]
	})

	out := make([]SprintGroup, 0, len(names))
	for _, name := range names {
		entries := groups[name]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Issue.Updated.After(entries[j].Issue.Updated)
		})
		out = append(out, SprintGroup{Name: name, Entries: entries})
	}
	return out
}
