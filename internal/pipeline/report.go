// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package pipeline

import (
	"time"

	"github.com/fugitivexyz/jira-bug-mointor/model"
)

const ReportVersion = "1.0"

type ReportFilters struct {
	Project string `json:"project,omitempty" yaml:"project,omitempty"`
	Sprint  string `json:"sprint,omitempty" yaml:"sprint,omitempty"`
}

type ReportBug struct {
	Key          string              `json:"key" yaml:"key"`
	Summary      string              `json:"summary" yaml:"summary"`
	Status       string              `json:"status" yaml:"status"`
	Priority     string              `json:"priority" yaml:"priority"`
	Assignee     string              `json:"assignee" yaml:"assignee"`
	Sprint       string              `json:"sprint" yaml:"sprint"`
	Created      time.Time           `json:"created" yaml:"created"`
	Updated      time.Time           `json:"updated" yaml:"updated"`
	LinkedIssues []model.LinkedIssue `json:"linkedIssues" yaml:"linkedIssues"`
}

type ReportIssue struct {
	Key     string `json:"key" yaml:"key"`
	Summary string `json:"summary" yaml:"summary"`
	Status  string `json:"status" yaml:"status"`
}

type ReportSprint struct {
	Name       string        `json:"name" yaml:"name"`
	IssueCount int           `json:"issueCount" yaml:"issueCount"`
	Issues     []ReportIssue `json:"issues" yaml:"issues"`
}

type ReportMetrics struct {
	TotalBugs  int               `json:"totalBugs" yaml:"totalBugs"`
	ByPriority []model.NameValue `json:"byPriority" yaml:"byPriority"`
	ByStatus   []model.NameValue `json:"byStatus" yaml:"byStatus"`
	BySprint   []model.NameValue `json:"bySprint" yaml:"bySprint"`
}

// Report is the exportable snapshot of a filtered bug list.
type Report struct {
	Version     string         `json:"version" yaml:"version"`
	GeneratedAt time.Time      `json:"generatedAt" yaml:"generatedAt"`
	Filters     ReportFilters  `json:"filters" yaml:"filters"`
	Bugs        []ReportBug    `json:"bugs" yaml:"bugs"`
	Sprints     []ReportSprint `json:"sprints" yaml:"sprints"`
	Metrics     ReportMetrics  `json:"metrics" yaml:"metrics"`
}

// GenerateReport builds a report over the bugs matching the filters.
func GenerateReport(bugs []model.Bug, filters ReportFilters, now time.Time) *Report {
	selected := FilterBugs(bugs, filters.Project, filters.Sprint)

	report := &Report{
		Version:     ReportVersion,
		GeneratedAt: now.UTC(),
		Filters:     filters,
		Bugs:        make([]ReportBug, 0, len(selected)),
		Sprints:     []ReportSprint{},
		Metrics: ReportMetrics{
			TotalBugs:  len(selected),
			ByPriority: countBy(selected, func(b *model.Bug) string { return b.Priority }),
			ByStatus:   countBy(selected, func(b *model.Bug) string { return b.Status }),
			BySprint:   countBy(selected, func(b *model.Bug) string { return b.SprintName }),
		},
	}

	sprintIndex := make(map[string]int)
	for i := range selected {
		bug := &selected[i]
		report.Bugs = append(report.Bugs, ReportBug{
			Key:          bug.Key,
			Summary:      bug.Summary,
			Status:       bug.Status,
			Priority:     bug.Priority,
			Assignee:     bug.Assignee.DisplayName(),
			Sprint:       bug.SprintName,
			Created:      bug.Created,
			Updated:      bug.Updated,
			LinkedIssues: bug.LinkedIssues,
		})

		pos, ok := sprintIndex[bug.SprintName]
		if !ok {
			pos = len(report.Sprints)
			sprintIndex[bug.SprintName] = pos
			report.Sprints = append(report.Sprints, ReportSprint{Name: bug.SprintName, Issues: []ReportIssue{}})
		}
		sprint := &report.Sprints[pos]
		sprint.IssueCount++
		sprint.Issues = append(sprint.Issues, ReportIssue{Key: bug.Key, Summary: bug.Summary, Status: bug.Status})
	}

	return report
}

func countBy(bugs []model.Bug, key func(*model.Bug) string) []model.NameValue {
	index := make(map[string]int)
	out := []model.NameValue{}
	for i := range bugs {
		k := key(&bugs[i])
		if pos, ok := index[k]; ok {
			out[pos].Value++
			continue
		}
		index[k] = len(out)
		out = append(out, model.NameValue{Name: k, Value: 1})
	}
	return out
}
