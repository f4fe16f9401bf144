// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package pipeline

import (
	"math"

	"github.com/fugitivexyz/jira-bug-mointor/model"
)

const millisPerDay = float64(24 * 60 * 60 * 1000)

// Aggregate computes every dashboard metric from scratch.
func Aggregate(bugs []model.Bug) model.DashboardMetrics {
	return model.DashboardMetrics{
		TotalBugs:          len(bugs),
		ActiveBugs:         CountActive(bugs),
		CriticalBugs:       CountCritical(bugs),
		AvgResolutionTime:  AvgResolutionDays(bugs),
		StatusDistribution: StatusDistribution(bugs),
		BugsByProject:      BugsByProject(bugs),
		BugTrend:           BugTrend(bugs),
		BugHeatmap:         BugHeatmap(bugs),
	}
}

func CountActive(bugs []model.Bug) int {
	n := 0
	for i := range bugs {
		if !bugs[i].IsTerminal() {
			n++
		}
	}
	return n
}

func CountCritical(bugs []model.Bug) int {
	n := 0
	for i := range bugs {
		if bugs[i].IsCritical() {
			n++
		}
	}
	return n
}

// AvgResolutionDays is the mean of updated minus created over resolved
// bugs, rounded to whole days. Bugs missing either timestamp are left out.
// It is 0 when nothing qualifies.
func AvgResolutionDays(bugs []model.Bug) int {
	var total int64
	resolved := 0
	for i := range bugs {
		if !bugs[i].IsResolved() || bugs[i].Created.IsZero() || bugs[i].Updated.IsZero() {
			continue
		}
		total += bugs[i].Updated.Sub(bugs[i].Created).Milliseconds()
		resolved++
	}
	if resolved == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(resolved) / millisPerDay))
}

// StatusDistribution counts bugs per status in first-seen order.
func StatusDistribution(bugs []model.Bug) []model.NameValue {
	return countBy(bugs, func(b *model.Bug) string { return b.Status })
}

// BugsByProject counts bugs per project name in first-seen order.
func BugsByProject(bugs []model.Bug) []model.ProjectCount {
	index := make(map[string]int)
	out := []model.ProjectCount{}
	for i := range bugs {
		name := bugs[i].ProjectName
		if pos, ok := index[name]; ok {
			out[pos].Bugs++
			continue
		}
		index[name] = len(out)
		out = append(out, model.ProjectCount{Name: name, Bugs: 1})
	}
	return out
}

// BugTrend is not computed yet and always yields an empty series.
func BugTrend(_ []model.Bug) []model.TrendPoint {
	return []model.TrendPoint{}
}

// BugHeatmap is not computed yet and always yields an empty series.
func BugHeatmap(_ []model.Bug) []model.HeatmapCell {
	return []model.HeatmapCell{}
}

// DistinctProjects lists project keys in first-seen order.
func DistinctProjects(bugs []model.Bug) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range bugs {
		key := bugs[i].ProjectKey
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
