// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package model

import (
	"encoding/json"
	"io"
)

// NameValue is one bucket of the status distribution.
type NameValue struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

// ProjectCount is one bucket of the per-project counts.
type ProjectCount struct {
	Name string `json:"name" yaml:"name"`
	Bugs int    `json:"bugs" yaml:"bugs"`
}

type TrendPoint struct {
	Date  string `json:"date" yaml:"date"`
	Count int    `json:"count" yaml:"count"`
}

type HeatmapCell struct {
	Day   string `json:"day" yaml:"day"`
	Count int    `json:"count" yaml:"count"`
}

// DashboardMetrics is derived from a bug list on every fetch and never stored.
type DashboardMetrics struct {
	TotalBugs          int            `json:"totalBugs" yaml:"totalBugs"`
	ActiveBugs         int            `json:"activeBugs" yaml:"activeBugs"`
	CriticalBugs       int            `json:"criticalBugs" yaml:"criticalBugs"`
	AvgResolutionTime  int            `json:"avgResolutionTime" yaml:"avgResolutionTime"`
	StatusDistribution []NameValue    `json:"bugStatusDistribution" yaml:"bugStatusDistribution"`
	BugsByProject      []ProjectCount `json:"bugsByProject" yaml:"bugsByProject"`
	BugTrend           []TrendPoint   `json:"bugTrend" yaml:"bugTrend"`
	BugHeatmap         []HeatmapCell  `json:"bugHeatmap" yaml:"bugHeatmap"`
}

type Dashboard struct {
	Projects    []string         `json:"projects" yaml:"projects"`
	Bugs        []Bug            `json:"bugs" yaml:"bugs"`
	Metrics     DashboardMetrics `json:"metrics" yaml:"metrics"`
	CurrentUser *UserProfile     `json:"currentUser,omitempty" yaml:"currentUser,omitempty"`
}

func (d *Dashboard) ToJSON() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func DashboardFromJSON(data io.Reader) (*Dashboard, error) {
	var d Dashboard
	if err := json.NewDecoder(data).Decode(&d); err != nil {
		return nil, err
	}

	return &d, nil
}
