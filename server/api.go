// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"

	"github.com/fugitivexyz/jira-bug-mointor/internal/pipeline"
	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const missingFieldsMessage = "Missing required fields"

func (s *Server) searchIssues(w http.ResponseWriter, r *http.Request) {
	var req model.SearchRequest
	if appErr := decodeBody(r, "searchIssues", &req); appErr != nil {
		s.writeError(w, r, appErr)
		return
	}
	if appErr := s.checkCredentials("searchIssues", &req.Credentials); appErr != nil {
		s.writeError(w, r, appErr)
		return
	}

	opts := model.SearchOptions{
		JQL:        req.JQL,
		Fields:     req.Fields,
		StartAt:    req.StartAt,
		MaxResults: req.MaxResults,
	}
	if opts.JQL == "" {
		opts.JQL = s.Config.DefaultJQL
	}
	if len(opts.Fields) == 0 {
		opts.Fields = pipeline.SearchFields
	}
	if opts.MaxResults <= 0 || opts.MaxResults > s.Config.MaxResults {
		opts.MaxResults = s.Config.MaxResults
	}

	result, err := s.Jira(&req.Credentials).Search(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, upstreamError("searchIssues", err))
		return
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) getIssue(w http.ResponseWriter, r *http.Request) {
	credentials := model.CredentialsFromHeaders(r.Header)
	if appErr := s.checkCredentials("getIssue", credentials); appErr != nil {
		s.writeError(w, r, appErr)
		return
	}

	issue, err := s.Jira(credentials).GetIssue(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		s.writeError(w, r, upstreamError("getIssue", err))
		return
	}
	if s.Config.IssueCacheSeconds > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", s.Config.IssueCacheSeconds))
		w.Header().Set("Vary", strings.Join([]string{model.HeaderInstance, model.HeaderEmail, model.HeaderToken, model.HeaderAccessToken}, ", "))
	}
	s.writeJSON(w, r, http.StatusOK, issue)
}

func (s *Server) whoAmI(w http.ResponseWriter, r *http.Request) {
	credentials := model.CredentialsFromHeaders(r.Header)
	if appErr := s.checkCredentials("whoAmI", credentials); appErr != nil {
		s.writeError(w, r, appErr)
		return
	}

	user, err := s.Jira(credentials).Myself(r.Context(), 3)
	if err != nil {
		s.writeError(w, r, upstreamError("whoAmI", err))
		return
	}
	s.writeJSON(w, r, http.StatusOK, user)
}

func (s *Server) testConnection(w http.ResponseWriter, r *http.Request) {
	var credentials model.Credentials
	if appErr := decodeBody(r, "testConnection", &credentials); appErr != nil {
		s.writeError(w, r, appErr)
		return
	}
	if credentials.Validate() != nil {
		s.writeError(w, r, model.NewAppError("testConnection", "api.relay.missing_fields", missingFieldsMessage, "", http.StatusBadRequest))
		return
	}
	if appErr := s.checkCredentials("testConnection", &credentials); appErr != nil {
		s.writeError(w, r, appErr)
		return
	}

	if _, err := s.Jira(&credentials).Myself(r.Context(), 2); err != nil {
		appErr := upstreamError("testConnection", err)
		var jiraErr *JiraError
		if errors.As(err, &jiraErr) && strings.HasPrefix(jiraErr.Message, "Jira API error:") {
			appErr.Message = "Failed to connect to Jira"
		}
		s.writeError(w, r, appErr)
		return
	}
	s.writeJSON(w, r, http.StatusOK, model.ConnectionTestResult{Success: true})
}

func (s *Server) issueTypes(w http.ResponseWriter, r *http.Request) {
	var credentials model.Credentials
	if appErr := decodeBody(r, "issueTypes", &credentials); appErr != nil {
		s.writeError(w, r, appErr)
		return
	}
	if appErr := s.checkCredentials("issueTypes", &credentials); appErr != nil {
		s.writeError(w, r, appErr)
		return
	}

	project, err := s.Jira(&credentials).GetProject(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		s.writeError(w, r, upstreamError("issueTypes", err))
		return
	}
	s.writeJSON(w, r, http.StatusOK, SortIssueTypes(project.IssueTypes))
}

// SortIssueTypes returns standard issue types before subtasks, each group
// ordered by name.
func SortIssueTypes(raw []model.RawIssueType) []model.IssueTypeInfo {
	types := make([]model.IssueTypeInfo, 0, len(raw))
	for _, t := range raw {
		types = append(types, model.IssueTypeInfo{
			ID:          t.ID,
			Name:        t.Name,
			IconURL:     t.IconURL,
			Description: t.Description,
			Subtask:     t.Subtask,
		})
	}
	sort.SliceStable(types, func(i, j int) bool {
		if types[i].Subtask != types[j].Subtask {
			return !types[i].Subtask
		}
		return strings.ToLower(types[i].Name) < strings.ToLower(types[j].Name)
	})
	return types
}

func (s *Server) checkCredentials(where string, credentials *model.Credentials) *model.AppError {
	if err := credentials.Validate(); err != nil {
		return model.NewAppError(where, "api.relay.invalid_credentials", missingFieldsMessage, err.Error(), http.StatusBadRequest)
	}
	if !s.Config.InstanceAllowed(credentials.BaseURL()) {
		return model.NewAppError(where, "api.relay.instance_not_allowed", "Jira instance is not allowed", credentials.BaseURL(), http.StatusForbidden)
	}
	return nil
}

func decodeBody(r *http.Request, where string, v interface{}) *model.AppError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewAppError(where, "api.relay.invalid_body", "Invalid request body", err.Error(), http.StatusBadRequest)
	}
	return nil
}

func upstreamError(where string, err error) *model.AppError {
	var jiraErr *JiraError
	var netErr net.Error
	switch {
	case errors.As(err, &jiraErr):
		return model.NewAppError(where, "api.relay.upstream_error", jiraErr.Message, "", jiraErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return model.NewAppError(where, "api.relay.upstream_timeout", "Jira did not respond in time", err.Error(), http.StatusGatewayTimeout)
	default:
		return model.NewAppError(where, "api.relay.upstream_unreachable", "Unable to reach Jira", err.Error(), http.StatusBadGateway)
	}
}
