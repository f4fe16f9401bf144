// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package model

import (
	"net/http"
	"strings"
)

// Headers carrying credentials on relay GET requests.
const (
	HeaderInstance    = "X-Jira-Instance"
	HeaderEmail       = "X-Jira-Email"
	HeaderToken       = "X-Jira-Token"
	HeaderAccessToken = "X-Jira-Access-Token"
)

// Credentials identify a user on a Jira Cloud instance. AccessToken is an
// OAuth bearer token used in place of Email and APIToken when set.
type Credentials struct {
	InstanceURL string `json:"instanceUrl"`
	Email       string `json:"email"`
	APIToken    string `json:"apiToken"`
	AccessToken string `json:"accessToken,omitempty"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks that enough fields are present to authenticate.
func (c *Credentials) Validate() error {
	if c == nil || strings.TrimSpace(c.InstanceURL) == "" {
		return &ValidationError{Field: "instanceUrl", Message: "required"}
	}
	if c.AccessToken != "" {
		return nil
	}
	if strings.TrimSpace(c.Email) == "" {
		return &ValidationError{Field: "email", Message: "required"}
	}
	if c.APIToken == "" {
		return &ValidationError{Field: "apiToken", Message: "required"}
	}
	return nil
}

// BaseURL returns the instance URL without surrounding spaces and trailing slash.
func (c *Credentials) BaseURL() string {
	return strings.TrimSuffix(strings.TrimSpace(c.InstanceURL), "/")
}

// Redacted returns a copy safe for logging.
func (c Credentials) Redacted() Credentials {
	if c.APIToken != "" {
		c.APIToken = "***"
	}
	if c.AccessToken != "" {
		c.AccessToken = "***"
	}
	return c
}

// SetHeaders writes the credentials onto h.
func (c *Credentials) SetHeaders(h http.Header) {
	h.Set(HeaderInstance, c.InstanceURL)
	if c.AccessToken != "" {
		h.Set(HeaderAccessToken, c.AccessToken)
		return
	}
	h.Set(HeaderEmail, c.Email)
	h.Set(HeaderToken, c.APIToken)
}

// CredentialsFromHeaders reads credentials written by SetHeaders.
func CredentialsFromHeaders(h http.Header) *Credentials {
	return &Credentials{
		InstanceURL: h.Get(HeaderInstance),
		Email:       h.Get(HeaderEmail),
		APIToken:    h.Get(HeaderToken),
		AccessToken: h.Get(HeaderAccessToken),
	}
}
