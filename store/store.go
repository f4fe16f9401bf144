// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

// Package store persists the Jira credentials of the local user.
package store

import (
	"github.com/fugitivexyz/jira-bug-mointor/model"
)

// CredentialStore keeps at most one set of credentials.
type CredentialStore interface {
	// Load returns nil and no error when nothing was saved.
	Load() (*model.Credentials, error)
	Save(credentials *model.Credentials) error
	Clear() error
}
