// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package model

// UserProfile is the authenticated Jira user.
type UserProfile struct {
	AccountID   string `json:"accountId,omitempty" yaml:"accountId,omitempty"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Email       string `json:"email" yaml:"email"`
	AvatarURL   string `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
}

// AvatarSize is the avatar variant picked from Jira's avatarUrls map.
const AvatarSize = "48x48"

func UserProfileFromRaw(user *RawUser) *UserProfile {
	if user == nil {
		return nil
	}
	return &UserProfile{
		AccountID:   user.AccountID,
		DisplayName: user.DisplayName,
		Email:       user.EmailAddress,
		AvatarURL:   user.AvatarURLs[AvatarSize],
	}
}

// IssueTypeInfo is an issue type offered by a project.
type IssueTypeInfo struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	IconURL     string `json:"iconUrl" yaml:"iconUrl"`
	Description string `json:"description" yaml:"description"`
	Subtask     bool   `json:"subtask" yaml:"subtask"`
}
