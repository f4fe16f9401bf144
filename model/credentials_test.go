// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package model

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsValidate(t *testing.T) {
	for name, tc := range map[string]struct {
		credentials *Credentials
		field       string
	}{
		"nil":                {nil, "instanceUrl"},
		"blank instance":     {&Credentials{InstanceURL: "  ", Email: "a@b.c", APIToken: "t"}, "instanceUrl"},
		"missing email":      {&Credentials{InstanceURL: "https://acme.atlassian.net", APIToken: "t"}, "email"},
		"missing token":      {&Credentials{InstanceURL: "https://acme.atlassian.net", Email: "a@b.c"}, "apiToken"},
		"email and token":    {&Credentials{InstanceURL: "https://acme.atlassian.net", Email: "a@b.c", APIToken: "t"}, ""},
		"access token alone": {&Credentials{InstanceURL: "https://acme.atlassian.net", AccessToken: "oauth"}, ""},
	} {
		t.Run(name, func(t *testing.T) {
			err := tc.credentials.Validate()
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestCredentialsBaseURL(t *testing.T) {
	c := &Credentials{InstanceURL: " https://acme.atlassian.net/ "}
	assert.Equal(t, "https://acme.atlassian.net", c.BaseURL())
}

func TestCredentialsRedacted(t *testing.T) {
	c := Credentials{InstanceURL: "https://acme.atlassian.net", Email: "a@b.c", APIToken: "secret", AccessToken: "oauth"}
	redacted := c.Redacted()

	assert.Equal(t, "***", redacted.APIToken)
	assert.Equal(t, "***", redacted.AccessToken)
	assert.Equal(t, "a@b.c", redacted.Email)
	assert.Equal(t, "secret", c.APIToken)

	assert.Empty(t, Credentials{Email: "a@b.c"}.Redacted().APIToken)
}

func TestCredentialsHeaders(t *testing.T) {
	t.Run("Should round trip basic credentials", func(t *testing.T) {
		c := &Credentials{InstanceURL: "https://acme.atlassian.net", Email: "a@b.c", APIToken: "secret"}
		h := http.Header{}
		c.SetHeaders(h)

		assert.Empty(t, h.Get(HeaderAccessToken))
		assert.Equal(t, c, CredentialsFromHeaders(h))
	})

	t.Run("Should only send the access token when set", func(t *testing.T) {
		c := &Credentials{InstanceURL: "https://acme.atlassian.net", Email: "a@b.c", APIToken: "secret", AccessToken: "oauth"}
		h := http.Header{}
		c.SetHeaders(h)

		assert.Empty(t, h.Get(HeaderToken))
		assert.Empty(t, h.Get(HeaderEmail))
		assert.Equal(t, &Credentials{InstanceURL: c.InstanceURL, AccessToken: "oauth"}, CredentialsFromHeaders(h))
	})
}
