// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package store

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCredentialStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	s, err := NewFileCredentialStore(path, "correct horse battery staple")
	require.NoError(t, err)

	credentials := &model.Credentials{
		InstanceURL: "https://acme.atlassian.net",
		Email:       "dev@acme.io",
		APIToken:    "super-secret-token",
	}

	t.Run("Should load nothing before the first save", func(t *testing.T) {
		loaded, err := s.Load()
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("Should round trip encrypted credentials", func(t *testing.T) {
		require.NoError(t, s.Save(credentials))

		data, err := ioutil.ReadFile(path)
		require.NoError(t, err)
		assert.False(t, strings.Contains(string(data), credentials.APIToken))
		assert.False(t, strings.Contains(string(data), credentials.Email))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

		loaded, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, credentials, loaded)
	})

	t.Run("Should use a fresh nonce on every save", func(t *testing.T) {
		require.NoError(t, s.Save(credentials))
		first, err := ioutil.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, s.Save(credentials))
		second, err := ioutil.ReadFile(path)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("Should refuse a different key", func(t *testing.T) {
		other, err := NewFileCredentialStore(path, "wrong key")
		require.NoError(t, err)
		loaded, err := other.Load()
		assert.Equal(t, ErrWrongKey, err)
		assert.Nil(t, loaded)
	})

	t.Run("Should refuse invalid credentials", func(t *testing.T) {
		require.Error(t, s.Save(&model.Credentials{InstanceURL: "https://acme.atlassian.net"}))
	})

	t.Run("Should report corrupted files", func(t *testing.T) {
		corrupted := filepath.Join(t.TempDir(), "credentials.json")
		require.NoError(t, ioutil.WriteFile(corrupted, []byte("not json"), 0600))
		broken, err := NewFileCredentialStore(corrupted, "key")
		require.NoError(t, err)
		_, err = broken.Load()
		require.Error(t, err)
	})

	t.Run("Should clear idempotently", func(t *testing.T) {
		require.NoError(t, s.Clear())
		require.NoError(t, s.Clear())
		loaded, err := s.Load()
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})
}

func TestNewFileCredentialStore(t *testing.T) {
	_, err := NewFileCredentialStore("", "key")
	require.Error(t, err)
	_, err = NewFileCredentialStore("/tmp/credentials.json", "")
	require.Error(t, err)
}
