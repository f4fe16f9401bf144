// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

const (
	blobVersion = 1
	saltSize    = 16

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1

	appDirName      = "jira-bug-monitor"
	credentialsFile = "credentials.json"
)

// ErrWrongKey is returned by Load when the blob cannot be opened with the
// configured key.
var ErrWrongKey = errors.New("credentials cannot be decrypted with the configured key")

type envelope struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// FileCredentialStore keeps the credentials in one encrypted file. The key is
// derived from a passphrase with scrypt and a per-file salt.
type FileCredentialStore struct {
	path       string
	passphrase []byte
}

var _ CredentialStore = (*FileCredentialStore)(nil)

// DefaultPath returns the credentials file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "unable to locate the user config directory")
	}
	return filepath.Join(dir, appDirName, credentialsFile), nil
}

func NewFileCredentialStore(path, passphrase string) (*FileCredentialStore, error) {
	if path == "" {
		return nil, errors.New("credentials path is required")
	}
	if passphrase == "" {
		return nil, errors.New("credential key is required")
	}
	return &FileCredentialStore{path: path, passphrase: []byte(passphrase)}, nil
}

func (s *FileCredentialStore) Path() string {
	return s.path
}

func (s *FileCredentialStore) Load() (*model.Credentials, error) {
	data, err := ioutil.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to read credentials")
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "credentials file is corrupted")
	}
	if env.Version != blobVersion {
		return nil, errors.Errorf("unsupported credentials version %d", env.Version)
	}

	aead, err := s.cipher(env.Salt)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, errors.New("credentials file is corrupted")
	}
	plain, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrWrongKey
	}

	var credentials model.Credentials
	if err := json.Unmarshal(plain, &credentials); err != nil {
		return nil, errors.Wrap(err, "credentials payload is corrupted")
	}
	return &credentials, nil
}

func (s *FileCredentialStore) Save(credentials *model.Credentials) error {
	if err := credentials.Validate(); err != nil {
		return errors.Wrap(err, "refusing to save invalid credentials")
	}
	plain, err := json.Marshal(credentials)
	if err != nil {
		return errors.Wrap(err, "unable to encode credentials")
	}

	env := envelope{Version: blobVersion, Salt: make([]byte, saltSize)}
	if _, err := io.ReadFull(rand.Reader, env.Salt); err != nil {
		return errors.Wrap(err, "unable to generate salt")
	}
	aead, err := s.cipher(env.Salt)
	if err != nil {
		return err
	}
	env.Nonce = make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, env.Nonce); err != nil {
		return errors.Wrap(err, "unable to generate nonce")
	}
	env.Ciphertext = aead.Seal(nil, env.Nonce, plain, nil)

	data, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "unable to encode credentials file")
	}
	return writeFileAtomic(s.path, data)
}

func (s *FileCredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "unable to remove credentials")
	}
	return nil
}

func (s *FileCredentialStore) cipher(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, errors.Wrap(err, "unable to derive key")
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create cipher")
	}
	return aead, nil
}

// writeFileAtomic writes data to a temporary file and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrap(err, "unable to create credentials directory")
	}
	tmp, err := ioutil.TempFile(dir, ".credentials-*")
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "unable to write credentials")
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "unable to restrict credentials permissions")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "unable to write credentials")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "unable to store credentials")
}
