// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package version

import (
	"fmt"
	"time"
)

// version used when the binary is built without ldflags
const dev = "v0.1.0-dev"

// Provisioned by ldflags
var (
	version    string
	commitHash string
	buildDate  string
)

type Info struct {
	Version string `json:"version" yaml:"version"`
	Hash    string `json:"hash" yaml:"hash"`
	Date    string `json:"date" yaml:"date"`
}

func init() {
	if version == "" {
		version = dev
	}
	if commitHash == "" {
		commitHash = "unknown"
	}
	if buildDate == "" {
		buildDate = time.Now().UTC().Format(time.RFC3339)
	}
}

// Full returns the version, commit hash and build date.
func Full() *Info {
	return &Info{
		Version: version,
		Hash:    commitHash,
		Date:    buildDate,
	}
}

func (i *Info) String() string {
	return fmt.Sprintf("%s (%s, built %s)", i.Version, i.Hash, i.Date)
}
