// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

// Package cli implements the jbm command line: credential lifecycle and
// dashboard, report and monitor commands on top of the relay.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fugitivexyz/jira-bug-mointor/internal/logging"
	"github.com/fugitivexyz/jira-bug-mointor/internal/relay"
	"github.com/fugitivexyz/jira-bug-mointor/metrics"
	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/fugitivexyz/jira-bug-mointor/store"
	"github.com/fugitivexyz/jira-bug-mointor/version"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "JBM"

// Config keys, also the names of the matching persistent flags.
const (
	keyRelayURL        = "relay-url"
	keyCredentialsFile = "credentials-file"
	keyCredentialKey   = "credential-key"
	keyOutput          = "output"
	keyConcurrency     = "concurrency"
	keyCacheSize       = "cache-size"
	keyLogLevel        = "log-level"
	keySchedule        = "schedule"
	keyMetricsPort     = "metrics-port"

	defaultRelayURL = "http://localhost:8086"
	defaultSchedule = "@every 5m"
)

// ErrNotLoggedIn is returned by commands that need saved credentials.
var ErrNotLoggedIn = errors.New("not logged in, run `jbm login` first")

type app struct {
	v       *viper.Viper
	metrics *metrics.PrometheusProvider

	// openStore is replaced in tests.
	openStore func() (store.CredentialStore, error)
}

// Execute runs the jbm command line.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func newApp() *app {
	a := &app{
		v:       viper.New(),
		metrics: metrics.NewPrometheusProvider(),
	}
	a.openStore = a.fileStore
	return a
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jbm",
		Short:         "Jira bug monitor",
		Long:          "jbm fetches Jira bugs through the relay, expands their linked issues and\nsummarizes them into dashboard metrics and reports.",
		Version:       version.Full().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Configure(logging.Settings{
				EnableConsole: true,
				ConsoleLevel:  a.v.GetString(keyLogLevel),
				ConsoleOut:    "stderr",
			})
		},
	}

	flags := root.PersistentFlags()
	flags.String(keyRelayURL, defaultRelayURL, "base URL of the jira relay")
	flags.String(keyCredentialsFile, "", "path of the encrypted credentials file")
	flags.String(keyCredentialKey, "", "passphrase protecting the credentials file")
	flags.StringP(keyOutput, "o", formatText, "output format: text, json or yaml")
	flags.Int(keyConcurrency, 8, "maximum concurrent linked issue fetches")
	flags.Int64(keyCacheSize, relay.DefaultCacheSize, "bytes of relay responses kept in memory, 0 disables the cache")
	flags.String(keyLogLevel, "WARN", "log level: ERROR, WARN, INFO or DEBUG")
	_ = a.v.BindPFlags(flags)

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newWhoAmICmd(),
		a.newDashboardCmd(),
		a.newLinkedCmd(),
		a.newReportCmd(),
		a.newMonitorCmd(),
		a.newIssueTypesCmd(),
	)
	return root
}

func (a *app) fileStore() (store.CredentialStore, error) {
	path := a.v.GetString(keyCredentialsFile)
	if path == "" {
		var err error
		if path, err = store.DefaultPath(); err != nil {
			return nil, err
		}
	}
	key := a.v.GetString(keyCredentialKey)
	if key == "" {
		return nil, errors.Errorf("a credential key is required, set --%s or %s_CREDENTIAL_KEY", keyCredentialKey, envPrefix)
	}
	return store.NewFileCredentialStore(path, key)
}

func (a *app) credentials() (*model.Credentials, error) {
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	credentials, err := s.Load()
	if err != nil {
		return nil, errors.Wrap(err, "unable to load credentials")
	}
	if credentials == nil {
		return nil, ErrNotLoggedIn
	}
	return credentials, nil
}

func (a *app) httpClient() *http.Client {
	return relay.NewHTTPClient(a.v.GetInt64(keyCacheSize), a.metrics)
}

func (a *app) relayClient(credentials *model.Credentials) *relay.Client {
	return relay.NewClient(a.v.GetString(keyRelayURL), *credentials, a.httpClient())
}

// loggedInClient loads the saved credentials and returns a relay client for them.
func (a *app) loggedInClient() (*relay.Client, error) {
	credentials, err := a.credentials()
	if err != nil {
		return nil, err
	}
	return a.relayClient(credentials), nil
}

func printf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
