// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package server

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fugitivexyz/jira-bug-mointor/internal/logging"
	"github.com/fugitivexyz/jira-bug-mointor/internal/pipeline"
	"github.com/pkg/errors"
)

const (
	defaultListenAddress         = ":8086"
	defaultMetricsServerPort     = "9010"
	defaultRequestTimeoutSeconds = 30
	defaultUpstreamRateLimit     = 10.0
	defaultUpstreamBurst         = 20
	defaultIssueCacheSeconds     = 60
	defaultMaxResults            = 100
	maxResultsLimit              = 1000

	logFilename = "jira-relay.log"
)

// Config is the relay service configuration.
type Config struct {
	ListenAddress     string
	MetricsServerPort string

	RequestTimeoutSeconds int

	// UpstreamRateLimit is the number of requests per second the relay sends
	// to Jira across every user.
	UpstreamRateLimit float64
	UpstreamBurst     int

	// IssueCacheSeconds is the max-age advertised on single issue responses.
	IssueCacheSeconds int

	DefaultJQL           string
	MaxResults           int
	ExpansionConcurrency int

	AllowedInstanceSuffixes []string

	LogSettings logging.Settings
}

func FindConfigFile(fileName string) string {
	if _, err := os.Stat("/tmp/" + fileName); err == nil {
		fileName, _ = filepath.Abs("/tmp/" + fileName)
	} else if _, err := os.Stat("./config/" + fileName); err == nil {
		fileName, _ = filepath.Abs("./config/" + fileName)
	} else if _, err := os.Stat("../config/" + fileName); err == nil {
		fileName, _ = filepath.Abs("../config/" + fileName)
	} else if _, err := os.Stat(fileName); err == nil {
		fileName, _ = filepath.Abs(fileName)
	}

	return fileName
}

// GetConfig loads the config file and applies defaults to unset fields.
func GetConfig(fileName string) (*Config, error) {
	config := &Config{}
	fileName = FindConfigFile(fileName)

	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open config file %s", fileName)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, errors.Wrapf(err, "unable to decode config file %s", fileName)
	}

	config.SetDefaults()
	if err := config.IsValid(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) SetDefaults() {
	if c.ListenAddress == "" {
		c.ListenAddress = defaultListenAddress
	}
	if c.MetricsServerPort == "" {
		c.MetricsServerPort = defaultMetricsServerPort
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.UpstreamRateLimit <= 0 {
		c.UpstreamRateLimit = defaultUpstreamRateLimit
	}
	if c.UpstreamBurst <= 0 {
		c.UpstreamBurst = defaultUpstreamBurst
	}
	if c.IssueCacheSeconds < 0 {
		c.IssueCacheSeconds = 0
	} else if c.IssueCacheSeconds == 0 {
		c.IssueCacheSeconds = defaultIssueCacheSeconds
	}
	if c.DefaultJQL == "" {
		c.DefaultJQL = pipeline.QueryForIssueType(pipeline.DefaultIssueType)
	}
	if c.MaxResults <= 0 {
		c.MaxResults = defaultMaxResults
	}
	if c.ExpansionConcurrency <= 0 {
		c.ExpansionConcurrency = pipeline.DefaultConcurrency
	}
	if !c.LogSettings.EnableConsole && !c.LogSettings.EnableFile {
		c.LogSettings.EnableConsole = true
	}
	if c.LogSettings.ConsoleLevel == "" {
		c.LogSettings.ConsoleLevel = "INFO"
	}
	if c.LogSettings.FileLevel == "" {
		c.LogSettings.FileLevel = "INFO"
	}
	if c.LogSettings.FileName == "" {
		c.LogSettings.FileName = logFilename
	}
}

// SetupLogging configures the global logger from the config log settings.
func SetupLogging(config *Config) error {
	return logging.Configure(config.LogSettings)
}

func (c *Config) IsValid() error {
	if c.MaxResults > maxResultsLimit {
		return errors.Errorf("MaxResults must not exceed %d", maxResultsLimit)
	}
	if c.LogSettings.EnableFile && c.LogSettings.FileLocation == "" {
		return errors.New("LogSettings.FileLocation is required when file logging is enabled")
	}
	return nil
}

// InstanceAllowed reports whether the relay may forward requests to the
// given Jira base URL. Only plain https URLs with a host qualify; an empty
// allow list accepts every such instance.
func (c *Config) InstanceAllowed(baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme != "https" || u.User != nil || u.RawQuery != "" || u.Fragment != "" || u.Opaque != "" {
		return false
	}
	// ForceQuery and a bare "#" leave no query or fragment behind
	if strings.ContainsAny(baseURL, "?#") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if len(c.AllowedInstanceSuffixes) == 0 {
		return true
	}
	for _, suffix := range c.AllowedInstanceSuffixes {
		suffix = strings.ToLower(strings.TrimPrefix(suffix, "."))
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
