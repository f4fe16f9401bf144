// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

// Package logging configures the global mlog logger.
package logging

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/mattermost/mattermost-server/v6/shared/mlog"
	"github.com/pkg/errors"
)

const queueSize = 1000

type Settings struct {
	EnableConsole bool
	ConsoleJSON   bool
	ConsoleLevel  string
	// ConsoleOut is stdout or stderr.
	ConsoleOut   string
	EnableFile   bool
	FileJSON     bool
	FileLevel    string
	FileLocation string
	FileName     string
}

// Configure installs a global logger built from settings.
func Configure(settings Settings) error {
	logger, err := mlog.NewLogger()
	if err != nil {
		return errors.Wrap(err, "unable to create logger")
	}

	cfg, err := LoggerConfiguration(settings)
	if err != nil {
		return err
	}
	if err := logger.ConfigureTargets(cfg, nil); err != nil {
		return errors.Wrap(err, "unable to configure log targets")
	}

	mlog.InitGlobalLogger(logger)
	return nil
}

func LoggerConfiguration(settings Settings) (mlog.LoggerConfiguration, error) {
	cfg := make(mlog.LoggerConfiguration)

	if settings.EnableConsole {
		out := settings.ConsoleOut
		if out != "stderr" {
			out = "stdout"
		}
		options, err := json.Marshal(map[string]string{"out": out})
		if err != nil {
			return nil, errors.Wrap(err, "unable to encode console options")
		}
		cfg["console"] = mlog.TargetCfg{
			Type:         "console",
			Format:       format(settings.ConsoleJSON),
			Options:      options,
			Levels:       Levels(settings.ConsoleLevel),
			MaxQueueSize: queueSize,
		}
	}

	if settings.EnableFile {
		if settings.FileLocation == "" || settings.FileName == "" {
			return nil, errors.New("file logging needs a location and a file name")
		}
		options, err := json.Marshal(map[string]interface{}{
			"filename": filepath.Join(settings.FileLocation, settings.FileName),
			"max_size": 100,
			"max_age":  7,
			"compress": true,
		})
		if err != nil {
			return nil, errors.Wrap(err, "unable to encode file options")
		}
		cfg["file"] = mlog.TargetCfg{
			Type:         "file",
			Format:       format(settings.FileJSON),
			Options:      options,
			Levels:       Levels(settings.FileLevel),
			MaxQueueSize: queueSize,
		}
	}

	return cfg, nil
}

func format(asJSON bool) string {
	if asJSON {
		return "json"
	}
	return "plain"
}

// Levels returns the named level and every level more severe than it.
// Unknown names mean INFO.
func Levels(level string) []mlog.Level {
	levels := []mlog.Level{mlog.LvlPanic, mlog.LvlFatal, mlog.LvlError}
	switch strings.ToUpper(level) {
	case "ERROR":
		return levels
	case "WARN", "WARNING":
		return append(levels, mlog.LvlWarn)
	case "DEBUG":
		return append(levels, mlog.LvlWarn, mlog.LvlInfo, mlog.LvlDebug)
	default:
		return append(levels, mlog.LvlWarn, mlog.LvlInfo)
	}
}
