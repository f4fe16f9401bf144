// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/fugitivexyz/jira-bug-mointor/metrics"
	"github.com/fugitivexyz/jira-bug-mointor/server"
	"github.com/mattermost/mattermost-server/v6/shared/mlog"
)

var (
	configFile string
)

func init() {
	flag.StringVar(&configFile, "config", "config-relay.json", "")
}

func main() {
	flag.Parse()

	config, err := server.GetConfig(configFile)
	if err != nil {
		mlog.Error("unable to load relay config", mlog.Err(err), mlog.String("file", configFile))
		os.Exit(1)
	}
	if err = server.SetupLogging(config); err != nil {
		mlog.Error("unable to configure logging", mlog.Err(err))
		os.Exit(1)
	}

	metricsProvider := metrics.NewPrometheusProvider()
	metricsServer := metrics.NewServer(config.MetricsServerPort, metricsProvider.Handler(), true)
	metricsServer.Start()
	defer metricsServer.Stop()

	mlog.Info("Loaded config", mlog.String("filename", configFile))
	s, err := server.New(config, metricsProvider)
	if err != nil {
		mlog.Error("unable to start relay", mlog.Err(err))
		return
	}

	mlog.Info("Starting Jira relay", mlog.String("address", config.ListenAddress))
	s.Start()

	defer func() {
		mlog.Info("Stopping Jira relay")
		if err2 := s.Stop(); err2 != nil {
			mlog.Error("error while shutting down relay", mlog.Err(err2))
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-sig
	mlog.Info("Stopped Jira relay")
}
