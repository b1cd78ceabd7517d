// Copyright 2022 CFC4N <cfc4n.cs@gmail.com>. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/viniarck/kytos/internal/builder"
	"github.com/viniarck/kytos/internal/config"
	"github.com/viniarck/kytos/internal/logger"
)

// GlobalFlags are the persistent flags of every command.
type GlobalFlags struct {
	Debug      bool
	ConfigFile string
	EnvFile    string
}

func getGlobalConf(command *cobra.Command) (conf GlobalFlags, err error) {
	conf.Debug, err = command.Flags().GetBool("debug")
	if err != nil {
		return
	}

	conf.ConfigFile, err = command.Flags().GetString("config")
	if err != nil {
		return
	}

	conf.EnvFile, err = command.Flags().GetString("env-file")
	if err != nil {
		return
	}
	return
}

// loadConfig builds the controller configuration: env file, then the JSON
// file, then KYTOS_* variables, then the command line flags.
func loadConfig(flags GlobalFlags) (*config.ControllerConfig, error) {
	if flags.EnvFile != "" {
		if err := config.LoadEnvFile(flags.EnvFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	b := builder.From(cfg)
	if flags.Debug {
		b.WithDebug(true)
	}
	return b.Build()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger returns the process logger and the closer of its log file.
func newLogger(cfg *config.ControllerConfig, out io.Writer) (*logger.Logger, io.Closer) {
	if out == nil {
		out = os.Stdout
	}
	if cfg.LogFile == "" {
		return logger.New(out, cfg.Debug), nopCloser{}
	}
	rf := logger.NewRotatingFile(cfg.LogFile, cfg.LogMaxSize)
	return logger.NewWithFile(out, rf, cfg.Debug), rf
}
