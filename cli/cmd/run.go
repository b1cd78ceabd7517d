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
	"context"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/viniarck/kytos/cli/http"
	"github.com/viniarck/kytos/internal/builder"
	"github.com/viniarck/kytos/internal/controller"
)

var runFlags struct {
	listen    string
	apiListen string
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start the controller",
	Long: `Start listening for switch connections and serve the HTTP API.
The controller drains its buffers and stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runCommandFunc,
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.listen, "listen", "l", "", "switch listener address, overrides the configuration")
	runCmd.Flags().StringVar(&runFlags.apiListen, "api-listen", "", "HTTP API address, overrides the configuration")
	rootCmd.AddCommand(runCmd)
}

func runCommandFunc(command *cobra.Command, args []string) error {
	flags, err := getGlobalConf(command)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	b := builder.From(cfg)
	if command.Flags().Changed("listen") {
		b.WithListen(runFlags.listen)
	}
	if command.Flags().Changed("api-listen") {
		b.WithAPIListen(runFlags.apiListen)
	}
	if cfg, err = b.Build(); err != nil {
		return err
	}

	log, closer := newLogger(cfg, os.Stdout)
	defer closer.Close()
	log.Info().Str("version", GitVersion).RawJSON("config", cfg.Bytes()).Msg("Starting kytosd")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctl, err := controller.New(cfg, controller.WithLogger(log), controller.WithRegisterer(reg))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ctl.Start(ctx); err != nil {
		return err
	}

	var api *http.HttpServer
	if cfg.APIListen != "" {
		api = http.NewHttpServer(cfg.APIListen, ctl, reg)
		go func() {
			if err := api.Run(); err != nil {
				log.Error().Err(err).Str("api_listen", cfg.APIListen).Msg("HTTP API failed")
				cancel()
			}
		}()
		log.Info().Str("api_listen", cfg.APIListen).Msg("HTTP API started")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Signal received, shutting down")
	case <-ctx.Done():
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer stopCancel()

	var stopErr error
	if api != nil {
		stopErr = multierr.Append(stopErr, api.Shutdown(stopCtx))
	}
	stopErr = multierr.Append(stopErr, ctl.Stop(context.Background()))
	return stopErr
}
