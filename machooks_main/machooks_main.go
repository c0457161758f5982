// Copyright (c) 2023, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package machooks_main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/openthread/ot-machooks/bench"
	"github.com/openthread/ot-machooks/cli"
	"github.com/openthread/ot-machooks/config"
	"github.com/openthread/ot-machooks/logger"
	"github.com/openthread/ot-machooks/progctx"
	. "github.com/openthread/ot-machooks/types"
)

type MainArgs struct {
	ConfigFile string
	LogLevel   string
	LogFile    string
	Pcap       string
	Seed       int64
	Disable    string
	Script     string
	Echo       bool
	DumpConfig bool
}

var (
	args MainArgs
)

func parseArgs() {
	flag.StringVar(&args.ConfigFile, "config", "", "specify the YAML bench configuration file")
	flag.StringVar(&args.LogLevel, "log", "", "set logging level: trace, debug, info, note, warn, error (overrides the configuration)")
	flag.StringVar(&args.LogFile, "log-file", "", "also write the log to this file")
	flag.StringVar(&args.Pcap, "pcap", "", "capture transmitted frames to this PCAP file (overrides the configuration)")
	flag.Int64Var(&args.Seed, "seed", 0, "set the root PRNG seed (overrides the configuration)")
	flag.StringVar(&args.Disable, "disable", "", "comma-separated feature modules to leave out of the build")
	flag.StringVar(&args.Script, "script", "", "run the commands of this file instead of the console")
	flag.BoolVar(&args.Echo, "echo", false, "echo the executed commands")
	flag.BoolVar(&args.DumpConfig, "dump-config", false, "print the effective configuration and exit")

	flag.Parse()
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if args.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(args.ConfigFile); err != nil {
			return nil, err
		}
	}

	if args.LogLevel != "" {
		cfg.LogLevel = args.LogLevel
	}
	if args.Pcap != "" {
		cfg.Pcap = args.Pcap
	}
	if isFlagSet("seed") {
		cfg.Seed = args.Seed
	}
	if err := disableFeatures(cfg, args.Disable); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func disableFeatures(cfg *config.Config, list string) error {
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, err := ParseFeature(name)
		if err != nil {
			return err
		}
		cfg.Features.Get(f).Enabled = false
	}
	return nil
}

// Main runs the bench until the console exits or a termination signal arrives.
func Main(ctx *progctx.ProgCtx, cliOptions *cli.CliOptions) {
	parseArgs()

	cfg, err := loadConfig()
	logger.FatalIfError(err)

	lv, err := logger.ParseLevelString(cfg.LogLevel)
	logger.FatalIfError(err)
	logger.SetLevel(lv)
	if args.LogFile != "" {
		logger.FatalIfError(logger.SetOutput([]string{"stdout", args.LogFile}))
	}
	defer logger.Sync()

	if args.DumpConfig {
		data, err := cfg.Marshal()
		logger.FatalIfError(err)
		fmt.Print(string(data))
		return
	}

	b, err := bench.New(cfg)
	logger.FatalIfError(err)
	defer func() {
		if err := b.Close(); err != nil {
			logger.Errorf("close bench: %v", err)
		}
	}()

	handleSignals(ctx)

	rt := cli.NewCmdRunner(ctx, b)
	if args.Script != "" {
		ctx.Cancel(errors.Wrapf(runScriptFile(rt, args.Script), "script exit"))
	} else {
		// run console in its own goroutine, stdin is closed on exit to unblock it.
		ctx.Defer(func() {
			_ = os.Stdin.Close()
		})
		if cliOptions == nil {
			cliOptions = cli.DefaultCliOptions()
			cliOptions.EchoInput = args.Echo
		}
		go func() {
			err := cli.NewCliInstance().Run(rt, cliOptions)
			ctx.Cancel(errors.Wrapf(err, "console exit"))
		}()
	}

	<-ctx.Done()
	logger.Debugf("waiting for the bench to stop gracefully ...")
	ctx.Wait()
}

func runScriptFile(rt *cli.CmdRunner, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	err = cli.RunScript(rt, f, os.Stdout, args.Echo)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func handleSignals(ctx *progctx.ProgCtx) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)

	ctx.Go("handleSignals", func() {
		defer logger.Debugf("handleSignals exit.")
		defer signal.Stop(c)

		select {
		case sig := <-c:
			logger.Infof("signal received: %v", sig)
			ctx.Cancel(nil)
		case <-ctx.Done():
		}
	})
}
