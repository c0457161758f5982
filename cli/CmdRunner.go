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

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openthread/ot-machooks/bench"
	"github.com/openthread/ot-machooks/logger"
	"github.com/openthread/ot-machooks/machooks"
	"github.com/openthread/ot-machooks/progctx"
	. "github.com/openthread/ot-machooks/types"
)

const (
	Prompt = "> "
)

type CommandContext struct {
	context.Context
	*Command
	rt     *CmdRunner
	err    error
	output io.Writer
}

func (cc *CommandContext) outputStr(msg string) {
	_, _ = fmt.Fprint(cc.output, msg)
}

func (cc *CommandContext) outputf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cc.output, format, args...)
}

func (cc *CommandContext) errorf(format string, args ...interface{}) {
	cc.error(errors.Errorf(format, args...))
}

func (cc *CommandContext) error(err error) {
	if err != nil {
		if cc.err != nil { // if previous error, print it now and keep the last.
			cc.outputf("Error: %s\n", cc.err)
		}
		cc.err = err
	}
}

// Err returns the last error that occurred during command execution.
func (cc *CommandContext) Err() error {
	return cc.err
}

func (cc *CommandContext) outputItemsAsYaml(items interface{}) {
	var itemsYaml yaml.Node

	err := itemsYaml.Encode(items)
	logger.PanicIfError(err)

	for _, content := range itemsYaml.Content {
		content.Style = yaml.FlowStyle
	}

	data, err := yaml.Marshal(&itemsYaml)
	logger.PanicIfError(err)

	_, err = cc.output.Write(data)
	logger.PanicIfError(err)
}

// CmdRunner executes bench CLI commands.
type CmdRunner struct {
	ctx   *progctx.ProgCtx
	bench *bench.Bench
	help  Help
}

func NewCmdRunner(ctx *progctx.ProgCtx, b *bench.Bench) *CmdRunner {
	return &CmdRunner{
		ctx:   ctx,
		bench: b,
		help:  newHelp(),
	}
}

func (rt *CmdRunner) RunCommand(cmdline string, output io.Writer) error {
	if rt.ctx.Err() == nil {
		cmd := Command{}

		if err := parseBytes([]byte(cmdline), &cmd); err != nil {
			if _, err := fmt.Fprintf(output, "Error: %v\n", err); err != nil {
				return err
			}
		} else {
			rt.execute(&cmd, output)
		}
	}
	return rt.ctx.Err()
}

func (rt *CmdRunner) HandleCommand(cmdline string, output io.Writer) error {
	return rt.RunCommand(cmdline, output)
}

func (rt *CmdRunner) GetPrompt() string {
	return Prompt
}

func (rt *CmdRunner) execute(cmd *Command, output io.Writer) {
	cc := &CommandContext{
		Context: rt.ctx,
		Command: cmd,
		rt:      rt,
		output:  output,
	}

	defer func() {
		if cc.Err() != nil {
			cc.outputf("Error: %v\n", cc.Err())
		} else {
			cc.outputf("Done\n")
		}
	}()

	defer func() {
		rerr := recover()

		if rerr != nil {
			if err, ok := rerr.(error); ok {
				cc.err = errors.Wrapf(err, "panic: %v", err)
			} else {
				cc.err = errors.Errorf("panic: %v", rerr)
			}
		}
	}()

	if cmd.Terminate != nil {
		rt.executeTerminate(cc, cmd.Terminate)
	} else if cmd.PreTx != nil {
		rt.executePreTx(cc, cmd.PreTx)
	} else if cmd.TxReady != nil {
		rt.executeTxReady(cc, cmd.TxReady)
	} else if cmd.Transmitted != nil {
		rt.executeTransmitted(cc, cmd.Transmitted)
	} else if cmd.TxFailed != nil {
		rt.executeTxFailed(cc, cmd.TxFailed)
	} else if cmd.TxStarted != nil {
		rt.executeTxStarted(cc, cmd.TxStarted)
	} else if cmd.RxStarted != nil {
		rt.executeRxStarted(cc, cmd.RxStarted)
	} else if cmd.RxAckStarted != nil {
		rt.bench.RxAckStarted()
	} else if cmd.Prio != nil {
		rt.executePrio(cc, cmd.Prio)
	} else if cmd.Tx != nil {
		rt.executeTx(cc, cmd.Tx)
	} else if cmd.Hooks != nil {
		rt.executeHooks(cc, cmd.Hooks)
	} else if cmd.Journal != nil {
		rt.executeJournal(cc, cmd.Journal)
	} else if cmd.Stats != nil {
		rt.executeStats(cc, cmd.Stats)
	} else if cmd.Notifications != nil {
		rt.executeNotifications(cc, cmd.Notifications)
	} else if cmd.Verdict != nil {
		rt.executeVerdict(cc, cmd.Verdict)
	} else if cmd.LogLevel != nil {
		rt.executeLogLevel(cc, cmd.LogLevel)
	} else if cmd.Help != nil {
		rt.executeHelp(cc, cmd.Help)
	} else if cmd.Exit != nil {
		rt.executeExit(cc, cmd.Exit)
	} else {
		logger.Panicf("unimplemented command: %#v", cmd)
	}
}

func (rt *CmdRunner) parseFrame(cc *CommandContext, s string) (Frame, bool) {
	frame, err := ParseFrame(s)
	if err != nil {
		cc.error(errors.Wrapf(err, "invalid frame"))
		return nil, false
	}
	return frame, true
}

func (cc *CommandContext) outputVerdict(approved bool) {
	if approved {
		cc.outputStr("approved\n")
	} else {
		cc.outputStr("rejected\n")
	}
}

func (rt *CmdRunner) executeTerminate(cc *CommandContext, cmd *TerminateCmd) {
	lvl, err := ParseTermLevel(cmd.Level)
	if err != nil {
		cc.error(err)
		return
	}
	orig := ReqOrigHigherLayer
	if cmd.Orig != nil {
		if orig, err = ParseReqOriginator(*cmd.Orig); err != nil {
			cc.error(err)
			return
		}
	}
	cc.outputVerdict(rt.bench.Terminate(lvl, orig))
}

func (rt *CmdRunner) executePreTx(cc *CommandContext, cmd *PreTxCmd) {
	if frame, ok := rt.parseFrame(cc, cmd.Frame); ok {
		cc.outputVerdict(rt.bench.PreTransmission(frame, cmd.Cca != nil))
	}
}

func (rt *CmdRunner) executeTxReady(cc *CommandContext, cmd *TxReadyCmd) {
	if frame, ok := rt.parseFrame(cc, cmd.Frame); ok {
		rt.bench.TransmissionReady(frame, cmd.Ready == "ready")
	}
}

func (rt *CmdRunner) executeTransmitted(cc *CommandContext, cmd *TransmittedCmd) {
	if frame, ok := rt.parseFrame(cc, cmd.Frame); ok {
		cc.error(rt.bench.Transmitted(frame))
	}
}

func (rt *CmdRunner) executeTxFailed(cc *CommandContext, cmd *TxFailedCmd) {
	frame, ok := rt.parseFrame(cc, cmd.Frame)
	if !ok {
		return
	}
	txErr, err := ParseTxError(cmd.Error)
	if err != nil {
		cc.error(err)
		return
	}
	cc.outputVerdict(rt.bench.TxFailed(frame, txErr))
}

func (rt *CmdRunner) executeTxStarted(cc *CommandContext, cmd *TxStartedCmd) {
	if frame, ok := rt.parseFrame(cc, cmd.Frame); ok {
		cc.outputVerdict(rt.bench.TxStarted(frame))
	}
}

func (rt *CmdRunner) executeRxStarted(cc *CommandContext, cmd *RxStartedCmd) {
	if frame, ok := rt.parseFrame(cc, cmd.Frame); ok {
		rt.bench.RxStarted(frame)
	}
}

func (rt *CmdRunner) executePrio(cc *CommandContext, cmd *PrioCmd) {
	oldPrio, err := ParsePriority(cmd.Old)
	if err != nil {
		cc.error(err)
		return
	}
	newPrio, err := ParsePriority(cmd.New)
	if err != nil {
		cc.error(err)
		return
	}
	rt.bench.PriorityChanged(oldPrio, newPrio)
}

func (rt *CmdRunner) executeTx(cc *CommandContext, cmd *TxCmd) {
	frame, ok := rt.parseFrame(cc, cmd.Frame)
	if !ok {
		return
	}
	res, err := rt.bench.Transmit(frame, cmd.Cca != nil)
	events := make([]string, len(res.Events))
	for i, kind := range res.Events {
		events[i] = kind.String()
	}
	cc.outputf("%s: %s\n", res.Outcome, strings.Join(events, " > "))
	if res.Outcome == bench.TxOutcomeAborted {
		if res.Reported {
			cc.outputStr("failure reported\n")
		} else {
			cc.outputStr("failure suppressed\n")
		}
	}
	cc.error(err)
}

func (rt *CmdRunner) executeHooks(cc *CommandContext, cmd *HooksCmd) {
	hooks := rt.bench.Dispatcher().Hooks()
	kinds := AllEventKinds[:]
	if cmd.Event != nil {
		kind, err := ParseEventKind(*cmd.Event)
		if err != nil {
			cc.error(err)
			return
		}
		kinds = []EventKind{kind}
	}

	for _, kind := range kinds {
		names := []string{}
		for _, f := range hooks.Features(kind) {
			names = append(names, f.String())
		}
		cc.outputf("%-13s %-7s %s\n", kind, kind.Policy(), strings.Join(names, ", "))
	}
}

func (rt *CmdRunner) executeJournal(cc *CommandContext, cmd *JournalCmd) {
	journal := rt.bench.Journal()
	if cmd.Clear != nil {
		journal.Clear()
		return
	}
	if journal.Dropped() > 0 {
		cc.outputf("(%d older entries dropped)\n", journal.Dropped())
	}
	for _, inv := range journal.Entries() {
		cc.outputf("%s\n", inv)
	}
}

func (rt *CmdRunner) executeStats(cc *CommandContext, cmd *StatsCmd) {
	if cmd.Reset != nil {
		rt.bench.ResetStats()
		return
	}
	stats := rt.bench.Stats()
	if len(stats) > 0 {
		cc.outputItemsAsYaml(stats)
	}
}

func (rt *CmdRunner) executeNotifications(cc *CommandContext, cmd *NotificationsCmd) {
	var pending []bench.Notification
	if cmd.Flush != nil {
		pending = rt.bench.FlushNotifications()
	} else {
		pending = rt.bench.Notifications()
	}
	if len(pending) > 0 {
		cc.outputItemsAsYaml(pending)
	}
}

func (rt *CmdRunner) executeVerdict(cc *CommandContext, cmd *VerdictCmd) {
	f, err := ParseFeature(cmd.Feature)
	if err != nil {
		cc.error(err)
		return
	}
	kind, err := ParseEventKind(cmd.Event)
	if err != nil {
		cc.error(err)
		return
	}
	if kind.Policy() != PolicyVeto {
		cc.errorf("event %s is a notification and can not be rejected", kind)
		return
	}
	if !machooks.Contributes(f, kind) {
		cc.errorf("feature %s has no %s hook", f, kind)
		return
	}
	emulators := rt.bench.Emulators()
	if !emulators.Modules().Enabled(f) {
		cc.errorf("feature %s is disabled", f)
		return
	}
	emulators.Get(f).SetReject(kind, cmd.Verdict == "reject")
}

func (rt *CmdRunner) executeLogLevel(cc *CommandContext, cmd *LogLevelCmd) {
	if cmd.Level == "" {
		cc.outputf("%v\n", logger.GetLevelString(logger.GetLevel()))
		return
	}
	lv, err := logger.ParseLevelString(cmd.Level)
	if err != nil {
		cc.error(err)
		return
	}
	logger.SetLevel(lv)
}

func (rt *CmdRunner) executeHelp(cc *CommandContext, cmd *HelpCmd) {
	if len(cmd.HelpTopic) > 0 {
		cc.outputStr(rt.help.outputCommandHelp(cmd.HelpTopic))
	} else {
		cc.outputStr(rt.help.outputGeneralHelp())
	}
}

func (rt *CmdRunner) executeExit(cc *CommandContext, cmd *ExitCmd) {
	rt.ctx.Cancel("exit")
}
