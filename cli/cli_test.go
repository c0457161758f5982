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
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthread/ot-machooks/bench"
	"github.com/openthread/ot-machooks/config"
	"github.com/openthread/ot-machooks/progctx"
	. "github.com/openthread/ot-machooks/types"
)

func TestParseBytes(t *testing.T) {
	var cmd Command
	assert.NotNil(t, parseBytes([]byte("wrongcmd"), &cmd))

	assert.True(t, parseBytes([]byte("terminate 802154"), &cmd) == nil && cmd.Terminate != nil &&
		cmd.Terminate.Level == "802154" && cmd.Terminate.Orig == nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("terminate none rsch"), &cmd) == nil && cmd.Terminate != nil &&
		*cmd.Terminate.Orig == "rsch")
	assert.NotNil(t, parseBytes([]byte("terminate"), &cmd))

	cmd = Command{}
	assert.True(t, parseBytes([]byte("pretx \"41880102\" cca"), &cmd) == nil && cmd.PreTx != nil &&
		cmd.PreTx.Frame == "41880102" && cmd.PreTx.Cca != nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("pretx \"41880102\""), &cmd) == nil && cmd.PreTx.Cca == nil)

	cmd = Command{}
	assert.True(t, parseBytes([]byte("txready \"4188\" notready"), &cmd) == nil && cmd.TxReady != nil &&
		cmd.TxReady.Ready == "notready")
	assert.NotNil(t, parseBytes([]byte("txready \"4188\""), &cmd))

	cmd = Command{}
	assert.True(t, parseBytes([]byte("transmitted \"4188\""), &cmd) == nil && cmd.Transmitted != nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("txfailed \"4188\" noack"), &cmd) == nil && cmd.TxFailed != nil &&
		cmd.TxFailed.Error == "noack")
	cmd = Command{}
	assert.True(t, parseBytes([]byte("txstarted \"4188\""), &cmd) == nil && cmd.TxStarted != nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("rxstarted \"4188\""), &cmd) == nil && cmd.RxStarted != nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("rxackstarted"), &cmd) == nil && cmd.RxAckStarted != nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("prio rx tx"), &cmd) == nil && cmd.Prio != nil &&
		cmd.Prio.Old == "rx" && cmd.Prio.New == "tx")
	cmd = Command{}
	assert.True(t, parseBytes([]byte("prio prio5 6"), &cmd) == nil && cmd.Prio.Old == "prio5" && cmd.Prio.New == "6")
	cmd = Command{}
	assert.True(t, parseBytes([]byte("tx \"4188\" cca"), &cmd) == nil && cmd.Tx != nil && cmd.Tx.Cca != nil)

	cmd = Command{}
	assert.True(t, parseBytes([]byte("hooks"), &cmd) == nil && cmd.Hooks != nil && cmd.Hooks.Event == nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("hooks terminate"), &cmd) == nil && *cmd.Hooks.Event == "terminate")
	cmd = Command{}
	assert.True(t, parseBytes([]byte("journal clear"), &cmd) == nil && cmd.Journal.Clear != nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("stats"), &cmd) == nil && cmd.Stats != nil && cmd.Stats.Reset == nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("notifications flush"), &cmd) == nil && cmd.Notifications.Flush != nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("verdict csma_ca terminate reject"), &cmd) == nil && cmd.Verdict != nil &&
		cmd.Verdict.Feature == "csma_ca" && cmd.Verdict.Verdict == "reject")
	assert.NotNil(t, parseBytes([]byte("verdict csma_ca terminate maybe"), &cmd))

	cmd = Command{}
	assert.True(t, parseBytes([]byte("log"), &cmd) == nil && cmd.LogLevel != nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("log debug"), &cmd) == nil && cmd.LogLevel.Level == "debug")
	cmd = Command{}
	assert.True(t, parseBytes([]byte("help"), &cmd) == nil && cmd.Help != nil)
	cmd = Command{}
	assert.True(t, parseBytes([]byte("help tx"), &cmd) == nil && cmd.Help.HelpTopic == "tx")
	cmd = Command{}
	assert.True(t, parseBytes([]byte("exit"), &cmd) == nil && cmd.Exit != nil)
}

func newTestRunner(t *testing.T, cfg *config.Config) (*CmdRunner, *bench.Bench) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.Seed = 1
	b, err := bench.New(cfg)
	require.Nil(t, err)
	t.Cleanup(func() {
		_ = b.Close()
	})
	return NewCmdRunner(progctx.New(context.Background()), b), b
}

func runScript(t *testing.T, rt *CmdRunner, script string) string {
	var out bytes.Buffer
	err := RunScript(rt, strings.NewReader(script), &out, false)
	assert.Nil(t, err)
	return out.String()
}

func TestRunVetoCommands(t *testing.T) {
	rt, b := newTestRunner(t, nil)

	out := runScript(t, rt, `
# comment lines are skipped
verdict ifs pretx reject
pretx "41880102" cca
terminate 802154 core
txfailed "41880102" busy
txstarted "41880102"
`)
	assert.Equal(t, "Done\nrejected\nDone\napproved\nDone\napproved\nDone\napproved\nDone\n", out)
	assert.Equal(t, uint64(1), b.Emulators().Get(FeatureCsmaCa).Calls(EventPreTransmission))
	assert.Equal(t, uint64(1), b.Emulators().Get(FeatureIfs).Calls(EventPreTransmission))
	assert.Equal(t, bench.KindStats{Dispatched: 1, Rejected: 1}, b.KindStats(EventPreTransmission))
}

func TestRunNotificationCommands(t *testing.T) {
	rt, b := newTestRunner(t, nil)

	out := runScript(t, rt, `
txready "4188" notready
transmitted "4188"
rxstarted "4188"
rxackstarted
prio idle tx
`)
	assert.Equal(t, strings.Repeat("Done\n", 5), out)
	assert.Equal(t, PrioTx, b.Priority())

	out = runScript(t, rt, "prio tx prio7\nprio prio7 12")
	assert.Equal(t, "Done\nDone\n", out)
	assert.Equal(t, Priority(12), b.Priority())
	assert.Equal(t, 6, b.Journal().Len())
}

func TestRunTx(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Features.CsmaCa.Reject = []string{"txstarted"}
	rt, _ := newTestRunner(t, cfg)

	out := runScript(t, rt, `tx "41880102" cca`)
	assert.Equal(t, "aborted: pretx > txready > txstarted > txfailed\nfailure reported\nDone\n", out)

	out = runScript(t, rt, "verdict csma_ca txstarted approve\ntx \"41880102\"")
	assert.Equal(t, "Done\ntransmitted: pretx > txready > txstarted > transmitted\nDone\n", out)
}

func TestRunHooks(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Features.AckTimeout.Enabled = false
	rt, _ := newTestRunner(t, cfg)

	out := runScript(t, rt, "hooks terminate\nhooks prio")
	assert.Equal(t, "terminate     veto    csma_ca, delayed_trx, ifs, tx_timeout\nDone\n"+
		"prio          notify  csma_ca\nDone\n", out)

	out = runScript(t, rt, "hooks rxackstarted")
	assert.Equal(t, "rxackstarted  notify  \nDone\n", out)

	out = runScript(t, rt, "hooks bogus")
	assert.True(t, strings.HasPrefix(out, "Error: invalid event kind"))
}

func TestRunErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Features.DelayedTrx.Enabled = false
	rt, _ := newTestRunner(t, cfg)

	for _, cmdline := range []string{
		`pretx "zz"`,
		`terminate none nobody`,
		`txfailed "4188" explosion`,
		`prio low high`,
		`verdict delayed_trx terminate reject`,
		`verdict ifs transmitted reject`,
		`verdict nosuch terminate reject`,
		`unknowncmd`,
	} {
		out := runScript(t, rt, cmdline)
		assert.True(t, strings.HasPrefix(out, "Error: "), "%s: %s", cmdline, out)
	}
}

func TestRunVerdictWithoutHook(t *testing.T) {
	rt, b := newTestRunner(t, nil)

	out := runScript(t, rt, "verdict ifs txfailed reject")
	assert.Equal(t, "Error: feature ifs has no txfailed hook\n", out)
	assert.False(t, b.Emulators().Get(FeatureIfs).Rejects(EventTxFailed))
	assert.True(t, b.TxFailed(Frame{0x02, 0x41, 0x88}, TxErrorNoAck))

	out = runScript(t, rt, "verdict delayed_trx pretx reject")
	assert.Equal(t, "Error: feature delayed_trx has no pretx hook\n", out)
	assert.False(t, b.Emulators().Get(FeatureDelayedTrx).Rejects(EventPreTransmission))
}

func TestRunStatsAndNotifications(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Features.Ifs.Reject = []string{"pretx"}
	cfg.Features.Ifs.NotifyOnReject = true
	rt, b := newTestRunner(t, cfg)

	runScript(t, rt, `pretx "4188"`)
	out := runScript(t, rt, "stats")
	assert.Equal(t, "pretx: {dispatched: 1, rejected: 1}\nDone\n", out)

	out = runScript(t, rt, "notifications flush")
	assert.True(t, strings.HasPrefix(out, "- {seq: 1, frame: "), out)
	assert.Contains(t, out, "error: aborted}\nDone\n")
	assert.Equal(t, 0, len(b.Notifications()))

	out = runScript(t, rt, "stats reset\nstats")
	assert.Equal(t, "Done\nDone\n", out)
}

func TestRunJournal(t *testing.T) {
	rt, b := newTestRunner(t, nil)

	out := runScript(t, rt, "rxackstarted\njournal")
	assert.Equal(t, "Done\nack_timeout rxackstarted \nDone\n", out)

	runScript(t, rt, "journal clear")
	assert.Equal(t, 0, b.Journal().Len())
}

func TestRunHelpAndLog(t *testing.T) {
	rt, _ := newTestRunner(t, nil)

	out := runScript(t, rt, "help")
	assert.Contains(t, out, "verdict")
	assert.Contains(t, out, "terminate")

	out = runScript(t, rt, "help pretx")
	assert.Contains(t, out, "pretx \"<frame>\" [cca]")

	out = runScript(t, rt, "log warn\nlog")
	assert.Equal(t, "Done\nwarn\nDone\n", out)
	out = runScript(t, rt, "log note\nlog\nlog off\nlog\nlog none\nlog")
	assert.Equal(t, "Done\nnote\nDone\nDone\noff\nDone\nDone\noff\nDone\n", out)
	out = runScript(t, rt, "log loud")
	assert.True(t, strings.HasPrefix(out, "Error: invalid log level string: loud"), out)
	runScript(t, rt, "log info")
}

func TestRunExit(t *testing.T) {
	rt, _ := newTestRunner(t, nil)

	var out bytes.Buffer
	err := RunScript(rt, strings.NewReader("exit\nrxackstarted\n"), &out, true)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, "> exit\nDone\n", out.String())
}

func TestHelpCoversGrammar(t *testing.T) {
	help := newHelp()
	assert.Equal(t, 18, len(help.names))
	for _, name := range help.names {
		_, ok := help.commands[name]
		assert.True(t, ok, "no help for %s", name)
	}
	assert.Equal(t, "exit", help.names[0])
	assert.Equal(t, "Raise the terminate event.", help.summary("terminate"))
}

func TestHelpGroupsByPolicy(t *testing.T) {
	help := newHelp()
	out := help.outputGeneralHelp()

	veto := strings.Index(out, "Veto events")
	notify := strings.Index(out, "Notification events:")
	bench := strings.Index(out, "Bench:")
	require.True(t, veto >= 0 && veto < notify && notify < bench, out)

	for _, name := range []string{"terminate", "pretx", "txfailed", "txstarted"} {
		idx := strings.Index(out, "\n  "+name+" ")
		assert.True(t, idx > veto && idx < notify, name)
	}
	for _, name := range []string{"txready", "transmitted", "rxstarted", "rxackstarted", "prio"} {
		idx := strings.Index(out, "\n  "+name+" ")
		assert.True(t, idx > notify && idx < bench, name)
	}
	for _, name := range []string{"tx", "hooks", "verdict", "exit"} {
		idx := strings.Index(out, "\n  "+name+" ")
		assert.True(t, idx > bench, name)
	}

	cmdHelp := help.outputCommandHelp("pretx")
	assert.True(t, strings.HasPrefix(cmdHelp, "pretx\n"))
	assert.Contains(t, cmdHelp, "Policy: veto, hooks when enabled: csma_ca, ifs\n")
	assert.Contains(t, cmdHelp, "\nUsage:\n    pretx \"<frame>\" [cca]\n")
	assert.Contains(t, cmdHelp, "\nExample:\n    > pretx \"41880102\" cca\n")

	assert.NotContains(t, help.outputCommandHelp("stats"), "Policy:")
	assert.Equal(t, "nosuch: unknown command, see 'help'\n", help.outputCommandHelp("nosuch"))
}
