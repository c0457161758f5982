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

package macfeature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthread/ot-machooks/config"
	"github.com/openthread/ot-machooks/machooks"
	"github.com/openthread/ot-machooks/prng"
	. "github.com/openthread/ot-machooks/types"
)

func TestEmulatorScriptedVerdicts(t *testing.T) {
	j := NewJournal(0)
	e, err := NewEmulator(FeatureCsmaCa, &config.FeatureConfig{Enabled: true, Reject: []string{"txstarted"}}, j)
	require.Nil(t, err)

	frame := Frame{0x01, 0x42}
	assert.True(t, e.Terminate(Term802154, ReqOrigCore))
	assert.False(t, e.TxStarted(frame))
	assert.True(t, e.TxFailed(frame, TxErrorNoAck))

	e.SetReject(EventTerminate, true)
	assert.False(t, e.Terminate(Term802154, ReqOrigCore))
	assert.True(t, e.Rejects(EventTerminate))

	assert.Equal(t, uint64(2), e.Calls(EventTerminate))
	assert.Equal(t, 4, j.Len())
	entries := j.Entries()
	assert.Equal(t, Invocation{FeatureCsmaCa, EventTxStarted, "frame=0142", false}, entries[1])
	assert.Equal(t, "csma_ca     terminate    lvl=802154 orig=core -> approve", entries[0].String())
}

func TestEmulatorSetRejectNotification(t *testing.T) {
	e, err := NewEmulator(FeatureIfs, &config.FeatureConfig{Enabled: true}, nil)
	require.Nil(t, err)
	assert.Panics(t, func() {
		e.SetReject(EventTransmitted, true)
	})
	assert.Panics(t, func() {
		e.SetReject(EventTxFailed, true)
	})
	assert.False(t, e.Rejects(EventTxFailed))
}

func TestEmulatorNotifyOnReject(t *testing.T) {
	e, err := NewEmulator(FeatureCsmaCa, &config.FeatureConfig{
		Enabled:        true,
		Reject:         []string{"pretx"},
		NotifyOnReject: true,
	}, nil)
	require.Nil(t, err)

	var reported []TxError
	notify := func(frame Frame, err TxError) bool {
		reported = append(reported, err)
		return true
	}
	assert.False(t, e.PreTransmission(Frame{0x00}, true, notify))
	assert.Equal(t, []TxError{TxErrorBusyChannel}, reported)

	// nil notifier is tolerated
	assert.False(t, e.PreTransmission(Frame{0x00}, true, nil))
}

func TestEmulatorRejectProbability(t *testing.T) {
	prng.Init(99)
	always, err := NewEmulator(FeatureAckTimeout, &config.FeatureConfig{Enabled: true, RejectProbability: 1}, nil)
	require.Nil(t, err)
	never, err := NewEmulator(FeatureAckTimeout, &config.FeatureConfig{Enabled: true, RejectProbability: 0}, nil)
	require.Nil(t, err)

	for i := 0; i < 100; i++ {
		assert.False(t, always.TxStarted(Frame{0x00}))
		assert.True(t, never.TxStarted(Frame{0x00}))
	}
	// notifications are never affected
	always.Transmitted(Frame{0x00})
	assert.Equal(t, uint64(1), always.Calls(EventTransmitted))
}

func TestEmulatorInvalidConfig(t *testing.T) {
	_, err := NewEmulator(FeatureIfs, &config.FeatureConfig{Enabled: true, Reject: []string{"rxstarted"}}, nil)
	assert.NotNil(t, err)
}

func TestJournalLimit(t *testing.T) {
	j := NewJournal(3)
	e, err := NewEmulator(FeatureDelayedTrx, &config.FeatureConfig{Enabled: true}, j)
	require.Nil(t, err)

	for i := 0; i < 5; i++ {
		e.RxStarted(Frame{0x01, byte(i)})
	}
	assert.Equal(t, 3, j.Len())
	assert.Equal(t, uint64(2), j.Dropped())
	assert.Equal(t, "frame=0102", j.Entries()[0].Params)

	j.Clear()
	assert.Equal(t, 0, j.Len())
	assert.Equal(t, uint64(0), j.Dropped())
}

func TestSetModules(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Features.AckTimeout.Enabled = false
	cfg.Features.DelayedTrx.Enabled = false

	j := NewJournal(0)
	s, err := NewSet(&cfg.Features, j)
	require.Nil(t, err)
	assert.Nil(t, s.Get(FeatureAckTimeout))
	assert.NotNil(t, s.Get(FeatureCsmaCa))
	assert.Nil(t, s.Get(Feature(NumFeatures)))

	m := s.Modules()
	assert.True(t, m.Enabled(FeatureCsmaCa))
	assert.False(t, m.Enabled(FeatureAckTimeout))
	assert.False(t, m.Enabled(FeatureDelayedTrx))
	assert.Nil(t, m.AckTimeout)

	hs, err := machooks.NewHookSets(m)
	require.Nil(t, err)
	d := machooks.NewDispatcher(hs)

	s.Get(FeatureCsmaCa).SetReject(EventTerminate, true)
	assert.False(t, d.Terminate(Term802154, ReqOrigHigherLayer))
	assert.Equal(t, 1, j.Len())
	assert.Equal(t, uint64(0), s.Get(FeatureTxTimeout).Calls(EventTerminate))
}
