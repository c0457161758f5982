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

package machooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/openthread/ot-machooks/types"
)

type call struct {
	Feature Feature
	Kind    EventKind
}

type mockFeature struct {
	id     Feature
	reject map[EventKind]bool
	calls  [NumEventKinds]int
	trace  *[]call

	lastFrame  Frame
	lastReady  bool
	lastLvl    TermLevel
	lastOrig   ReqOriginator
	lastErr    TxError
	lastCca    bool
	lastNotify TxFailedNotifier
	lastPrios  [2]Priority
}

func (m *mockFeature) record(kind EventKind) bool {
	m.calls[kind]++
	*m.trace = append(*m.trace, call{m.id, kind})
	return !m.reject[kind]
}

func (m *mockFeature) Terminate(lvl TermLevel, orig ReqOriginator) bool {
	m.lastLvl, m.lastOrig = lvl, orig
	return m.record(EventTerminate)
}

func (m *mockFeature) PreTransmission(frame Frame, cca bool, notify TxFailedNotifier) bool {
	m.lastFrame, m.lastCca, m.lastNotify = frame, cca, notify
	return m.record(EventPreTransmission)
}

func (m *mockFeature) TransmissionReady(frame Frame, ready bool) {
	m.lastFrame, m.lastReady = frame, ready
	m.record(EventTransmissionReady)
}

func (m *mockFeature) Transmitted(frame Frame) {
	m.lastFrame = frame
	m.record(EventTransmitted)
}

func (m *mockFeature) TxFailed(frame Frame, err TxError) bool {
	m.lastFrame, m.lastErr = frame, err
	return m.record(EventTxFailed)
}

func (m *mockFeature) TxStarted(frame Frame) bool {
	m.lastFrame = frame
	return m.record(EventTxStarted)
}

func (m *mockFeature) RxStarted(frame Frame) {
	m.lastFrame = frame
	m.record(EventRxStarted)
}

func (m *mockFeature) RxAckStarted() {
	m.record(EventRxAckStarted)
}

func (m *mockFeature) PriorityChanged(oldPrio, newPrio Priority) {
	m.lastPrios = [2]Priority{oldPrio, newPrio}
	m.record(EventPriorityChanged)
}

type testBuild struct {
	mocks [NumFeatures]*mockFeature
	trace []call
	d     *Dispatcher
}

// newTestBuild creates a dispatcher with the given features enabled; tx timeout is always enabled.
func newTestBuild(t *testing.T, enabled ...Feature) *testBuild {
	b := &testBuild{}
	var m Modules
	enabled = append(enabled, FeatureTxTimeout)
	for _, f := range enabled {
		mock := &mockFeature{id: f, reject: map[EventKind]bool{}, trace: &b.trace}
		b.mocks[f] = mock
		switch f {
		case FeatureCsmaCa:
			m.CsmaCa = mock
		case FeatureAckTimeout:
			m.AckTimeout = mock
		case FeatureDelayedTrx:
			m.DelayedTrx = mock
		case FeatureIfs:
			m.Ifs = mock
		case FeatureTxTimeout:
			m.TxTimeout = mock
		}
	}
	hs, err := NewHookSets(m)
	require.Nil(t, err)
	b.d = NewDispatcher(hs)
	return b
}

func allFeatures() []Feature {
	return []Feature{FeatureCsmaCa, FeatureAckTimeout, FeatureDelayedTrx, FeatureIfs}
}

// raise dispatches an event of the given kind with fixed parameters and returns the veto result
// (always true for notification events).
func (b *testBuild) raise(kind EventKind) bool {
	frame := Frame{0x03, 0x41, 0x88, 0x01}
	switch kind {
	case EventTerminate:
		return b.d.Terminate(Term802154, ReqOrigHigherLayer)
	case EventPreTransmission:
		return b.d.PreTransmission(frame, true, nil)
	case EventTransmissionReady:
		b.d.TransmissionReady(frame, true)
	case EventTransmitted:
		b.d.Transmitted(frame)
	case EventTxFailed:
		return b.d.TxFailed(frame, TxErrorNoAck)
	case EventTxStarted:
		return b.d.TxStarted(frame)
	case EventRxStarted:
		b.d.RxStarted(frame)
	case EventRxAckStarted:
		b.d.RxAckStarted()
	case EventPriorityChanged:
		b.d.PriorityChanged(PrioIdle, PrioTx)
	}
	return true
}

func (b *testBuild) traceFeatures() []Feature {
	res := []Feature{}
	for _, c := range b.trace {
		res = append(res, c.Feature)
	}
	return res
}

func TestVetoAllApprove(t *testing.T) {
	for _, kind := range AllEventKinds {
		if kind.Policy() != PolicyVeto {
			continue
		}
		b := newTestBuild(t, allFeatures()...)
		assert.True(t, b.raise(kind), kind.String())
		assert.Equal(t, hookOrder[kind], b.traceFeatures(), kind.String())
		for _, f := range hookOrder[kind] {
			assert.Equal(t, 1, b.mocks[f].calls[kind])
		}
	}
}

func TestVetoShortCircuit(t *testing.T) {
	for _, kind := range AllEventKinds {
		if kind.Policy() != PolicyVeto {
			continue
		}
		order := hookOrder[kind]
		for rejectIdx := range order {
			b := newTestBuild(t, allFeatures()...)
			b.mocks[order[rejectIdx]].reject[kind] = true

			assert.False(t, b.raise(kind), "%s rejected by %s", kind, order[rejectIdx])
			assert.Equal(t, order[:rejectIdx+1], b.traceFeatures())
			for i, f := range order {
				expected := 0
				if i <= rejectIdx {
					expected = 1
				}
				assert.Equal(t, expected, b.mocks[f].calls[kind], "%s: calls of %s", kind, f)
			}
		}
	}
}

func TestNotifyInvokesAll(t *testing.T) {
	for _, kind := range AllEventKinds {
		if kind.Policy() != PolicyNotify {
			continue
		}
		b := newTestBuild(t, allFeatures()...)
		// a rejecting verdict has no effect on notifications
		for _, m := range b.mocks {
			m.reject[kind] = true
		}
		assert.True(t, b.raise(kind))
		assert.Equal(t, hookOrder[kind], b.traceFeatures(), kind.String())
		for _, f := range hookOrder[kind] {
			assert.Equal(t, 1, b.mocks[f].calls[kind])
		}
	}
}

func TestEmptyHookSets(t *testing.T) {
	b := newTestBuild(t)

	for _, kind := range AllEventKinds {
		b.trace = b.trace[:0]
		assert.True(t, b.raise(kind), kind.String())
		switch kind {
		case EventTerminate, EventTransmissionReady:
			assert.Equal(t, []Feature{FeatureTxTimeout}, b.traceFeatures())
		default:
			assert.Equal(t, 0, len(b.trace), kind.String())
		}
	}
}

func TestOrderStability(t *testing.T) {
	b := newTestBuild(t, FeatureCsmaCa, FeatureIfs, FeatureDelayedTrx)
	for _, kind := range AllEventKinds {
		b.trace = b.trace[:0]
		b.raise(kind)
		first := b.traceFeatures()
		b.trace = b.trace[:0]
		b.raise(kind)
		assert.Equal(t, first, b.traceFeatures(), kind.String())
	}
}

func TestTerminateRejectedByCsmaCa(t *testing.T) {
	b := newTestBuild(t, FeatureCsmaCa, FeatureAckTimeout)
	b.mocks[FeatureCsmaCa].reject[EventTerminate] = true

	assert.False(t, b.d.Terminate(TermNone, ReqOrigRsch))
	assert.Equal(t, 1, b.mocks[FeatureCsmaCa].calls[EventTerminate])
	assert.Equal(t, TermNone, b.mocks[FeatureCsmaCa].lastLvl)
	assert.Equal(t, ReqOrigRsch, b.mocks[FeatureCsmaCa].lastOrig)
	assert.Equal(t, 0, b.mocks[FeatureAckTimeout].calls[EventTerminate])
	assert.Equal(t, 0, b.mocks[FeatureTxTimeout].calls[EventTerminate])
}

func TestTransmissionReadyTxTimeoutOnly(t *testing.T) {
	b := newTestBuild(t)
	frame := Frame{0x02, 0xaa, 0xbb}

	b.d.TransmissionReady(frame, false)
	txTimeout := b.mocks[FeatureTxTimeout]
	assert.Equal(t, 1, txTimeout.calls[EventTransmissionReady])
	assert.Equal(t, frame, txTimeout.lastFrame)
	assert.False(t, txTimeout.lastReady)
}

func TestPreTransmissionRejectedByIfs(t *testing.T) {
	b := newTestBuild(t, FeatureCsmaCa, FeatureIfs)
	b.mocks[FeatureIfs].reject[EventPreTransmission] = true

	notified := 0
	notify := func(frame Frame, err TxError) bool {
		notified++
		return true
	}
	frame := Frame{0x01, 0x55}
	assert.False(t, b.d.PreTransmission(frame, true, notify))
	assert.Equal(t, []Feature{FeatureCsmaCa, FeatureIfs}, b.traceFeatures())

	ifs := b.mocks[FeatureIfs]
	assert.True(t, ifs.lastCca)
	assert.Equal(t, frame, ifs.lastFrame)
	// the notifier is handed through unchanged and untouched by the dispatcher
	assert.Equal(t, 0, notified)
	require.NotNil(t, ifs.lastNotify)
	ifs.lastNotify(frame, TxErrorBusyChannel)
	assert.Equal(t, 1, notified)
}

func TestPriorityChangedWithoutCsmaCa(t *testing.T) {
	b := newTestBuild(t, FeatureAckTimeout, FeatureDelayedTrx, FeatureIfs)
	b.d.PriorityChanged(PrioRx, PrioTx)
	assert.Equal(t, 0, len(b.trace))
}

func TestParametersPassedThrough(t *testing.T) {
	b := newTestBuild(t, allFeatures()...)

	assert.True(t, b.d.TxFailed(Frame{0x00}, TxErrorTimeslotEnded))
	assert.Equal(t, TxErrorTimeslotEnded, b.mocks[FeatureCsmaCa].lastErr)
	assert.Equal(t, TxErrorTimeslotEnded, b.mocks[FeatureAckTimeout].lastErr)

	b.d.PriorityChanged(PrioIdleListening, PrioDetect)
	assert.Equal(t, [2]Priority{PrioIdleListening, PrioDetect}, b.mocks[FeatureCsmaCa].lastPrios)

	rx := Frame{0x02, 0x02, 0x00}
	b.d.RxStarted(rx)
	assert.Equal(t, rx, b.mocks[FeatureDelayedTrx].lastFrame)
}

type countingFeature struct {
	calls int
}

func (c *countingFeature) Terminate(TermLevel, ReqOriginator) bool { c.calls++; return true }
func (c *countingFeature) PreTransmission(Frame, bool, TxFailedNotifier) bool {
	c.calls++
	return true
}
func (c *countingFeature) TransmissionReady(Frame, bool)             { c.calls++ }
func (c *countingFeature) Transmitted(Frame)                         { c.calls++ }
func (c *countingFeature) TxFailed(Frame, TxError) bool              { c.calls++; return true }
func (c *countingFeature) TxStarted(Frame) bool                      { c.calls++; return true }
func (c *countingFeature) RxStarted(Frame)                           { c.calls++ }
func (c *countingFeature) RxAckStarted()                             { c.calls++ }
func (c *countingFeature) PriorityChanged(oldPrio, newPrio Priority) { c.calls++ }

func TestDispatchDoesNotAllocate(t *testing.T) {
	c := &countingFeature{}
	hs, err := NewHookSets(Modules{CsmaCa: c, AckTimeout: c, DelayedTrx: c, Ifs: c, TxTimeout: c})
	require.Nil(t, err)
	d := NewDispatcher(hs)

	frame := Frame{0x02, 0x01, 0x02}
	notify := TxFailedNotifier(func(Frame, TxError) bool { return true })
	allocs := testing.AllocsPerRun(100, func() {
		d.Terminate(Term802154, ReqOrigCore)
		d.PreTransmission(frame, true, notify)
		d.TransmissionReady(frame, true)
		d.Transmitted(frame)
		d.TxFailed(frame, TxErrorAborted)
		d.TxStarted(frame)
		d.RxStarted(frame)
		d.RxAckStarted()
		d.PriorityChanged(PrioRx, PrioTx)
	})
	assert.Equal(t, 0.0, allocs)
	assert.True(t, c.calls > 0)
}
