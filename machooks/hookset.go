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
	"strings"

	"github.com/pkg/errors"

	"github.com/openthread/ot-machooks/logger"
	. "github.com/openthread/ot-machooks/types"
)

var (
	// ErrTxTimeoutMissing is returned when a build is composed without the transmit timeout feature.
	ErrTxTimeoutMissing = errors.New("tx timeout feature module is required")
)

// hookOrder is the evaluation order of the feature hooks, per event kind. Enabling or disabling a
// feature only adds or removes its own entry.
var hookOrder = [NumEventKinds][]Feature{
	EventTerminate:         {FeatureCsmaCa, FeatureAckTimeout, FeatureDelayedTrx, FeatureIfs, FeatureTxTimeout},
	EventPreTransmission:   {FeatureCsmaCa, FeatureIfs},
	EventTransmissionReady: {FeatureTxTimeout},
	EventTransmitted:       {FeatureAckTimeout, FeatureIfs},
	EventTxFailed:          {FeatureCsmaCa, FeatureAckTimeout},
	EventTxStarted:         {FeatureCsmaCa, FeatureAckTimeout},
	EventRxStarted:         {FeatureDelayedTrx},
	EventRxAckStarted:      {FeatureAckTimeout},
	EventPriorityChanged:   {FeatureCsmaCa},
}

// HookSets holds the ordered hooks of every event kind. It is immutable once built.
type HookSets struct {
	terminate    []Terminator
	preTx        []PreTransmitter
	txReady      []TransmissionReadyObserver
	transmitted  []TransmittedObserver
	txFailed     []TxFailedHandler
	txStarted    []TxStartedHandler
	rxStarted    []RxStartedObserver
	rxAckStarted []RxAckStartedObserver
	prioChanged  []PriorityObserver

	features [NumEventKinds][]Feature
}

// NewHookSets composes the hook sets of a build from its enabled feature modules.
func NewHookSets(m Modules) (*HookSets, error) {
	if !m.Enabled(FeatureTxTimeout) {
		return nil, ErrTxTimeoutMissing
	}

	hs := &HookSets{
		terminate:    make([]Terminator, 0, len(hookOrder[EventTerminate])),
		preTx:        make([]PreTransmitter, 0, len(hookOrder[EventPreTransmission])),
		txReady:      make([]TransmissionReadyObserver, 0, len(hookOrder[EventTransmissionReady])),
		transmitted:  make([]TransmittedObserver, 0, len(hookOrder[EventTransmitted])),
		txFailed:     make([]TxFailedHandler, 0, len(hookOrder[EventTxFailed])),
		txStarted:    make([]TxStartedHandler, 0, len(hookOrder[EventTxStarted])),
		rxStarted:    make([]RxStartedObserver, 0, len(hookOrder[EventRxStarted])),
		rxAckStarted: make([]RxAckStartedObserver, 0, len(hookOrder[EventRxAckStarted])),
		prioChanged:  make([]PriorityObserver, 0, len(hookOrder[EventPriorityChanged])),
	}

	for _, kind := range AllEventKinds {
		hs.features[kind] = make([]Feature, 0, len(hookOrder[kind]))
		for _, f := range hookOrder[kind] {
			mod := m.module(f)
			if mod == nil {
				continue
			}
			hs.add(kind, mod)
			hs.features[kind] = append(hs.features[kind], f)
		}
		logger.Debugf("hooks %-12s: %s", kind, joinFeatures(hs.features[kind]))
	}
	return hs, nil
}

// Contributes reports whether feature f has a hook for event kind when it is enabled.
func Contributes(f Feature, kind EventKind) bool {
	if !kind.Valid() {
		return false
	}
	for _, hf := range hookOrder[kind] {
		if hf == f {
			return true
		}
	}
	return false
}

func (m Modules) module(f Feature) interface{} {
	switch f {
	case FeatureCsmaCa:
		if m.CsmaCa != nil {
			return m.CsmaCa
		}
	case FeatureAckTimeout:
		if m.AckTimeout != nil {
			return m.AckTimeout
		}
	case FeatureDelayedTrx:
		if m.DelayedTrx != nil {
			return m.DelayedTrx
		}
	case FeatureIfs:
		if m.Ifs != nil {
			return m.Ifs
		}
	case FeatureTxTimeout:
		if m.TxTimeout != nil {
			return m.TxTimeout
		}
	}
	return nil
}

// add appends the capability of mod for the given event kind. hookOrder only names features whose
// module interface embeds that capability.
func (hs *HookSets) add(kind EventKind, mod interface{}) {
	switch kind {
	case EventTerminate:
		hs.terminate = append(hs.terminate, mod.(Terminator))
	case EventPreTransmission:
		hs.preTx = append(hs.preTx, mod.(PreTransmitter))
	case EventTransmissionReady:
		hs.txReady = append(hs.txReady, mod.(TransmissionReadyObserver))
	case EventTransmitted:
		hs.transmitted = append(hs.transmitted, mod.(TransmittedObserver))
	case EventTxFailed:
		hs.txFailed = append(hs.txFailed, mod.(TxFailedHandler))
	case EventTxStarted:
		hs.txStarted = append(hs.txStarted, mod.(TxStartedHandler))
	case EventRxStarted:
		hs.rxStarted = append(hs.rxStarted, mod.(RxStartedObserver))
	case EventRxAckStarted:
		hs.rxAckStarted = append(hs.rxAckStarted, mod.(RxAckStartedObserver))
	case EventPriorityChanged:
		hs.prioChanged = append(hs.prioChanged, mod.(PriorityObserver))
	default:
		logger.Panicf("invalid event kind: %d", int(kind))
	}
}

// Features returns the features contributing hooks to kind, in evaluation order.
func (hs *HookSets) Features(kind EventKind) []Feature {
	if !kind.Valid() {
		return nil
	}
	res := make([]Feature, len(hs.features[kind]))
	copy(res, hs.features[kind])
	return res
}

// Len returns the number of hooks registered for kind.
func (hs *HookSets) Len(kind EventKind) int {
	if !kind.Valid() {
		return 0
	}
	return len(hs.features[kind])
}

func joinFeatures(features []Feature) string {
	if len(features) == 0 {
		return "-"
	}
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}
