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

package types

import (
	"fmt"

	"github.com/simonlingoogle/go-simplelogger"
)

// EventKind is a lifecycle event raised by the driver core into the hook dispatcher.
type EventKind int

const (
	EventTerminate EventKind = iota
	EventPreTransmission
	EventTransmissionReady
	EventTransmitted
	EventTxFailed
	EventTxStarted
	EventRxStarted
	EventRxAckStarted
	EventPriorityChanged

	NumEventKinds = int(iota)
)

// Policy is the composition rule applied to the hooks of one EventKind.
type Policy int

const (
	// PolicyVeto evaluates hooks in order and stops at the first rejection.
	PolicyVeto Policy = iota
	// PolicyNotify invokes every hook in order, without result.
	PolicyNotify
)

func (p Policy) String() string {
	if p == PolicyVeto {
		return "veto"
	}
	return "notify"
}

var eventKindNames = [NumEventKinds]string{
	"terminate",
	"pretx",
	"txready",
	"transmitted",
	"txfailed",
	"txstarted",
	"rxstarted",
	"rxackstarted",
	"prio",
}

// AllEventKinds lists every event kind in declaration order.
var AllEventKinds = [NumEventKinds]EventKind{
	EventTerminate,
	EventPreTransmission,
	EventTransmissionReady,
	EventTransmitted,
	EventTxFailed,
	EventTxStarted,
	EventRxStarted,
	EventRxAckStarted,
	EventPriorityChanged,
}

func (k EventKind) Valid() bool {
	return k >= 0 && int(k) < NumEventKinds
}

func (k EventKind) String() string {
	if !k.Valid() {
		simplelogger.Panicf("invalid EventKind: %d", int(k))
		return "invalid"
	}
	return eventKindNames[k]
}

// Policy returns the composition rule used by the dispatcher for this event kind.
func (k EventKind) Policy() Policy {
	switch k {
	case EventTerminate, EventPreTransmission, EventTxFailed, EventTxStarted:
		return PolicyVeto
	default:
		return PolicyNotify
	}
}

func ParseEventKind(s string) (EventKind, error) {
	for i, name := range eventKindNames {
		if name == s {
			return EventKind(i), nil
		}
	}
	return EventTerminate, fmt.Errorf("invalid event kind: %s", s)
}

// Feature identifies an optional MAC-layer feature module.
type Feature int

const (
	FeatureCsmaCa Feature = iota
	FeatureAckTimeout
	FeatureDelayedTrx
	FeatureIfs
	FeatureTxTimeout

	NumFeatures = int(iota)
)

var featureNames = [NumFeatures]string{"csma_ca", "ack_timeout", "delayed_trx", "ifs", "tx_timeout"}

// AllFeatures lists every feature module in declaration order.
var AllFeatures = [NumFeatures]Feature{FeatureCsmaCa, FeatureAckTimeout, FeatureDelayedTrx, FeatureIfs, FeatureTxTimeout}

func (f Feature) String() string {
	if f < 0 || int(f) >= NumFeatures {
		simplelogger.Panicf("invalid Feature: %d", int(f))
		return "invalid"
	}
	return featureNames[f]
}

func ParseFeature(s string) (Feature, error) {
	for i, name := range featureNames {
		if name == s {
			return Feature(i), nil
		}
	}
	return FeatureCsmaCa, fmt.Errorf("invalid feature: %s", s)
}
