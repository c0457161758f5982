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

// Package machooks dispatches the lifecycle events of the 802.15.4 driver core to the optional MAC
// feature modules enabled for a build.
//
// Each event kind has an ordered, immutable set of hooks. Veto events (terminate, pre-transmission,
// tx-failed, tx-started) are approved only if every hook approves; evaluation stops at the first
// rejection. Notification events invoke every hook in order and return nothing.
package machooks

import (
	. "github.com/openthread/ot-machooks/types"
)

// Terminator may veto termination of the ongoing driver operation.
type Terminator interface {
	Terminate(lvl TermLevel, orig ReqOriginator) bool
}

// PreTransmitter may veto a transmission before it is started. notify lets it report the failure later.
type PreTransmitter interface {
	PreTransmission(frame Frame, cca bool, notify TxFailedNotifier) bool
}

type TransmissionReadyObserver interface {
	TransmissionReady(frame Frame, ready bool)
}

type TransmittedObserver interface {
	Transmitted(frame Frame)
}

// TxFailedHandler may veto propagation of a transmit failure to the higher layer.
type TxFailedHandler interface {
	TxFailed(frame Frame, err TxError) bool
}

// TxStartedHandler may veto continuation of a transmission that has just started.
type TxStartedHandler interface {
	TxStarted(frame Frame) bool
}

type RxStartedObserver interface {
	RxStarted(frame Frame)
}

type RxAckStartedObserver interface {
	RxAckStarted()
}

type PriorityObserver interface {
	PriorityChanged(oldPrio, newPrio Priority)
}

// CsmaCa is the set of hooks the CSMA-CA feature contributes.
type CsmaCa interface {
	Terminator
	PreTransmitter
	TxFailedHandler
	TxStartedHandler
	PriorityObserver
}

// AckTimeout is the set of hooks the ACK timeout feature contributes.
type AckTimeout interface {
	Terminator
	TransmittedObserver
	TxFailedHandler
	TxStartedHandler
	RxAckStartedObserver
}

// DelayedTrx is the set of hooks the delayed transmit/receive feature contributes.
type DelayedTrx interface {
	Terminator
	RxStartedObserver
}

// Ifs is the set of hooks the inter-frame spacing feature contributes.
type Ifs interface {
	Terminator
	PreTransmitter
	TransmittedObserver
}

// TxTimeout is the set of hooks the transmit timeout feature contributes. It is part of every build.
type TxTimeout interface {
	Terminator
	TransmissionReadyObserver
}

// Modules selects the feature modules of a build. A nil field disables that feature.
type Modules struct {
	CsmaCa     CsmaCa
	AckTimeout AckTimeout
	DelayedTrx DelayedTrx
	Ifs        Ifs
	TxTimeout  TxTimeout
}

// Enabled reports whether the given feature is present in m.
func (m Modules) Enabled(f Feature) bool {
	switch f {
	case FeatureCsmaCa:
		return m.CsmaCa != nil
	case FeatureAckTimeout:
		return m.AckTimeout != nil
	case FeatureDelayedTrx:
		return m.DelayedTrx != nil
	case FeatureIfs:
		return m.Ifs != nil
	case FeatureTxTimeout:
		return m.TxTimeout != nil
	default:
		return false
	}
}
