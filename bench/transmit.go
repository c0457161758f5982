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

package bench

import (
	. "github.com/openthread/ot-machooks/types"
)

type TxOutcome int

const (
	TxOutcomeTransmitted TxOutcome = iota
	TxOutcomeDeferred
	TxOutcomeAborted
)

func (o TxOutcome) String() string {
	switch o {
	case TxOutcomeTransmitted:
		return "transmitted"
	case TxOutcomeDeferred:
		return "deferred"
	default:
		return "aborted"
	}
}

// TxResult describes a transmit sequence run by Transmit.
type TxResult struct {
	Outcome TxOutcome
	// Events lists the events raised, in order.
	Events []EventKind
	// Reported is the tx-failed verdict; only meaningful for TxOutcomeAborted.
	Reported bool
}

// Transmit runs the driver transmit sequence for frame:
// pre-transmission, transmission-ready, tx-started and transmitted. A pre-transmission veto defers the
// frame to the vetoing feature; a tx-started veto aborts the transmission and raises tx-failed.
func (b *Bench) Transmit(frame Frame, cca bool) (TxResult, error) {
	res := TxResult{}

	res.Events = append(res.Events, EventPreTransmission)
	if !b.PreTransmission(frame, cca) {
		res.Outcome = TxOutcomeDeferred
		return res, nil
	}

	res.Events = append(res.Events, EventTransmissionReady)
	b.TransmissionReady(frame, true)

	res.Events = append(res.Events, EventTxStarted)
	if !b.TxStarted(frame) {
		res.Events = append(res.Events, EventTxFailed)
		res.Outcome = TxOutcomeAborted
		res.Reported = b.TxFailed(frame, TxErrorAborted)
		return res, nil
	}

	res.Events = append(res.Events, EventTransmitted)
	res.Outcome = TxOutcomeTransmitted
	return res, b.Transmitted(frame)
}
