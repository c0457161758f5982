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
	. "github.com/openthread/ot-machooks/types"
)

// Dispatcher raises driver core events into the hook sets of a build. All entry points run
// synchronously in the caller's context. They do not block, allocate or lock, and must not be called
// concurrently.
type Dispatcher struct {
	hooks *HookSets
}

func NewDispatcher(hooks *HookSets) *Dispatcher {
	return &Dispatcher{
		hooks: hooks,
	}
}

// Hooks returns the hook sets the dispatcher walks.
func (d *Dispatcher) Hooks() *HookSets {
	return d.hooks
}

// Terminate asks every feature to terminate its ongoing operation. Returns false as soon as a feature
// refuses; later features are then not asked.
func (d *Dispatcher) Terminate(lvl TermLevel, orig ReqOriginator) bool {
	for _, h := range d.hooks.terminate {
		if !h.Terminate(lvl, orig) {
			return false
		}
	}
	return true
}

// PreTransmission returns true if the transmission of frame may start.
func (d *Dispatcher) PreTransmission(frame Frame, cca bool, notify TxFailedNotifier) bool {
	for _, h := range d.hooks.preTx {
		if !h.PreTransmission(frame, cca, notify) {
			return false
		}
	}
	return true
}

func (d *Dispatcher) TransmissionReady(frame Frame, ready bool) {
	for _, h := range d.hooks.txReady {
		h.TransmissionReady(frame, ready)
	}
}

func (d *Dispatcher) Transmitted(frame Frame) {
	for _, h := range d.hooks.transmitted {
		h.Transmitted(frame)
	}
}

// TxFailed returns true if the failure of frame should be reported to the higher layer.
func (d *Dispatcher) TxFailed(frame Frame, err TxError) bool {
	for _, h := range d.hooks.txFailed {
		if !h.TxFailed(frame, err) {
			return false
		}
	}
	return true
}

// TxStarted returns true if the started transmission of frame may continue.
func (d *Dispatcher) TxStarted(frame Frame) bool {
	for _, h := range d.hooks.txStarted {
		if !h.TxStarted(frame) {
			return false
		}
	}
	return true
}

func (d *Dispatcher) RxStarted(frame Frame) {
	for _, h := range d.hooks.rxStarted {
		h.RxStarted(frame)
	}
}

func (d *Dispatcher) RxAckStarted() {
	for _, h := range d.hooks.rxAckStarted {
		h.RxAckStarted()
	}
}

func (d *Dispatcher) PriorityChanged(oldPrio, newPrio Priority) {
	for _, h := range d.hooks.prioChanged {
		h.PriorityChanged(oldPrio, newPrio)
	}
}
