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

// Package macfeature emulates the optional MAC feature modules of the driver. An Emulator answers
// every hook with a scripted verdict and records each invocation in a Journal.
package macfeature

import (
	"fmt"
	"math/rand"

	"github.com/openthread/ot-machooks/config"
	"github.com/openthread/ot-machooks/logger"
	"github.com/openthread/ot-machooks/machooks"
	"github.com/openthread/ot-machooks/prng"
	. "github.com/openthread/ot-machooks/types"
)

type Emulator struct {
	feature           Feature
	reject            [NumEventKinds]bool
	rejectProbability float64
	notifyOnReject    bool
	rng               *rand.Rand
	journal           *Journal
	calls             [NumEventKinds]uint64
}

// NewEmulator creates the emulator of feature f, scripted by cfg. journal may be nil.
func NewEmulator(f Feature, cfg *config.FeatureConfig, journal *Journal) (*Emulator, error) {
	kinds, err := cfg.RejectKinds(f)
	if err != nil {
		return nil, err
	}
	e := &Emulator{
		feature:           f,
		rejectProbability: cfg.RejectProbability,
		notifyOnReject:    cfg.NotifyOnReject,
		rng:               rand.New(rand.NewSource(int64(prng.NewFeatureRandomSeed()))),
		journal:           journal,
	}
	for _, kind := range kinds {
		e.reject[kind] = true
	}
	return e, nil
}

func (e *Emulator) Feature() Feature {
	return e.feature
}

// SetReject changes the scripted verdict of the emulator for a veto event kind of its feature.
func (e *Emulator) SetReject(kind EventKind, reject bool) {
	logger.AssertTrue(kind.Valid() && kind.Policy() == PolicyVeto, "not a veto event: %d", int(kind))
	logger.AssertTrue(machooks.Contributes(e.feature, kind), "feature %s has no %s hook", e.feature, kind)
	e.reject[kind] = reject
}

func (e *Emulator) Rejects(kind EventKind) bool {
	return e.reject[kind]
}

// Calls returns how often the hook of kind was invoked.
func (e *Emulator) Calls(kind EventKind) uint64 {
	return e.calls[kind]
}

func (e *Emulator) verdict(kind EventKind) bool {
	if e.reject[kind] {
		return false
	}
	if e.rejectProbability > 0 && e.rng.Float64() < e.rejectProbability {
		return false
	}
	return true
}

func (e *Emulator) record(kind EventKind, approved bool, params string) {
	e.calls[kind]++
	if e.journal != nil {
		e.journal.add(Invocation{
			Feature:  e.feature,
			Kind:     kind,
			Params:   params,
			Approved: approved,
		})
	}
}

func (e *Emulator) Terminate(lvl TermLevel, orig ReqOriginator) bool {
	ok := e.verdict(EventTerminate)
	e.record(EventTerminate, ok, fmt.Sprintf("lvl=%s orig=%s", lvl, orig))
	return ok
}

func (e *Emulator) PreTransmission(frame Frame, cca bool, notify TxFailedNotifier) bool {
	ok := e.verdict(EventPreTransmission)
	e.record(EventPreTransmission, ok, fmt.Sprintf("frame=%s cca=%v", frame, cca))
	if !ok && e.notifyOnReject && notify != nil {
		notify(frame, e.failureReason())
	}
	return ok
}

func (e *Emulator) failureReason() TxError {
	if e.feature == FeatureCsmaCa {
		return TxErrorBusyChannel
	}
	return TxErrorAborted
}

func (e *Emulator) TransmissionReady(frame Frame, ready bool) {
	e.record(EventTransmissionReady, true, fmt.Sprintf("frame=%s ready=%v", frame, ready))
}

func (e *Emulator) Transmitted(frame Frame) {
	e.record(EventTransmitted, true, fmt.Sprintf("frame=%s", frame))
}

func (e *Emulator) TxFailed(frame Frame, err TxError) bool {
	ok := e.verdict(EventTxFailed)
	e.record(EventTxFailed, ok, fmt.Sprintf("frame=%s err=%s", frame, err))
	return ok
}

func (e *Emulator) TxStarted(frame Frame) bool {
	ok := e.verdict(EventTxStarted)
	e.record(EventTxStarted, ok, fmt.Sprintf("frame=%s", frame))
	return ok
}

func (e *Emulator) RxStarted(frame Frame) {
	e.record(EventRxStarted, true, fmt.Sprintf("frame=%s", frame))
}

func (e *Emulator) RxAckStarted() {
	e.record(EventRxAckStarted, true, "")
}

func (e *Emulator) PriorityChanged(oldPrio, newPrio Priority) {
	e.record(EventPriorityChanged, true, fmt.Sprintf("old=%s new=%s", oldPrio, newPrio))
}

// Set is the group of emulators of one build, indexed by feature.
type Set struct {
	emulators [NumFeatures]*Emulator
}

// NewSet creates an emulator for every feature enabled in cfg.
func NewSet(cfg *config.FeaturesConfig, journal *Journal) (*Set, error) {
	s := &Set{}
	for _, f := range AllFeatures {
		fc := cfg.Get(f)
		if !fc.Enabled {
			continue
		}
		e, err := NewEmulator(f, fc, journal)
		if err != nil {
			return nil, err
		}
		s.emulators[f] = e
	}
	return s, nil
}

// Get returns the emulator of f, or nil if f is disabled.
func (s *Set) Get(f Feature) *Emulator {
	if f < 0 || int(f) >= NumFeatures {
		return nil
	}
	return s.emulators[f]
}

// Modules returns the feature-module table of the build.
func (s *Set) Modules() machooks.Modules {
	var m machooks.Modules
	if e := s.emulators[FeatureCsmaCa]; e != nil {
		m.CsmaCa = e
	}
	if e := s.emulators[FeatureAckTimeout]; e != nil {
		m.AckTimeout = e
	}
	if e := s.emulators[FeatureDelayedTrx]; e != nil {
		m.DelayedTrx = e
	}
	if e := s.emulators[FeatureIfs]; e != nil {
		m.Ifs = e
	}
	if e := s.emulators[FeatureTxTimeout]; e != nil {
		m.TxTimeout = e
	}
	return m
}
