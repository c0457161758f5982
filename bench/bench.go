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

// Package bench emulates the driver core around a hook dispatcher: it raises lifecycle events, runs
// transmit sequences, keeps dispatch statistics and captures transmitted frames.
package bench

import (
	"time"

	"github.com/pkg/errors"

	"github.com/openthread/ot-machooks/config"
	"github.com/openthread/ot-machooks/logger"
	"github.com/openthread/ot-machooks/macfeature"
	"github.com/openthread/ot-machooks/machooks"
	"github.com/openthread/ot-machooks/pcap"
	"github.com/openthread/ot-machooks/prng"
	. "github.com/openthread/ot-machooks/types"
)

// Notification is a transmit failure reported by a feature through the pre-transmission notifier.
type Notification struct {
	Seq   uint64  `yaml:"seq"`
	Frame string  `yaml:"frame"`
	Err   TxError `yaml:"-"`
	Error string  `yaml:"error"`
}

type Bench struct {
	cfg        *config.Config
	emulators  *macfeature.Set
	journal    *macfeature.Journal
	dispatcher *machooks.Dispatcher
	pcap       pcap.File
	startTime  time.Time
	prio       Priority
	stats      [NumEventKinds]KindStats
	pending    []Notification
	notifySeq  uint64
	notifier   TxFailedNotifier
}

// New builds the feature modules selected by cfg, composes their hook sets and opens the PCAP file.
func New(cfg *config.Config) (*Bench, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := prng.Init(cfg.Seed)
	logger.Debugf("bench PRNG seed: %d", seed)

	journal := macfeature.NewJournal(macfeature.DefaultJournalLimit)
	emulators, err := macfeature.NewSet(&cfg.Features, journal)
	if err != nil {
		return nil, err
	}

	hooks, err := machooks.NewHookSets(emulators.Modules())
	if err != nil {
		return nil, err
	}

	b := &Bench{
		cfg:        cfg,
		emulators:  emulators,
		journal:    journal,
		dispatcher: machooks.NewDispatcher(hooks),
		startTime:  time.Now(),
		prio:       PrioIdle,
	}
	b.notifier = b.onTxFailedNotify

	if cfg.Pcap != "" {
		if b.pcap, err = pcap.NewFile(cfg.Pcap); err != nil {
			return nil, err
		}
		logger.Infof("capturing transmitted frames to %s", cfg.Pcap)
	}
	return b, nil
}

func (b *Bench) Close() error {
	if b.pcap == nil {
		return nil
	}
	err := b.pcap.Close()
	b.pcap = nil
	return err
}

func (b *Bench) Config() *config.Config {
	return b.cfg
}

func (b *Bench) Dispatcher() *machooks.Dispatcher {
	return b.dispatcher
}

func (b *Bench) Emulators() *macfeature.Set {
	return b.emulators
}

func (b *Bench) Journal() *macfeature.Journal {
	return b.journal
}

// Priority returns the priority last announced with a priority-changed event.
func (b *Bench) Priority() Priority {
	return b.prio
}

func (b *Bench) count(kind EventKind, approved bool) bool {
	b.stats[kind].Dispatched++
	if !approved {
		b.stats[kind].Rejected++
		logger.Infof("%s rejected", kind)
	}
	return approved
}

func (b *Bench) Terminate(lvl TermLevel, orig ReqOriginator) bool {
	return b.count(EventTerminate, b.dispatcher.Terminate(lvl, orig))
}

// PreTransmission raises the pre-transmission event with the bench's failure notifier.
func (b *Bench) PreTransmission(frame Frame, cca bool) bool {
	return b.count(EventPreTransmission, b.dispatcher.PreTransmission(frame, cca, b.notifier))
}

func (b *Bench) TransmissionReady(frame Frame, ready bool) {
	b.dispatcher.TransmissionReady(frame, ready)
	b.count(EventTransmissionReady, true)
}

// Transmitted raises the transmitted event and captures the frame.
func (b *Bench) Transmitted(frame Frame) error {
	b.dispatcher.Transmitted(frame)
	b.count(EventTransmitted, true)
	return b.capture(frame)
}

func (b *Bench) TxFailed(frame Frame, err TxError) bool {
	return b.count(EventTxFailed, b.dispatcher.TxFailed(frame, err))
}

func (b *Bench) TxStarted(frame Frame) bool {
	return b.count(EventTxStarted, b.dispatcher.TxStarted(frame))
}

func (b *Bench) RxStarted(frame Frame) {
	b.dispatcher.RxStarted(frame)
	b.count(EventRxStarted, true)
}

func (b *Bench) RxAckStarted() {
	b.dispatcher.RxAckStarted()
	b.count(EventRxAckStarted, true)
}

func (b *Bench) PriorityChanged(oldPrio, newPrio Priority) {
	b.dispatcher.PriorityChanged(oldPrio, newPrio)
	b.count(EventPriorityChanged, true)
	b.prio = newPrio
}

func (b *Bench) capture(frame Frame) error {
	if b.pcap == nil {
		return nil
	}
	psdu := frame.Psdu()
	if psdu == nil {
		return errors.Errorf("malformed frame %s not captured", frame)
	}
	err := b.pcap.AppendFrame(pcap.Frame{
		Timestamp: uint64(time.Since(b.startTime) / time.Microsecond),
		Data:      psdu,
	})
	if err == nil {
		err = b.pcap.Sync()
	}
	return errors.Wrapf(err, "pcap")
}

func (b *Bench) onTxFailedNotify(frame Frame, err TxError) bool {
	b.notifySeq++
	b.pending = append(b.pending, Notification{
		Seq:   b.notifySeq,
		Frame: frame.String(),
		Err:   err,
		Error: err.String(),
	})
	logger.Debugf("tx failure notified: frame=%s err=%s", frame, err)
	return true
}

// Notifications returns the failures reported through the notifier and not yet flushed.
func (b *Bench) Notifications() []Notification {
	res := make([]Notification, len(b.pending))
	copy(res, b.pending)
	return res
}

// FlushNotifications returns and clears the pending failure notifications.
func (b *Bench) FlushNotifications() []Notification {
	res := b.pending
	b.pending = nil
	return res
}
