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
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/simonlingoogle/go-simplelogger"
)

// Frame is a reference to a driver-owned radio frame buffer. The first byte is the PHR (PSDU length),
// followed by the PSDU. Hooks may read it but must not modify it.
type Frame []byte

// Psdu returns the PSDU part of the frame, or nil if the frame is malformed.
func (f Frame) Psdu() []byte {
	if len(f) == 0 || int(f[0]) > len(f)-1 {
		return nil
	}
	return f[1 : 1+int(f[0])]
}

func (f Frame) String() string {
	return hex.EncodeToString(f)
}

// ParseFrame parses a hex string into a Frame. If the PHR does not match the payload length, a PHR is
// prepended so that the frame is always well-formed.
func ParseFrame(s string) (Frame, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxPsduLen+1 {
		return nil, fmt.Errorf("frame too long: %d bytes", len(data))
	}
	if len(data) > 0 && int(data[0]) == len(data)-1 {
		return data, nil
	}
	if len(data) > MaxPsduLen {
		return nil, fmt.Errorf("frame too long: %d bytes", len(data))
	}
	return append(Frame{byte(len(data))}, data...), nil
}

const (
	MaxPsduLen = 127
)

// TermLevel is the level of termination requested from the driver core.
type TermLevel int

const (
	// TermNone terminates only non-802.15.4 operations.
	TermNone TermLevel = 0
	// Term802154 terminates 802.15.4 operations as well.
	Term802154 TermLevel = 1
)

func (l TermLevel) String() string {
	switch l {
	case TermNone:
		return "none"
	case Term802154:
		return "802154"
	default:
		simplelogger.Panicf("invalid TermLevel: %d", int(l))
		return "invalid"
	}
}

func ParseTermLevel(s string) (TermLevel, error) {
	switch s {
	case "none":
		return TermNone, nil
	case "802154", "802.15.4":
		return Term802154, nil
	default:
		return TermNone, fmt.Errorf("invalid termination level: %s", s)
	}
}

// ReqOriginator identifies the module that requested a state change of the driver core.
type ReqOriginator int

const (
	ReqOrigHigherLayer ReqOriginator = 0
	ReqOrigCore        ReqOriginator = 1
	ReqOrigRsch        ReqOriginator = 2
	ReqOrigCsmaCa      ReqOriginator = 3
	ReqOrigAckTimeout  ReqOriginator = 4
	ReqOrigDelayedTrx  ReqOriginator = 5
	ReqOrigIfs         ReqOriginator = 6
	ReqOrigTxTimeout   ReqOriginator = 7
)

var reqOriginatorNames = []string{"higher", "core", "rsch", "csmaca", "acktimeout", "delayedtrx", "ifs", "txtimeout"}

func (o ReqOriginator) String() string {
	if o < 0 || int(o) >= len(reqOriginatorNames) {
		simplelogger.Panicf("invalid ReqOriginator: %d", int(o))
		return "invalid"
	}
	return reqOriginatorNames[o]
}

func ParseReqOriginator(s string) (ReqOriginator, error) {
	for i, name := range reqOriginatorNames {
		if name == s {
			return ReqOriginator(i), nil
		}
	}
	return ReqOrigHigherLayer, fmt.Errorf("invalid request originator: %s", s)
}

// TxError classifies a failed transmission.
type TxError int

const (
	TxErrorNone           TxError = 0
	TxErrorBusyChannel    TxError = 1
	TxErrorInvalidAck     TxError = 2
	TxErrorNoMem          TxError = 3
	TxErrorTimeslotEnded  TxError = 4
	TxErrorNoAck          TxError = 5
	TxErrorAborted        TxError = 6
	TxErrorTimeslotDenied TxError = 7
)

var txErrorNames = []string{"none", "busy", "invalidack", "nomem", "timeslotended", "noack", "aborted",
	"timeslotdenied"}

func (e TxError) String() string {
	if e < 0 || int(e) >= len(txErrorNames) {
		simplelogger.Panicf("invalid TxError: %d", int(e))
		return "invalid"
	}
	return txErrorNames[e]
}

func ParseTxError(s string) (TxError, error) {
	for i, name := range txErrorNames {
		if name == s {
			return TxError(i), nil
		}
	}
	return TxErrorNone, fmt.Errorf("invalid tx error: %s", s)
}

// Priority is the radio scheduler priority level granted to the driver core.
type Priority uint32

const (
	PrioIdle          Priority = 0
	PrioIdleListening Priority = 1
	PrioRx            Priority = 2
	PrioDetect        Priority = 3
	PrioTx            Priority = 4
	PrioMax                    = PrioTx
)

var priorityNames = []string{"idle", "listening", "rx", "detect", "tx"}

func (p Priority) String() string {
	if int(p) < len(priorityNames) {
		return priorityNames[p]
	}
	return fmt.Sprintf("prio%d", uint32(p))
}

// ParsePriority accepts a priority name, a bare number or the "prio<N>" form printed by String.
func ParsePriority(s string) (Priority, error) {
	for i, name := range priorityNames {
		if name == s {
			return Priority(i), nil
		}
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "prio"), 10, 32)
	if err != nil {
		return PrioIdle, fmt.Errorf("invalid priority: %s", s)
	}
	return Priority(n), nil
}

// TxFailedNotifier is supplied by the driver core with the pre-transmission event. A hook that vetoes
// the transmission may use it to report the failure later instead of touching driver state directly.
// Its contract (timing, idempotency) is owned by the driver core.
type TxFailedNotifier func(frame Frame, err TxError) bool
