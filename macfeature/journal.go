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
	"fmt"

	. "github.com/openthread/ot-machooks/types"
)

const (
	DefaultJournalLimit = 1000
)

// Invocation is one recorded hook call.
type Invocation struct {
	Feature  Feature
	Kind     EventKind
	Params   string
	Approved bool
}

func (inv Invocation) String() string {
	verdict := ""
	if inv.Kind.Policy() == PolicyVeto {
		if inv.Approved {
			verdict = " -> approve"
		} else {
			verdict = " -> reject"
		}
	}
	return fmt.Sprintf("%-11s %-12s %s%s", inv.Feature, inv.Kind, inv.Params, verdict)
}

// Journal keeps the most recent invocations, up to a limit.
type Journal struct {
	entries []Invocation
	limit   int
	dropped uint64
}

func NewJournal(limit int) *Journal {
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	return &Journal{
		limit: limit,
	}
}

func (j *Journal) add(inv Invocation) {
	if len(j.entries) >= j.limit {
		copy(j.entries, j.entries[1:])
		j.entries = j.entries[:len(j.entries)-1]
		j.dropped++
	}
	j.entries = append(j.entries, inv)
}

// Entries returns a copy of the recorded invocations, oldest first.
func (j *Journal) Entries() []Invocation {
	res := make([]Invocation, len(j.entries))
	copy(res, j.entries)
	return res
}

func (j *Journal) Len() int {
	return len(j.entries)
}

// Dropped returns the number of invocations discarded because of the limit.
func (j *Journal) Dropped() uint64 {
	return j.dropped
}

func (j *Journal) Clear() {
	j.entries = j.entries[:0]
	j.dropped = 0
}
