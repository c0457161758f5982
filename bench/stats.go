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

// KindStats counts the dispatches of one event kind.
type KindStats struct {
	Dispatched uint64 `yaml:"dispatched"`
	Rejected   uint64 `yaml:"rejected,omitempty"`
}

// Stats returns the dispatch statistics of every event kind that was raised at least once, keyed by
// event name.
func (b *Bench) Stats() map[string]KindStats {
	res := make(map[string]KindStats)
	for _, kind := range AllEventKinds {
		if b.stats[kind].Dispatched > 0 {
			res[kind.String()] = b.stats[kind]
		}
	}
	return res
}

// KindStats returns the dispatch statistics of a single event kind.
func (b *Bench) KindStats(kind EventKind) KindStats {
	return b.stats[kind]
}

func (b *Bench) ResetStats() {
	b.stats = [NumEventKinds]KindStats{}
}
