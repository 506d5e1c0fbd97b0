/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package aggregator implements the trade-aggregation cache: a single
// slot that collapses a contiguous run of executions sharing one
// contra-id into a synthesized aggressive ENTER, since the wire format
// never states the aggressive order directly — only the passive fills it
// produced.
//
// This is a single-slot cache, not the ring buffer a recent-trades
// display would use: there is exactly one aggressive order in flight at a
// time in this wire format (records for one session arrive already in
// sequence), so the cache only ever needs to remember the order it is
// currently accumulating.
package aggregator

import "github.com/HannahAHarris/chix-converter/decode"

// Entry is the synthesized aggressive order, ready to be formatted as an
// ENTER line once the run of executions that produced it is known to be
// complete.
type Entry struct {
	ContraID  string
	Side      decode.Side
	Price     decode.Price
	Security  string
	Volume    int
	Timestamp int
}

// Cache holds the in-progress aggregation. The zero value is empty and
// ready to use.
type Cache struct {
	filled bool
	entry  Entry
}

// Empty reports whether the cache currently holds no in-progress
// aggregation.
func (c *Cache) Empty() bool {
	return !c.filled
}

// ContraID returns the contra-id of the in-progress aggregation, or "" if
// the cache is empty.
func (c *Cache) ContraID() string {
	return c.entry.ContraID
}

// Append folds one execution's fill into the cache. Price is last-wins:
// an aggressive walk may cross several price levels, and the synthesized
// entry is required to carry the last fill's price, not a VWAP. If the
// cache was empty, the execution's identifying fields (contra-id,
// security, side, timestamp) seed the new aggregation.
func (c *Cache) Append(volume int, price decode.Price, contraID, security string, side decode.Side, timestamp int) {
	wasEmpty := !c.filled
	c.entry.Volume += volume
	c.entry.Price = price
	if wasEmpty {
		c.entry.ContraID = contraID
		c.entry.Security = security
		c.entry.Side = side
		c.entry.Timestamp = timestamp
		c.filled = true
	}
}

// FlushWithResidual emits the synthesized entry after adding
// residualVolume to it. It does not compare ids itself: the caller uses it
// when the next passive record's order-id equals this aggregation's
// contra-id — the case where a partially-filled aggressive order's
// leftover size was re-entered as a new passive order. The cache is empty
// afterwards regardless of the ok return.
func (c *Cache) FlushWithResidual(residualVolume int) (Entry, bool) {
	if !c.filled {
		return Entry{}, false
	}
	c.entry.Volume += residualVolume
	return c.flush()
}

// Flush emits the synthesized entry with no residual applied.
func (c *Cache) Flush() (Entry, bool) {
	if !c.filled {
		return Entry{}, false
	}
	return c.flush()
}

func (c *Cache) flush() (Entry, bool) {
	e := c.entry
	c.entry = Entry{}
	c.filled = false
	return e, true
}
