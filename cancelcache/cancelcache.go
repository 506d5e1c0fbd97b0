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

// Package cancelcache implements the cancel disambiguator: a single slot
// that holds a fully-cancelled order's details until the following
// record reveals whether the cancel was the first half of an
// amend-for-price (full cancel immediately followed by a re-add with the
// same id) or a genuine deletion (the wire format has no DELETE kind of
// its own; it is inferred from a full cancel that is NOT followed by a
// same-id re-add).
package cancelcache

import (
	"github.com/HannahAHarris/chix-converter/book"
	"github.com/HannahAHarris/chix-converter/decode"
)

// Held is the cancelled order's snapshot, kept until the next passive
// record resolves it.
type Held struct {
	ID        string
	Volume    int // the cancelled volume; equals the passive's full resting volume by construction of the full-cancel path
	Timestamp int
	Security  string
	Side      decode.Side
	Price     decode.Price
}

// PartialAmend is produced immediately by CacheAndWrite when a cancel did
// not exhaust the passive's resting volume — the only path that yields
// output directly from a cancel, with no disambiguation needed.
type PartialAmend struct {
	ID        string
	Security  string
	Side      decode.Side
	Price     decode.Price
	Volume    int
	Timestamp int
}

// Resolution is the outcome of resolving a held cancellation against the
// next passive record.
type Resolution struct {
	IsAmend bool // true: amend-for-price; false: genuine deletion

	// Populated when IsAmend. Timestamp/Security/Side come from the held
	// cancellation, not the triggering re-add: the cancel and its same-id
	// re-add are distinct wire records, and the amend line reports when
	// and where the cancelled order lived, not when it was replaced.
	AmendPrice     decode.Price
	AmendVolume    int
	AmendTimestamp int
	AmendSecurity  string
	AmendSide      decode.Side

	// Populated when !IsAmend.
	DeletedID        string
	DeletedSecurity  string
	DeletedSide      decode.Side
	DeletedTimestamp int
}

// Cache holds at most one unresolved full cancellation. The zero value is
// empty and ready to use.
type Cache struct {
	filled bool
	held   Held
}

// Empty reports whether the cache currently holds an unresolved
// cancellation.
func (c *Cache) Empty() bool {
	return !c.filled
}

// CacheAndWrite processes a cancel against the passive book. A cancel
// volume at or above the passive's full resting volume is clamped to a
// full cancel: the book volume is driven to zero, the order's snapshot is
// held for the next record to resolve, and no output is produced yet. A
// cancel volume below the resting volume is unambiguous: it is an
// amend-for-volume, emitted immediately as a PartialAmend, and the cache
// is left untouched (empty).
func (c *Cache) CacheAndWrite(b *book.Book, id string, cancelVolume, timestamp int) (*PartialAmend, error) {
	entry, err := b.Lookup(id)
	if err != nil {
		return nil, err
	}

	if cancelVolume >= entry.Volume {
		c.filled = true
		c.held = Held{
			ID:        id,
			Volume:    entry.Volume,
			Timestamp: timestamp,
			Security:  entry.Security,
			Side:      entry.Side,
			Price:     entry.Price,
		}
		if err := b.SetVolume(id, 0); err != nil {
			return nil, err
		}
		return nil, nil
	}

	newVolume := entry.Volume - cancelVolume
	if err := b.SetVolume(id, newVolume); err != nil {
		return nil, err
	}
	return &PartialAmend{
		ID:        id,
		Security:  entry.Security,
		Side:      entry.Side,
		Price:     entry.Price,
		Volume:    newVolume,
		Timestamp: timestamp,
	}, nil
}

// Resolve is invoked only when the next record is a passive Add and the
// cache is non-empty. If the Add's id matches the held cancellation, this
// is an amend-for-price: the new volume is the Add's volume minus the
// held cancel volume, computed exactly as the source computes it — which
// can go negative, since the held volume equals the entire prior resting
// size by construction. That arithmetic is preserved verbatim; see the
// design notes. Otherwise the held order was genuinely deleted. The cache
// is reset either way.
func (c *Cache) Resolve(nextID string, nextPrice decode.Price, nextVolume int) Resolution {
	held := c.held
	c.held = Held{}
	c.filled = false

	if nextID == held.ID {
		return Resolution{
			IsAmend:        true,
			AmendPrice:     nextPrice,
			AmendVolume:    nextVolume - held.Volume,
			AmendTimestamp: held.Timestamp,
			AmendSecurity:  held.Security,
			AmendSide:      held.Side,
		}
	}
	return Resolution{
		IsAmend:          false,
		DeletedID:        held.ID,
		DeletedSecurity:  held.Security,
		DeletedSide:      held.Side,
		DeletedTimestamp: held.Timestamp,
	}
}
