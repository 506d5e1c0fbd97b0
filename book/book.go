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

// Package book implements the per-order passive book: the mapping from
// order-id to the resting order's {security, side, price, volume}.
//
// Unlike the store pattern this is modeled on (order-id keyed maps guarded
// by sync.RWMutex, returning defensive copies), this book is owned by
// exactly one translator and processed one record at a time — per the
// concurrency model, no internal locking is needed or wanted here. No
// eviction: memory grows with order-id cardinality for the life of one
// session, which is acceptable for a session-bounded workload.
package book

import (
	"fmt"

	"github.com/HannahAHarris/chix-converter/decode"
)

// Entry is one live passive order.
type Entry struct {
	Security string
	Side     decode.Side
	Price    decode.Price
	Volume   int
}

// MissingPassiveError is the missing-passive error kind: an execution,
// cancel, or amend referenced an order-id not present in the book.
type MissingPassiveError struct {
	ID string
}

func (e *MissingPassiveError) Error() string {
	return fmt.Sprintf("missing passive order: id %q not found in book", e.ID)
}

// Book is the passive order map plus the undisclosed-order set.
type Book struct {
	entries     map[string]Entry
	undisclosed map[string]struct{}
}

// New returns an empty book.
func New() *Book {
	return &Book{
		entries:     make(map[string]Entry),
		undisclosed: make(map[string]struct{}),
	}
}

// Insert unconditionally overwrites the entry for id. A price amend is
// modeled upstream as cancel-then-re-add, so a later Add for an id already
// present simply replaces it. If volume is zero the order is undisclosed:
// it is never inserted into the book, only recorded in the undisclosed
// set, and every later reference to id is skipped by the caller.
func (b *Book) Insert(id string, e Entry) {
	if e.Volume == 0 {
		b.undisclosed[id] = struct{}{}
		return
	}
	b.entries[id] = e
}

// Lookup returns the entry for id, or a MissingPassiveError if absent.
func (b *Book) Lookup(id string) (Entry, error) {
	e, ok := b.entries[id]
	if !ok {
		return Entry{}, &MissingPassiveError{ID: id}
	}
	return e, nil
}

// IsUndisclosed reports whether id was ever added with volume zero.
func (b *Book) IsUndisclosed(id string) bool {
	_, ok := b.undisclosed[id]
	return ok
}

// DecrementVolume reduces id's resting volume by n, clamped at zero: an
// overfull cancel or trade never drives volume negative, it simply
// consumes whatever remains. Returns the entry's volume after the
// decrement and whether the decrement was clamped (n exceeded the
// resting volume).
func (b *Book) DecrementVolume(id string, n int) (remaining int, clamped bool, err error) {
	e, ok := b.entries[id]
	if !ok {
		return 0, false, &MissingPassiveError{ID: id}
	}
	if n >= e.Volume {
		clamped = n > e.Volume
		e.Volume = 0
	} else {
		e.Volume -= n
	}
	b.entries[id] = e
	return e.Volume, clamped, nil
}

// SetVolume overwrites id's resting volume directly, used by
// amend-for-volume once the disambiguator has computed the new size.
func (b *Book) SetVolume(id string, vol int) error {
	e, ok := b.entries[id]
	if !ok {
		return &MissingPassiveError{ID: id}
	}
	e.Volume = vol
	b.entries[id] = e
	return nil
}

// SeenSecurities returns the distinct security symbols of the entries
// currently in the book. Entries are never removed, but a later Insert for
// the same id replaces its entry, so a security held only by a replaced
// entry is not reported. Diagnostic only.
func (b *Book) SeenSecurities() []string {
	seen := make(map[string]struct{}, len(b.entries))
	out := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		if _, ok := seen[e.Security]; !ok {
			seen[e.Security] = struct{}{}
			out = append(out, e.Security)
		}
	}
	return out
}

// SeenUndisclosed returns every order-id ever recorded as undisclosed.
// Diagnostic only.
func (b *Book) SeenUndisclosed() []string {
	out := make([]string, 0, len(b.undisclosed))
	for id := range b.undisclosed {
		out = append(out, id)
	}
	return out
}
