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

// Package translator is the state machine at the center of this system:
// a single-session, single-threaded, record-at-a-time coordinator that
// dispatches each decoded record to the passive book, the trade
// aggregator, and the cancel disambiguator, and assembles whatever
// output lines that record produces.
//
// Dispatch pipeline (per record):
//
//	line ──▶ decode.Decode ──▶ Translator.Process ──▶ []string (0..n lines)
//	                                │
//	                 ┌──────────────┼───────────────┐
//	                 ▼              ▼               ▼
//	            book.Book   aggregator.Cache   cancelcache.Cache
//
// The dispatch ORDER below is load-bearing: a pending trade-aggregation
// flush always happens before the current record's own output, and a
// cancel is only resolved as AMEND-for-price or DELET on the record that
// follows it, never on the cancel itself. Reordering these steps changes
// output, not just style.
package translator

import (
	"github.com/HannahAHarris/chix-converter/aggregator"
	"github.com/HannahAHarris/chix-converter/book"
	"github.com/HannahAHarris/chix-converter/cancelcache"
	"github.com/HannahAHarris/chix-converter/decode"
	"github.com/HannahAHarris/chix-converter/hidden"
)

// Output is the zero or more lines one input record produced, in the
// order they must be written.
type Output struct {
	Lines []string
}

// Empty reports whether this record produced no output at all — the
// sentinel "no output" case is not an error, it's the ordinary result of
// a cancel awaiting resolution on the next record.
func (o Output) Empty() bool {
	return len(o.Lines) == 0
}

// Translator owns the three caches and two flags that make up one
// session's state. It holds no other resources and requires no locking:
// see the concurrency model this package implements — one record is
// processed to completion before the next is consumed.
type Translator struct {
	book   *book.Book
	agg    aggregator.Cache
	cancel cancelcache.Cache

	lastTrade  bool
	lastCancel bool
}

// New returns a Translator ready to process the first record of a
// session.
func New() *Translator {
	return &Translator{book: book.New()}
}

// SeenSecurities returns the distinct security symbols of the passive
// entries currently in the book (see book.SeenSecurities). Diagnostic
// only; does not affect output.
func (t *Translator) SeenSecurities() []string {
	return t.book.SeenSecurities()
}

// SeenUndisclosed returns every order-id recorded as undisclosed so far.
// Diagnostic only; does not affect output.
func (t *Translator) SeenUndisclosed() []string {
	return t.book.SeenUndisclosed()
}

// Process decodes and dispatches one input line, returning the output it
// produced. A non-nil error is always fatal for this record (malformed
// decode, or a reference to an order-id absent from the book); the
// caller decides whether to abort the session or log and continue with
// the next line.
func (t *Translator) Process(line string) (Output, error) {
	rec, err := decode.Decode(line)
	if err != nil {
		return Output{}, err
	}
	return t.dispatch(rec)
}

func (t *Translator) dispatch(rec decode.Record) (Output, error) {
	kind := rec.Kind

	// Step 1: unknown kinds are silently skipped, not an error.
	if kind == decode.KindUnknown {
		return Output{}, nil
	}

	// Step 2: Add/Cancel referencing an undisclosed order is skipped.
	if (kind.IsAdd() || kind.IsCancel()) && t.book.IsUndisclosed(rec.ID) {
		return Output{}, nil
	}

	// Step 3: Execute returns early; steps 4-9 never run for this record.
	if kind.IsExe() {
		t.lastTrade = true
		trade, aggLine, err := t.exeWriter(rec)
		if err != nil {
			return Output{}, err
		}
		lines := []string{trade}
		if aggLine != "" {
			lines = append(lines, aggLine)
		}
		return Output{Lines: lines}, nil
	}

	var lines []string
	aggOnly := false

	// Step 4: a trade run that just ended gets flushed before this
	// record's own output is computed.
	if t.lastTrade {
		t.lastTrade = false
		if kind.IsAdd() && !t.agg.Empty() && t.agg.ContraID() == rec.ID {
			// The aggressive order's leftover size was re-entered as
			// this passive Add: fold its volume into the synthesized
			// ENTER rather than also emitting a separate plain ENTER
			// for the same size.
			if entry, ok := t.agg.FlushWithResidual(rec.Volume); ok {
				lines = append(lines, t.formatAggEnter(entry))
				aggOnly = true
			}
		} else if entry, ok := t.agg.Flush(); ok {
			lines = append(lines, t.formatAggEnter(entry))
		}
	}

	switch {
	case kind.IsAdd():
		lines = t.dispatchAdd(rec, aggOnly, lines)

	case kind.IsCancel():
		// Step 6.
		t.lastCancel = true
		partial, err := t.cancel.CacheAndWrite(t.book, rec.ID, rec.Volume, rec.Timestamp)
		if err != nil {
			return Output{}, err
		}
		if partial != nil {
			ts := decode.FormatTimestamp(partial.Timestamp)
			value := decode.ComputeValue(partial.Price, partial.Volume)
			lines = append(lines, BuildAmend(partial.ID, ts, partial.Security, partial.Side, partial.Price, partial.Volume, value))
		}

	case kind.IsHidden():
		// Step 8.
		lines = append(lines, hidden.Format(rec))
	}

	// Step 9: lastCancel is set by a Cancel; every other kind that
	// reaches this step clears the flag (an Execute
	// returned at step 3 and leaves it as it was). The cancel cache itself
	// is reset only by Resolve.
	if !kind.IsCancel() {
		t.lastCancel = false
	}

	return Output{Lines: lines}, nil
}

// dispatchAdd implements steps 5 and 7: a passive Add either enters
// directly (no pending cancel) or resolves a pending cancel disambiguation
// first. The passive book always reflects the Add — insertion never
// depends on whether an ENTER line is actually emitted for it.
func (t *Translator) dispatchAdd(rec decode.Record, aggOnly bool, lines []string) []string {
	entry := book.Entry{Security: rec.Security, Side: rec.Side, Price: rec.Price, Volume: rec.Volume}

	if !t.lastCancel {
		// Step 5.
		t.book.Insert(rec.ID, entry)
		if !aggOnly && !t.book.IsUndisclosed(rec.ID) {
			lines = append(lines, t.formatEnter(rec))
		}
		return lines
	}

	// Step 7.
	if t.cancel.Empty() {
		// The cancel already produced its own AMEND-for-volume; this Add
		// is an ordinary fresh entry.
		t.book.Insert(rec.ID, entry)
		if !t.book.IsUndisclosed(rec.ID) {
			lines = append(lines, t.formatEnter(rec))
		}
		return lines
	}

	res := t.cancel.Resolve(rec.ID, rec.Price, rec.Volume)
	if res.IsAmend {
		// Amend-for-price: the AMEND line already carries the new price
		// and volume: no separate ENTER for the re-added order. Timestamp,
		// security, and side come from the cancelled order, not the
		// re-add, since the cancel and its same-id re-add are distinct
		// wire records that can genuinely disagree on them.
		ts := decode.FormatTimestamp(res.AmendTimestamp)
		value := decode.ComputeValue(res.AmendPrice, res.AmendVolume)
		lines = append(lines, BuildAmend(rec.ID, ts, res.AmendSecurity, res.AmendSide, res.AmendPrice, res.AmendVolume, value))
		t.book.Insert(rec.ID, entry)
		return lines
	}

	// Genuine deletion: the cancelled id is gone, and the new id is a
	// wholly unrelated fresh order.
	ts := decode.FormatTimestamp(res.DeletedTimestamp)
	lines = append(lines, BuildDelet(res.DeletedID, ts, res.DeletedSecurity, res.DeletedSide))
	t.book.Insert(rec.ID, entry)
	if !t.book.IsUndisclosed(rec.ID) {
		lines = append(lines, t.formatEnter(rec))
	}
	return lines
}

func (t *Translator) formatEnter(rec decode.Record) string {
	ts := decode.FormatTimestamp(rec.Timestamp)
	return BuildEnter(rec.ID, ts, rec.Security, rec.Side, rec.Price, rec.Volume, rec.Value())
}

func (t *Translator) formatAggEnter(entry aggregator.Entry) string {
	ts := decode.FormatTimestamp(entry.Timestamp)
	value := decode.ComputeValue(entry.Price, entry.Volume)
	return BuildEnter(entry.ContraID, ts, entry.Security, entry.Side, entry.Price, entry.Volume, value)
}

// exeWriter is component C's execution handler (spec 4.C): it decrements
// the passive book, emits the TRADE line, and folds the fill into the
// trade-aggregation cache, flushing a previous aggregation first if this
// execution starts a new contra-id run.
func (t *Translator) exeWriter(rec decode.Record) (trade string, aggLine string, err error) {
	passive, err := t.book.Lookup(rec.ID)
	if err != nil {
		return "", "", err
	}

	if _, _, err := t.book.DecrementVolume(rec.ID, rec.Volume); err != nil {
		return "", "", err
	}

	aggSide := passive.Side.Counter()
	bidID, askID := rec.ID, rec.ContraID
	if passive.Side == decode.SideAsk {
		bidID, askID = rec.ContraID, rec.ID
	}

	ts := decode.FormatTimestamp(rec.Timestamp)
	value := decode.ComputeValue(passive.Price, rec.Volume)
	trade = BuildTrade(rec.TradeRef, ts, passive.Security, passive.Price, rec.Volume, value, bidID, askID)

	if !t.agg.Empty() && t.agg.ContraID() != rec.ContraID {
		if entry, ok := t.agg.Flush(); ok {
			aggLine = t.formatAggEnter(entry)
		}
	}
	t.agg.Append(rec.Volume, passive.Price, rec.ContraID, passive.Security, aggSide, rec.Timestamp)

	return trade, aggLine, nil
}
