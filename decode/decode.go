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

// Package decode provides fixed-width field extraction for ChiX L3 order
// book records.
//
// HOT PATH [1]: every byte of every input line flows through Decode. The
// column offsets below are copied verbatim from the wire format and must
// not be "cleaned up" — they define the contract with the upstream feed.
//
// Record layout: byte 9 (0-indexed) is the kind character. Uppercase kinds
// (A, E, X, P) are "short" flavor; lowercase (a, e, x, p) are "long"
// flavor. The two flavors share the timestamp, kind, and id column ranges
// but diverge on every numeric field after byte 19, including the price
// denominator (10^4 short vs 10^7 long).
package decode

import (
	"fmt"
	"strconv"
	"strings"
)

// Flavor distinguishes the short (uppercase kind) and long (lowercase
// kind) record widths. It governs every offset table and the price
// denominator.
type Flavor int

const (
	Short Flavor = iota
	Long
)

func (f Flavor) String() string {
	if f == Long {
		return "long"
	}
	return "short"
}

// RecordKind is the tagged variant this package dispatches on, replacing
// the source's runtime string matching on the kind character.
type RecordKind int

const (
	KindUnknown RecordKind = iota
	KindAddShort
	KindAddLong
	KindExeShort
	KindExeLong
	KindCancelShort
	KindCancelLong
	KindHiddenShort
	KindHiddenLong
)

// Flavor returns the width variant implied by this kind's case.
func (k RecordKind) Flavor() Flavor {
	switch k {
	case KindAddLong, KindExeLong, KindCancelLong, KindHiddenLong:
		return Long
	default:
		return Short
	}
}

func (k RecordKind) IsAdd() bool    { return k == KindAddShort || k == KindAddLong }
func (k RecordKind) IsExe() bool    { return k == KindExeShort || k == KindExeLong }
func (k RecordKind) IsCancel() bool { return k == KindCancelShort || k == KindCancelLong }
func (k RecordKind) IsHidden() bool { return k == KindHiddenShort || k == KindHiddenLong }

// kindByteIndex is the one offset shared by every flavor and used before a
// flavor is even known.
const kindByteIndex = 9

// ClassifyKind inspects byte 9 of line and returns the matching
// RecordKind, or KindUnknown for any character outside {A,a,E,e,X,x,P,p}.
// A line shorter than kindByteIndex+1 is also KindUnknown.
func ClassifyKind(line string) RecordKind {
	if len(line) <= kindByteIndex {
		return KindUnknown
	}
	switch line[kindByteIndex] {
	case 'A':
		return KindAddShort
	case 'a':
		return KindAddLong
	case 'E':
		return KindExeShort
	case 'e':
		return KindExeLong
	case 'X':
		return KindCancelShort
	case 'x':
		return KindCancelLong
	case 'P':
		return KindHiddenShort
	case 'p':
		return KindHiddenLong
	default:
		return KindUnknown
	}
}

// Side is the passive order's resting side.
type Side int

const (
	SideBid Side = iota
	SideAsk
)

func (s Side) String() string {
	if s == SideAsk {
		return "Ask"
	}
	return "Bid"
}

// Counter returns the opposite side: the aggressive side that crossed
// against a resting order on s.
func (s Side) Counter() Side {
	if s == SideAsk {
		return SideBid
	}
	return SideAsk
}

func parseSide(c byte) (Side, error) {
	switch c {
	case 'B':
		return SideBid, nil
	case 'S':
		return SideAsk, nil
	default:
		return 0, &UnknownSideError{Char: c}
	}
}

// columns is a (start, end) half-open byte range, matching the table in
// the wire-format column reference.
type columns struct{ start, end int }

// layout is one flavor's full offset table. Every field a kind doesn't use
// is left at its zero value and never consulted.
type layout struct {
	timestamp      columns
	id             columns
	side           columns
	volumePassive  columns
	securityPass   columns
	pricePassive   columns
	volumeExe      columns
	tradeRef       columns
	contraID       columns
	volumeHidden   columns
	securityHidden columns
	priceHidden    columns
	hiddenID       columns
	priceFracDigit int
}

var shortLayout = layout{
	timestamp:      columns{1, 9},
	id:             columns{10, 19},
	side:           columns{19, 20},
	volumePassive:  columns{20, 26},
	securityPass:   columns{26, 32},
	pricePassive:   columns{32, 42},
	volumeExe:      columns{19, 25},
	tradeRef:       columns{25, 34},
	contraID:       columns{34, 43},
	volumeHidden:   columns{20, 26},
	securityHidden: columns{26, 32},
	priceHidden:    columns{32, 42},
	hiddenID:       columns{42, 51},
	priceFracDigit: 4,
}

var longLayout = layout{
	timestamp:      columns{1, 9},
	id:             columns{10, 19},
	side:           columns{19, 20},
	volumePassive:  columns{20, 30},
	securityPass:   columns{30, 36},
	pricePassive:   columns{36, 55},
	volumeExe:      columns{19, 28},
	tradeRef:       columns{29, 38},
	contraID:       columns{38, 47},
	volumeHidden:   columns{20, 30},
	securityHidden: columns{30, 36},
	priceHidden:    columns{36, 55},
	hiddenID:       columns{55, 64},
	priceFracDigit: 7,
}

func tableFor(f Flavor) *layout {
	if f == Long {
		return &longLayout
	}
	return &shortLayout
}

// ColumnRange is the exported mirror of columns, for callers outside this
// package that need to describe an offset override (see package config).
type ColumnRange struct{ Start, End int }

func (c ColumnRange) toColumns() columns { return columns{start: c.Start, end: c.End} }

// LayoutOverride describes a full replacement offset table for one flavor.
// Every field must be set; there is no partial-override merge, since a
// feed revision changes the whole table together, not one field at a time.
type LayoutOverride struct {
	Timestamp      ColumnRange
	ID             ColumnRange
	Side           ColumnRange
	VolumePassive  ColumnRange
	SecurityPass   ColumnRange
	PricePassive   ColumnRange
	VolumeExe      ColumnRange
	TradeRef       ColumnRange
	ContraID       ColumnRange
	VolumeHidden   ColumnRange
	SecurityHidden ColumnRange
	PriceHidden    ColumnRange
	HiddenID       ColumnRange
	PriceFracDigit int
}

func (o LayoutOverride) toLayout() layout {
	return layout{
		timestamp:      o.Timestamp.toColumns(),
		id:             o.ID.toColumns(),
		side:           o.Side.toColumns(),
		volumePassive:  o.VolumePassive.toColumns(),
		securityPass:   o.SecurityPass.toColumns(),
		pricePassive:   o.PricePassive.toColumns(),
		volumeExe:      o.VolumeExe.toColumns(),
		tradeRef:       o.TradeRef.toColumns(),
		contraID:       o.ContraID.toColumns(),
		volumeHidden:   o.VolumeHidden.toColumns(),
		securityHidden: o.SecurityHidden.toColumns(),
		priceHidden:    o.PriceHidden.toColumns(),
		hiddenID:       o.HiddenID.toColumns(),
		priceFracDigit: o.PriceFracDigit,
	}
}

// Configure replaces the short and/or long flavor offset tables used by
// every subsequent Decode call. A nil argument leaves that flavor's table
// unchanged. Intended to be called once at process startup (see package
// config); Decode itself performs no locking around these package vars,
// consistent with the rest of this system's single-threaded model.
func Configure(short, long *LayoutOverride) {
	if short != nil {
		shortLayout = short.toLayout()
	}
	if long != nil {
		longLayout = long.toLayout()
	}
}

// Record holds every field this component extracts from one input line.
// Kind and Raw are always set; of the rest, only the fields relevant to
// Kind are populated and the others are zero.
type Record struct {
	Kind      RecordKind
	Raw       string
	Timestamp int // milliseconds since midnight
	ID        string
	Side      Side
	Volume    int
	Security  string
	Price     Price
	TradeRef  string
	ContraID  string
	HiddenID  string
}

// Value returns floor(Price * Volume), truncated toward zero exactly the
// way the source computes int(price*volume) on a float. Preserved
// verbatim; not a rounding.
func (r Record) Value() Value {
	return ComputeValue(r.Price, r.Volume)
}

func slice(line string, c columns) (string, error) {
	if c.end > len(line) {
		return "", fmt.Errorf("field extends to byte %d but record is only %d bytes", c.end, len(line))
	}
	return strings.TrimSpace(line[c.start:c.end]), nil
}

func parseUint(s, field string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &DecodeError{Field: field, Value: s, Err: fmt.Errorf("expected non-negative integer")}
	}
	return n, nil
}

// Decode extracts the fields relevant to line's kind. A malformed-record
// error names the offending field; an unknown-kind line decodes
// successfully with Kind == KindUnknown, Raw set, and every other field zero, since
// unknown kinds are silently skipped by the state machine, not treated as
// errors (see the error-kinds table).
func Decode(line string) (Record, error) {
	kind := ClassifyKind(line)
	rec := Record{Kind: kind, Raw: line}
	if kind == KindUnknown {
		return rec, nil
	}

	t := tableFor(kind.Flavor())

	tsField, err := slice(line, t.timestamp)
	if err != nil {
		return rec, &DecodeError{Field: "timestamp", Err: err}
	}
	ts, err := parseUint(tsField, "timestamp")
	if err != nil {
		return rec, err
	}
	rec.Timestamp = ts

	switch {
	case kind.IsAdd():
		if err := decodePassive(line, t, &rec); err != nil {
			return rec, err
		}
	case kind.IsExe():
		if err := decodeExe(line, t, &rec); err != nil {
			return rec, err
		}
	case kind.IsCancel():
		if err := decodeCancel(line, t, &rec); err != nil {
			return rec, err
		}
	case kind.IsHidden():
		if err := decodeHidden(line, t, &rec); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func decodePassive(line string, t *layout, rec *Record) error {
	id, err := slice(line, t.id)
	if err != nil {
		return &DecodeError{Field: "order-id", Err: err}
	}
	rec.ID = id

	sideField, err := slice(line, t.side)
	if err != nil {
		return &DecodeError{Field: "side", Err: err}
	}
	if sideField == "" {
		return &UnknownSideError{Char: 0}
	}
	side, err := parseSide(sideField[0])
	if err != nil {
		return err
	}
	rec.Side = side

	vol, err := decodeField(line, t.volumePassive, "volume")
	if err != nil {
		return err
	}
	rec.Volume = vol

	sec, err := slice(line, t.securityPass)
	if err != nil {
		return &DecodeError{Field: "security", Err: err}
	}
	rec.Security = sec

	price, err := decodePrice(line, t.pricePassive, t.priceFracDigit)
	if err != nil {
		return err
	}
	rec.Price = price
	return nil
}

func decodeExe(line string, t *layout, rec *Record) error {
	id, err := slice(line, t.id)
	if err != nil {
		return &DecodeError{Field: "passive-id", Err: err}
	}
	rec.ID = id

	vol, err := decodeField(line, t.volumeExe, "volume")
	if err != nil {
		return err
	}
	rec.Volume = vol

	ref, err := slice(line, t.tradeRef)
	if err != nil {
		return &DecodeError{Field: "trade-ref", Err: err}
	}
	rec.TradeRef = ref

	contra, err := slice(line, t.contraID)
	if err != nil {
		return &DecodeError{Field: "contra-id", Err: err}
	}
	rec.ContraID = contra
	return nil
}

func decodeCancel(line string, t *layout, rec *Record) error {
	id, err := slice(line, t.id)
	if err != nil {
		return &DecodeError{Field: "order-id", Err: err}
	}
	rec.ID = id

	vol, err := decodeField(line, t.volumeExe, "volume")
	if err != nil {
		return err
	}
	rec.Volume = vol
	return nil
}

func decodeHidden(line string, t *layout, rec *Record) error {
	vol, err := decodeField(line, t.volumeHidden, "volume")
	if err != nil {
		return err
	}
	rec.Volume = vol

	sec, err := slice(line, t.securityHidden)
	if err != nil {
		return &DecodeError{Field: "security", Err: err}
	}
	rec.Security = sec

	price, err := decodePrice(line, t.priceHidden, t.priceFracDigit)
	if err != nil {
		return err
	}
	rec.Price = price

	hid, err := slice(line, t.hiddenID)
	if err != nil {
		return &DecodeError{Field: "hidden-id", Err: err}
	}
	rec.HiddenID = hid
	return nil
}

func decodeField(line string, c columns, field string) (int, error) {
	s, err := slice(line, c)
	if err != nil {
		return 0, &DecodeError{Field: field, Err: err}
	}
	v, err := parseUint(s, field)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func decodePrice(line string, c columns, fracDigits int) (Price, error) {
	s, err := slice(line, c)
	if err != nil {
		return Price{}, &DecodeError{Field: "price", Err: err}
	}
	return newPrice(s, fracDigits)
}
