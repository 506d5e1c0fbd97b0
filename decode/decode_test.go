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

package decode

import (
	"strings"
	"testing"
)

// putField writes value into buf[start:end], right-aligning numeric
// fields (space padded on the left) to mirror the wire format, and
// left-aligning identifier/security fields (space padded on the right).
func putField(t *testing.T, buf []byte, start, end int, value string, rightAlign bool) {
	t.Helper()
	width := end - start
	if len(value) > width {
		t.Fatalf("field value %q wider than [%d,%d)", value, start, end)
	}
	pad := strings.Repeat(" ", width-len(value))
	var field string
	if rightAlign {
		field = pad + value
	} else {
		field = value + pad
	}
	copy(buf[start:end], field)
}

type shortAddOpts struct {
	ts       int
	kind     byte
	id       string
	side     byte
	volume   int
	security string
	price    string // raw numerator digits, e.g. "0000073000"
}

func buildShortAdd(t *testing.T, o shortAddOpts) string {
	t.Helper()
	buf := make([]byte, 42)
	for i := range buf {
		buf[i] = ' '
	}
	putField(t, buf, 1, 9, itoa(o.ts), true)
	buf[9] = o.kind
	putField(t, buf, 10, 19, o.id, false)
	buf[19] = o.side
	putField(t, buf, 20, 26, itoa(o.volume), true)
	putField(t, buf, 26, 32, o.security, false)
	putField(t, buf, 32, 42, o.price, true)
	return string(buf)
}

type shortExeOpts struct {
	ts       int
	kind     byte
	id       string
	volume   int
	tradeRef string
	contraID string
}

func buildShortExe(t *testing.T, o shortExeOpts) string {
	t.Helper()
	buf := make([]byte, 43)
	for i := range buf {
		buf[i] = ' '
	}
	putField(t, buf, 1, 9, itoa(o.ts), true)
	buf[9] = o.kind
	putField(t, buf, 10, 19, o.id, false)
	putField(t, buf, 19, 25, itoa(o.volume), true)
	putField(t, buf, 25, 34, o.tradeRef, false)
	putField(t, buf, 34, 43, o.contraID, false)
	return string(buf)
}

type shortCancelOpts struct {
	ts     int
	kind   byte
	id     string
	volume int
}

func buildShortCancel(t *testing.T, o shortCancelOpts) string {
	t.Helper()
	buf := make([]byte, 25)
	for i := range buf {
		buf[i] = ' '
	}
	putField(t, buf, 1, 9, itoa(o.ts), true)
	buf[9] = o.kind
	putField(t, buf, 10, 19, o.id, false)
	putField(t, buf, 19, 25, itoa(o.volume), true)
	return string(buf)
}

type shortHiddenOpts struct {
	ts       int
	kind     byte
	volume   int
	security string
	price    string
	hiddenID string
}

func buildShortHidden(t *testing.T, o shortHiddenOpts) string {
	t.Helper()
	buf := make([]byte, 51)
	for i := range buf {
		buf[i] = ' '
	}
	putField(t, buf, 1, 9, itoa(o.ts), true)
	buf[9] = o.kind
	putField(t, buf, 20, 26, itoa(o.volume), true)
	putField(t, buf, 26, 32, o.security, false)
	putField(t, buf, 32, 42, o.price, true)
	putField(t, buf, 42, 51, o.hiddenID, false)
	return string(buf)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

func TestClassifyKind(t *testing.T) {
	cases := []struct {
		name string
		line string
		want RecordKind
	}{
		{"short add", buildShortAdd(t, shortAddOpts{kind: 'A', id: "1", side: 'B', security: "FMG", price: "0000073000"}), KindAddShort},
		{"long add", func() string {
			l := buildShortAdd(t, shortAddOpts{kind: 'a', id: "1", side: 'B', security: "FMG", price: "0000073000"})
			return l
		}(), KindAddLong},
		{"unknown char", "123456789Z1234567890", KindUnknown},
		{"too short", "12345", KindUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ClassifyKind(c.line); got != c.want {
				t.Errorf("ClassifyKind(%q) = %v, want %v", c.line, got, c.want)
			}
		})
	}
}

func TestDecodeAddShort(t *testing.T) {
	line := buildShortAdd(t, shortAddOpts{
		ts: 1, kind: 'A', id: "100000001", side: 'B', volume: 100, security: "FMG", price: "0000073000",
	})
	rec, err := Decode(line)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.Kind != KindAddShort {
		t.Fatalf("Kind = %v", rec.Kind)
	}
	if rec.ID != "100000001" {
		t.Errorf("ID = %q", rec.ID)
	}
	if rec.Side != SideBid {
		t.Errorf("Side = %v", rec.Side)
	}
	if rec.Volume != 100 {
		t.Errorf("Volume = %d", rec.Volume)
	}
	if rec.Security != "FMG" {
		t.Errorf("Security = %q", rec.Security)
	}
	if got, want := rec.Price.String(), "7.30"; got != want {
		t.Errorf("Price = %q, want %q", got, want)
	}
}

func TestDecodeUnknownSide(t *testing.T) {
	line := buildShortAdd(t, shortAddOpts{
		ts: 1, kind: 'A', id: "1", side: 'Q', volume: 100, security: "FMG", price: "0000073000",
	})
	_, err := Decode(line)
	var sideErr *UnknownSideError
	if !asUnknownSide(err, &sideErr) {
		t.Fatalf("expected UnknownSideError, got %v", err)
	}
}

func asUnknownSide(err error, target **UnknownSideError) bool {
	if e, ok := err.(*UnknownSideError); ok {
		*target = e
		return true
	}
	return false
}

func TestDecodeExeShort(t *testing.T) {
	line := buildShortExe(t, shortExeOpts{
		ts: 2, kind: 'E', id: "100000001", volume: 50, tradeRef: "ref000001", contraID: "200000001",
	})
	rec, err := Decode(line)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.Kind != KindExeShort {
		t.Fatalf("Kind = %v", rec.Kind)
	}
	if rec.ID != "100000001" || rec.Volume != 50 || rec.TradeRef != "ref000001" || rec.ContraID != "200000001" {
		t.Errorf("unexpected fields: %+v", rec)
	}
}

func TestDecodeCancelShort(t *testing.T) {
	line := buildShortCancel(t, shortCancelOpts{ts: 3, kind: 'X', id: "100000001", volume: 30})
	rec, err := Decode(line)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.Kind != KindCancelShort || rec.ID != "100000001" || rec.Volume != 30 {
		t.Errorf("unexpected fields: %+v", rec)
	}
}

func TestDecodeHiddenShort(t *testing.T) {
	line := buildShortHidden(t, shortHiddenOpts{
		ts: 4, kind: 'P', volume: 10, security: "BHP", price: "0000100000", hiddenID: "hid000001",
	})
	rec, err := Decode(line)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.Kind != KindHiddenShort || rec.HiddenID != "hid000001" || rec.Security != "BHP" || rec.Volume != 10 {
		t.Errorf("unexpected fields: %+v", rec)
	}
	if got, want := rec.Price.String(), "10.00"; got != want {
		t.Errorf("Price = %q, want %q", got, want)
	}
}

func TestDecodeMalformedRecordTooShort(t *testing.T) {
	// A valid kind byte at offset 9, but the line is truncated before the
	// price field short flavor needs.
	line := "000000001A100000001B000100FMG"
	_, err := Decode(line)
	if err == nil {
		t.Fatal("expected an error for a truncated record")
	}
	var decErr *DecodeError
	if e, ok := err.(*DecodeError); ok {
		decErr = e
	}
	if decErr == nil {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
}

func TestPriceFormatting(t *testing.T) {
	cases := []struct {
		numerator  string
		fracDigits int
		want       string
	}{
		{"0000073000", 4, "7.30"},
		{"0000070000", 4, "7.00"},
		{"0000075000", 4, "7.50"},
		{"0000073333", 4, "7.3333"},
		{"0000012345", 4, "1.2345"},
		{"0000000000", 4, "0.00"},
	}
	for _, c := range cases {
		p, err := newPrice(c.numerator, c.fracDigits)
		if err != nil {
			t.Fatalf("newPrice: %v", err)
		}
		if got := p.String(); got != c.want {
			t.Errorf("newPrice(%q, %d) = %q, want %q", c.numerator, c.fracDigits, got, c.want)
		}
	}
}

func TestComputeValueTruncates(t *testing.T) {
	p, err := newPrice("0000073000", 4)
	if err != nil {
		t.Fatalf("newPrice: %v", err)
	}
	if got, want := ComputeValue(p, 50).String(), "365"; got != want {
		t.Errorf("ComputeValue = %q, want %q", got, want)
	}
}

func TestFormatTimestampRoundTrip(t *testing.T) {
	cases := []int{0, 1, 1000, 3_661_001, 86_399_999}
	for _, ms := range cases {
		s := FormatTimestamp(ms)
		if len(s) != len("00:00:00.000000") {
			t.Fatalf("FormatTimestamp(%d) = %q, unexpected length", ms, s)
		}
		h := atoi2(s[0:2])
		m := atoi2(s[3:5])
		sec := atoi2(s[6:8])
		milli := atoi3(s[9:12])
		got := h*3_600_000 + m*60_000 + sec*1_000 + milli
		if got != ms {
			t.Errorf("FormatTimestamp(%d) = %q, round-trips to %d", ms, s, got)
		}
		if s[12:] != "000" {
			t.Errorf("FormatTimestamp(%d) = %q, trailing digits not 000", ms, s)
		}
	}
}

func atoi2(s string) int { return int(s[0]-'0')*10 + int(s[1]-'0') }
func atoi3(s string) int { return int(s[0]-'0')*100 + int(s[1]-'0')*10 + int(s[2]-'0') }
