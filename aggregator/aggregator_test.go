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

package aggregator

import (
	"testing"

	"github.com/HannahAHarris/chix-converter/decode"
)

func price(t *testing.T, numerator string) decode.Price {
	t.Helper()
	buf := make([]byte, 42)
	for i := range buf {
		buf[i] = ' '
	}
	buf[9] = 'A'
	copy(buf[10:19], "1")
	buf[19] = 'B'
	copy(buf[20:26], "1")
	copy(buf[26:32], "FMG")
	start := 42 - len(numerator)
	copy(buf[start:42], numerator)
	rec, err := decode.Decode(string(buf))
	if err != nil {
		t.Fatalf("building test price: %v", err)
	}
	return rec.Price
}

func TestEmptyCacheFlushesNothing(t *testing.T) {
	var c Cache
	if !c.Empty() {
		t.Fatal("zero value cache should be empty")
	}
	if _, ok := c.Flush(); ok {
		t.Error("Flush on an empty cache should report ok=false")
	}
}

func TestAppendSeedsIdentifyingFields(t *testing.T) {
	var c Cache
	p := price(t, "0000073000")
	c.Append(40, p, "C1", "FMG", decode.SideAsk, 1000)

	if c.Empty() {
		t.Fatal("cache should be filled after Append")
	}
	if c.ContraID() != "C1" {
		t.Errorf("ContraID = %q, want C1", c.ContraID())
	}
}

func TestAppendSumsVolumeAndTakesLastPrice(t *testing.T) {
	var c Cache
	p1 := price(t, "0000073000")
	p2 := price(t, "0000074000")

	c.Append(40, p1, "C1", "FMG", decode.SideAsk, 1000)
	c.Append(60, p2, "C1", "FMG", decode.SideAsk, 2000)

	entry, ok := c.Flush()
	if !ok {
		t.Fatal("expected Flush to produce an entry")
	}
	if entry.Volume != 100 {
		t.Errorf("Volume = %d, want 100 (summed)", entry.Volume)
	}
	if got, want := entry.Price.String(), "7.40"; got != want {
		t.Errorf("Price = %q, want %q (last fill wins, not VWAP)", got, want)
	}
}

func TestAppendKeepsFirstSeenTimestamp(t *testing.T) {
	var c Cache
	p := price(t, "0000073000")
	c.Append(10, p, "C1", "FMG", decode.SideAsk, 1111)
	c.Append(10, p, "C1", "FMG", decode.SideAsk, 2222)

	entry, ok := c.Flush()
	if !ok {
		t.Fatal("expected an entry")
	}
	if entry.Timestamp != 1111 {
		t.Errorf("Timestamp = %d, want 1111 (seeded on first fill)", entry.Timestamp)
	}
}

func TestFlushResetsCache(t *testing.T) {
	var c Cache
	p := price(t, "0000073000")
	c.Append(10, p, "C1", "FMG", decode.SideAsk, 1000)
	c.Flush()

	if !c.Empty() {
		t.Fatal("cache should be empty again after Flush")
	}
	if _, ok := c.Flush(); ok {
		t.Error("a second Flush should report ok=false")
	}
}

func TestFlushWithResidualFoldsResidualVolume(t *testing.T) {
	var c Cache
	p := price(t, "0000073000")
	c.Append(60, p, "C1", "FMG", decode.SideAsk, 1000)

	entry, ok := c.FlushWithResidual(40)
	if !ok {
		t.Fatal("expected an entry")
	}
	if entry.Volume != 100 {
		t.Errorf("Volume = %d, want 100 (60 filled + 40 residual)", entry.Volume)
	}
	if !c.Empty() {
		t.Error("cache should be reset after FlushWithResidual")
	}
}

func TestFlushWithResidualOnEmptyCache(t *testing.T) {
	var c Cache
	if _, ok := c.FlushWithResidual(40); ok {
		t.Error("FlushWithResidual on an empty cache should report ok=false")
	}
}
