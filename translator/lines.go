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

package translator

import (
	"fmt"

	"github.com/HannahAHarris/chix-converter/decode"
)

// Output shaping: one Build function per target line kind. Spacing in
// every format string is significant and copied verbatim from the target
// dialect's textual form, including the inconsistent "*O=" / "*0=" tags
// between ENTER and AMEND — that inconsistency is in the wire contract,
// not a typo to fix here.

// --- ENTER (passive) ---

// BuildEnter renders a passive order entry.
//
// Example:
//
//	* 100000001 00:00:00.001000:  ENTER FMG 100000001 Bid 7.30 50 365 <ON > (@1 {*O=100000001})
func BuildEnter(id, ts, security string, side decode.Side, price decode.Price, volume int, value decode.Value) string {
	return fmt.Sprintf(
		"* %s %s:  ENTER %s %s %s %s %d %s <ON > (@1 {*O=%s})",
		id, ts, security, id, side, price, volume, value, id,
	)
}

// --- TRADE ---

// BuildTrade renders an execution against a resting passive order.
//
// Example:
//
//	* ref000001 00:00:00.002000:  TRADE FMG ref000001 7.30 50 365 <ON > B(100000001  ) A(200000001  ) T(*F=ref000001})
func BuildTrade(tradeRef, ts, security string, price decode.Price, volume int, value decode.Value, bidID, askID string) string {
	return fmt.Sprintf(
		"* %s %s:  TRADE %s %s %s %d %s <ON > B(%s  ) A(%s  ) T(*F=%s})",
		tradeRef, ts, security, tradeRef, price, volume, value, bidID, askID, tradeRef,
	)
}

// --- AMEND ---

// BuildAmend renders a volume or price amendment to a resting order.
//
// Example:
//
//	* 100000001 00:00:00.003000:  AMEND FMG 100000001 Bid abs 7.30 70 511 ({*0=100000001})
func BuildAmend(id, ts, security string, side decode.Side, price decode.Price, volume int, value decode.Value) string {
	return fmt.Sprintf(
		"* %s %s:  AMEND %s %s %s abs %s %d %s ({*0=%s})",
		id, ts, security, id, side, price, volume, value, id,
	)
}

// --- DELET ---

// BuildDelet renders a deletion of a resting order.
//
// Example:
//
//	* 100000001 00:00:00.004000:  DELET 100000001 FMG Bid 0 ()
func BuildDelet(id, ts, security string, side decode.Side) string {
	return fmt.Sprintf("* %s %s:  DELET %s %s %s 0 ()", id, ts, id, security, side)
}

// --- OFFTR ---
//
// Off-market (hidden) trade formatting lives in package hidden, since that
// record is fully self-contained and never touches the passive book or
// any of the caches this package owns.
