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

// Package hidden formats hidden/off-market executions. It is stateless:
// a hidden record carries everything needed for its output line, with no
// passive book lookup and no cache interaction.
package hidden

import (
	"fmt"

	"github.com/HannahAHarris/chix-converter/decode"
)

// Format renders one OFFTR line for a decoded hidden-execution record.
// rec.Kind must be KindHiddenShort or KindHiddenLong.
func Format(rec decode.Record) string {
	ts := decode.FormatTimestamp(rec.Timestamp)
	return fmt.Sprintf(
		"* %s %s:  OFFTR %s %s exec= %s %s %d %s <OF> T({*F=}) B() A() OFF MARKET TRADE MESSAGE",
		rec.HiddenID, ts, rec.Security, rec.HiddenID, ts, rec.Price.String(), rec.Volume, rec.Value().String(),
	)
}
