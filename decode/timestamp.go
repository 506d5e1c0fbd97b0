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

import "fmt"

// FormatTimestamp renders milliseconds-since-midnight as
// HH:MM:SS.mmm000 — six fractional digits, the last three always 000.
// The round trip parse(format(n)) == n holds for every n in
// [0, 86_400_000).
func FormatTimestamp(ms int) string {
	totalMs := ms % 86_400_000
	hours := totalMs / 3_600_000
	totalMs -= hours * 3_600_000
	minutes := totalMs / 60_000
	totalMs -= minutes * 60_000
	seconds := totalMs / 1_000
	millis := totalMs - seconds*1_000
	return fmt.Sprintf("%02d:%02d:%02d.%03d000", hours, minutes, seconds, millis)
}
