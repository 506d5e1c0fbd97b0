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

// Package config loads run-time overrides for the fixed-width column
// tables package decode ships with. The wire format is a feed contract,
// not something config should routinely touch, but feed revisions happen:
// rather than a code change and a rebuild for every one, an operator can
// point -layout at a YAML file describing the new offsets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/HannahAHarris/chix-converter/decode"
)

// Range is one [start, end) byte offset pair, matching decode.ColumnRange.
type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

func (r Range) toColumnRange() decode.ColumnRange {
	return decode.ColumnRange{Start: r.Start, End: r.End}
}

// FlavorLayout is one flavor's full offset table, in the shape a config
// file author edits directly.
type FlavorLayout struct {
	Timestamp      Range `yaml:"timestamp"`
	ID             Range `yaml:"id"`
	Side           Range `yaml:"side"`
	VolumePassive  Range `yaml:"volume_passive"`
	SecurityPass   Range `yaml:"security_passive"`
	PricePassive   Range `yaml:"price_passive"`
	VolumeExe      Range `yaml:"volume_exe"`
	TradeRef       Range `yaml:"trade_ref"`
	ContraID       Range `yaml:"contra_id"`
	VolumeHidden   Range `yaml:"volume_hidden"`
	SecurityHidden Range `yaml:"security_hidden"`
	PriceHidden    Range `yaml:"price_hidden"`
	HiddenID       Range `yaml:"hidden_id"`
	PriceFracDigit int   `yaml:"price_frac_digit"`
}

func (f FlavorLayout) toOverride() decode.LayoutOverride {
	return decode.LayoutOverride{
		Timestamp:      f.Timestamp.toColumnRange(),
		ID:             f.ID.toColumnRange(),
		Side:           f.Side.toColumnRange(),
		VolumePassive:  f.VolumePassive.toColumnRange(),
		SecurityPass:   f.SecurityPass.toColumnRange(),
		PricePassive:   f.PricePassive.toColumnRange(),
		VolumeExe:      f.VolumeExe.toColumnRange(),
		TradeRef:       f.TradeRef.toColumnRange(),
		ContraID:       f.ContraID.toColumnRange(),
		VolumeHidden:   f.VolumeHidden.toColumnRange(),
		SecurityHidden: f.SecurityHidden.toColumnRange(),
		PriceHidden:    f.PriceHidden.toColumnRange(),
		HiddenID:       f.HiddenID.toColumnRange(),
		PriceFracDigit: f.PriceFracDigit,
	}
}

// Layout is the top-level document shape of a layout override file. Either
// section may be omitted; an omitted section leaves that flavor's table at
// package decode's built-in default.
type Layout struct {
	Short *FlavorLayout `yaml:"short"`
	Long  *FlavorLayout `yaml:"long"`
}

// LoadLayout reads and parses a layout override file at path.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("reading layout config %s: %w", path, err)
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("parsing layout config %s: %w", path, err)
	}
	return l, nil
}

// Apply installs l's overrides into package decode. Call once at startup,
// before the first Decode call of the run.
func (l Layout) Apply() {
	var short, long *decode.LayoutOverride
	if l.Short != nil {
		o := l.Short.toOverride()
		short = &o
	}
	if l.Long != nil {
		o := l.Long.toOverride()
		long = &o
	}
	decode.Configure(short, long)
}
