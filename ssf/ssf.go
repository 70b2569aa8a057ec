// go.kotor.dev/korf - a toolkit for KotOR/Aurora-engine resource archives
// Copyright (C) 2026  korf contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.
// Package ssf implements the SSF sound set format: a fixed table of
// StringRef slots, one per canned creature utterance.
package ssf

import (
	"encoding/xml"
	"fmt"

	"go.kotor.dev/korf/internal/bread"
	"go.kotor.dev/korf/internal/kerr"
)

// SlotNames26 is the slot order used by the original game. SlotNames40
// extends it with the additional utterances introduced by the sequel.
var SlotNames26 = []string{
	"BattleCry1", "BattleCry2", "BattleCry3",
	"BattleCry4", "BattleCry5", "BattleCry6",
	"Selected1", "Selected2", "Selected3",
	"AttackGrunt1", "AttackGrunt2", "AttackGrunt3",
	"PainGrunt1", "PainGrunt2",
	"LowHealth",
	"Death",
	"CriticalHit",
	"TargetImmune",
	"LayMine",
	"DisarmMine",
	"BeginStealth",
	"BeginSearch",
	"BeginUnlockDoor",
	"UnlockFailed",
	"UnlockSuccess",
	"SeparatedFromParty",
	"RejoinedParty",
}

var SlotNames40 = append(append([]string{}, SlotNames26...),
	"Poisoned",
	"PlotCommand1",
	"PlotCommand2",
	"PlotCommand3",
	"ForceUsed1",
	"ForceUsed2",
	"ForceUsed3",
	"InventoryFull",
	"UseSkill",
	"DisturbedGeneric",
	"RuleInterface",
	"ForceAgainstMass",
	"AutoPause",
	"SkillFailed",
)

const magic = "SSF V1.1"

// SoundSet is a fixed vector of StringRef slots, indexed by position.
// A slot value of 0xFFFFFFFF (engine's "none") means unset.
type SoundSet struct {
	Slots []uint32
}

// NoneRef is the sentinel value meaning "no sound assigned" for a slot.
const NoneRef = 0xFFFFFFFF

// SlotNames returns the slot-name table matching len(s.Slots), or nil if
// the slot count is neither 26 nor 40.
func (s *SoundSet) SlotNames() []string {
	switch len(s.Slots) {
	case 26:
		return SlotNames26
	case 40:
		return SlotNames40
	default:
		return nil
	}
}

// Read parses a binary SSF document.
func Read(buf []byte) (*SoundSet, error) {
	r := bread.NewReader(buf)
	tag, err := r.String(8)
	if err != nil {
		return nil, fmt.Errorf("ssf: reading tag: %w", err)
	}
	if tag != magic {
		return nil, fmt.Errorf("ssf: bad magic %q: %w", tag, kerr.ErrBadMagic)
	}
	// The tag is followed by a table-offset field (always 12 for this
	// version); the slot vector starts immediately after.
	if _, err := r.Uint32(); err != nil {
		return nil, fmt.Errorf("ssf: reading table offset: %w", err)
	}

	remaining := r.Remaining()
	count := remaining / 4
	if count != 26 && count != 40 {
		return nil, fmt.Errorf("ssf: unexpected slot count %d (want 26 or 40)", count)
	}
	slots := make([]uint32, count)
	for i := range slots {
		v, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("ssf: slot %d: %w", i, err)
		}
		slots[i] = v
	}
	return &SoundSet{Slots: slots}, nil
}

// Write serializes s to the binary SSF layout.
func Write(s *SoundSet) ([]byte, error) {
	if len(s.Slots) != 26 && len(s.Slots) != 40 {
		return nil, fmt.Errorf("ssf: unsupported slot count %d (want 26 or 40)", len(s.Slots))
	}
	w := bread.NewWriter()
	w.String(magic)
	w.Uint32(12)
	for _, v := range s.Slots {
		w.Uint32(v)
	}
	return w.Bytes(), nil
}

type xmlSlot struct {
	Name  string `xml:"name,attr"`
	Value uint32 `xml:",chardata"`
}

type xmlDoc struct {
	XMLName xml.Name  `xml:"soundset"`
	Slots   []xmlSlot `xml:"slot"`
}

// WriteXML renders s as a named-slot XML document.
func WriteXML(s *SoundSet) ([]byte, error) {
	names := s.SlotNames()
	if names == nil {
		return nil, fmt.Errorf("ssf: cannot name slots for count %d", len(s.Slots))
	}
	doc := xmlDoc{}
	for i, v := range s.Slots {
		doc.Slots = append(doc.Slots, xmlSlot{Name: names[i], Value: v})
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// ReadXML parses a document produced by WriteXML.
func ReadXML(data []byte) (*SoundSet, error) {
	var doc xmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ssf: parsing xml: %w", err)
	}
	slots := make([]uint32, len(doc.Slots))
	for i, sl := range doc.Slots {
		slots[i] = sl.Value
	}
	return &SoundSet{Slots: slots}, nil
}
