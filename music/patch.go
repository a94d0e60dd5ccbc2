package music

import "sort"

// Patch selects a sound on a synth: bank number and program within the bank
type Patch struct {
	Bank    uint8
	Program uint8
}

// DefaultInstrument is used when a sequence names an unknown instrument
const DefaultInstrument = "piano"

// Instruments maps instrument names to patches of the bundled soundfont layout
var Instruments = map[string]Patch{
	"piano":   {Bank: 0, Program: 0},
	"organ":   {Bank: 0, Program: 13},
	"violin":  {Bank: 1, Program: 26},
	"cello":   {Bank: 1, Program: 28},
	"trumpet": {Bank: 1, Program: 30},
	"tuba":    {Bank: 1, Program: 32},
	"oboe":    {Bank: 1, Program: 33},
	"sax":     {Bank: 1, Program: 34},
	"flute":   {Bank: 1, Program: 36},
	"timpani": {Bank: 1, Program: 38},
	"guitar":  {Bank: 2, Program: 42},
}

// PatchFor looks up an instrument, falling back to the default instrument
func PatchFor(instrument string) (Patch, bool) {
	p, ok := Instruments[instrument]
	if !ok {
		return Instruments[DefaultInstrument], false
	}
	return p, true
}

// InstrumentNames returns the known instrument names, sorted
func InstrumentNames() []string {
	names := make([]string, 0, len(Instruments))
	for name := range Instruments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Patches returns the patch for each sequence, indexed by sequence id (= channel)
func (p *Piece) Patches() []Patch {
	patches := make([]Patch, len(p.Instruments))
	for i, instr := range p.Instruments {
		patches[i], _ = PatchFor(instr)
	}
	return patches
}
