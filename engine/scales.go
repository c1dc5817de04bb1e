package engine

// ScaleMode selects the interval table for scale-register mode
type ScaleMode int

const (
	ScaleMajor ScaleMode = iota
	ScaleNaturalMinor
	ScaleHarmonicMinor
	ScaleMelodicMinor
	ScaleDorian
	ScalePhrygian
	ScaleLydian
	ScaleMixolydian
	ScaleLocrian
	ScalePentatonicMajor
	ScalePentatonicMinor
	ScaleBlues
	ScaleWholeTone
	ScaleChromatic
)

// Scale definitions - intervals from root (semitones)
var scaleIntervals = map[ScaleMode][]int{
	ScaleMajor:           {0, 2, 4, 5, 7, 9, 11},
	ScaleNaturalMinor:    {0, 2, 3, 5, 7, 8, 10},
	ScaleHarmonicMinor:   {0, 2, 3, 5, 7, 8, 11},
	ScaleMelodicMinor:    {0, 2, 3, 5, 7, 9, 11},
	ScaleDorian:          {0, 2, 3, 5, 7, 9, 10},
	ScalePhrygian:        {0, 1, 3, 5, 7, 8, 10},
	ScaleLydian:          {0, 2, 4, 6, 7, 9, 11},
	ScaleMixolydian:      {0, 2, 4, 5, 7, 9, 10},
	ScaleLocrian:         {0, 1, 3, 5, 6, 8, 10},
	ScalePentatonicMajor: {0, 2, 4, 7, 9},
	ScalePentatonicMinor: {0, 3, 5, 7, 10},
	ScaleBlues:           {0, 3, 5, 6, 7, 10},
	ScaleWholeTone:       {0, 2, 4, 6, 8, 10},
	ScaleChromatic:       {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

var scaleModeNames = map[ScaleMode]string{
	ScaleMajor:           "major",
	ScaleNaturalMinor:    "natural_minor",
	ScaleHarmonicMinor:   "harmonic_minor",
	ScaleMelodicMinor:    "melodic_minor",
	ScaleDorian:          "dorian",
	ScalePhrygian:        "phrygian",
	ScaleLydian:          "lydian",
	ScaleMixolydian:      "mixolydian",
	ScaleLocrian:         "locrian",
	ScalePentatonicMajor: "pentatonic_major",
	ScalePentatonicMinor: "pentatonic_minor",
	ScaleBlues:           "blues",
	ScaleWholeTone:       "whole_tone",
	ScaleChromatic:       "chromatic",
}

func (m ScaleMode) String() string {
	if name, ok := scaleModeNames[m]; ok {
		return name
	}
	return "major"
}

func parseScaleMode(s string) ScaleMode {
	for mode, name := range scaleModeNames {
		if s == name {
			return mode
		}
	}
	return ScaleMajor
}

// intervals returns the interval table, falling back to major
func (m ScaleMode) intervals() []int {
	if iv, ok := scaleIntervals[m]; ok {
		return iv
	}
	return scaleIntervals[ScaleMajor]
}
