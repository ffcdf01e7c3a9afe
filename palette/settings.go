package palette

import (
	"fmt"
	"strings"
)

const Bezier = "bezier"

type Settings struct {
	Controls []HSV
	Name     string
}

func (s *Settings) String() string {
	output := "\nPalette settings\n"
	output += fmt.Sprintf("Name: %s\n", s.Name)
	for i, c := range s.Controls {
		output += fmt.Sprintf("Control %d: %s\n", i, c.String())
	}
	return output
}

func (s *Settings) Verify() error {
	s.Name = strings.ToLower(strings.TrimSpace(s.Name))
	if s.Name == "" {
		s.Name = Bezier
	}
	if s.Name != Bezier {
		if _, err := PresetByName(s.Name); err != nil {
			return err
		}
	}
	defaults := DefaultControls()
	if len(s.Controls) != len(defaults) {
		s.Controls = defaults[:]
	}
	for i := range s.Controls {
		s.Controls[i] = s.Controls[i].Normalize()
	}
	return nil
}

// Lookup builds the palette the settings name.
func (s *Settings) Lookup() (Lookup, error) {
	if s.Name == "" || s.Name == Bezier {
		var controls [4]HSV
		copy(controls[:], s.Controls)
		if len(s.Controls) != len(controls) {
			controls = DefaultControls()
		}
		return NewPalette(controls), nil
	}
	return PresetByName(s.Name)
}
