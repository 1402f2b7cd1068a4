package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/spindelay/calibration"
	"github.com/sarchlab/spindelay/timing"
)

// A Target declares a named calibration source. A zero loop frequency
// means the host is measured; a non-zero one is taken as the fixed,
// known kernel rate and used without measurement.
type Target struct {
	Name           string  `yaml:"name"`
	LoopFreqHz     float64 `yaml:"loopFrequencyHz"`
	CallOverheadNs int64   `yaml:"callOverheadNs"`
}

type targetFile struct {
	Targets []Target `yaml:"targets"`
}

// LoadTargets reads the target declarations from the YAML file at
// path.
func LoadTargets(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f targetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}

	return f.Targets, nil
}

// Profile turns a target declaration into a calibration profile,
// measuring the host when no fixed rate is declared.
func (t Target) Profile() calibration.Profile {
	if t.LoopFreqHz == 0 {
		return calibration.Measure(calibration.WallClock())
	}

	return calibration.Fixed(
		timing.Freq(t.LoopFreqHz),
		time.Duration(t.CallOverheadNs)*time.Nanosecond,
	)
}

func findTarget(targets []Target, name string) (Target, bool) {
	for _, t := range targets {
		if t.Name == name {
			return t, true
		}
	}

	return Target{}, false
}
