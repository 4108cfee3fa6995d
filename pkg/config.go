package hornql

import (
	"fmt"
	"io/ioutil"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config carries the classification thresholds and the evaluation
// date. The date builtins never look at the wall clock; every age and
// overdue computation is anchored to CurrentDate so a run is
// reproducible.
type Config struct {
	// CurrentDate anchors ageAtLeast and overdueAtLeast, YYYY-MM-DD.
	CurrentDate string `yaml:"current_date"`

	// SeniorYears is the experience bound for SeniorDoctor. The
	// comparison is strict (greaterThan) unless SeniorInclusive flips
	// it to atLeast.
	SeniorYears     int  `yaml:"senior_years"`
	SeniorInclusive bool `yaml:"senior_inclusive"`

	// HighCostThreshold marks treatments as HighCostTreatment when
	// their cost exceeds it.
	HighCostThreshold float64 `yaml:"high_cost_threshold"`

	// ElderlyAge marks patients as ElderlyPatient at or above it.
	ElderlyAge int `yaml:"elderly_age"`

	// DelinquentDays marks unpaid bills as DelinquentAccount once
	// they are overdue by at least this many days.
	DelinquentDays int `yaml:"delinquent_days"`

	// MaxFixpointPasses caps a rule-engine run.
	MaxFixpointPasses int `yaml:"max_fixpoint_passes"`
}

func DefaultConfig() Config {
	return Config{
		CurrentDate:       "2026-01-01",
		SeniorYears:       15,
		SeniorInclusive:   false,
		HighCostThreshold: 1000,
		ElderlyAge:        65,
		DelinquentDays:    90,
		MaxFixpointPasses: 10000,
	}
}

// LoadConfig reads a YAML config file over the defaults. Fields the
// file doesn't mention keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %v", path, err)
	}
	if _, err := cfg.Date(); err != nil {
		return cfg, fmt.Errorf("config %s: %v", path, err)
	}
	return cfg, nil
}

// Date parses CurrentDate as a UTC calendar date.
func (c Config) Date() (time.Time, error) {
	if c.CurrentDate == "" {
		return time.Time{}, fmt.Errorf("no current_date configured")
	}
	t, err := time.Parse("2006-01-02", c.CurrentDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad current_date %q: %v", c.CurrentDate, err)
	}
	return t.UTC(), nil
}
