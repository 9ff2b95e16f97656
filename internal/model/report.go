package model

import "time"

// MutantOutcome is the terminal classification of a mutant.
type MutantOutcome int

const (
	// Killed indicates at least one test failed against the mutant.
	Killed MutantOutcome = iota
	// Survived indicates the whole suite passed against the mutant.
	Survived
	// SkippedLogged indicates the mutant was flagged in the skip log.
	SkippedLogged
	// SkippedPattern indicates the mutant's base name did not match the mutant pattern.
	SkippedPattern
	// SkippedNoRunnerMatch indicates the runner found no test matching its patterns.
	SkippedNoRunnerMatch
	// SkippedResolutionError indicates the mutant file could not be resolved at test time.
	SkippedResolutionError
)

func (o MutantOutcome) String() string {
	switch o {
	case Killed:
		return "killed"
	case Survived:
		return "survived"
	case SkippedLogged:
		return "skipped (log)"
	case SkippedPattern:
		return "skipped (pattern)"
	case SkippedNoRunnerMatch:
		return "skipped (no test match)"
	case SkippedResolutionError:
		return "skipped (unresolved)"
	default:
		return "unknown"
	}
}

// Tested reports whether the outcome counts as a tested mutant.
func (o MutantOutcome) Tested() bool {
	return o == Killed || o == Survived
}

// MutantRecord is the journaled outcome of one mutant.
type MutantRecord struct {
	ID      MutantID      `yaml:"id"`
	Target  Path          `yaml:"target,omitempty"`
	Outcome MutantOutcome `yaml:"-"`
	Status  string        `yaml:"status"`
}

// Summary is the aggregate report of a finished run, with its lists already formatted.
type Summary struct {
	Duration       string
	Command        string
	SkipLog        string
	LogSkipped     string
	PatternSkipped string
	RunnerSkipped  string
	Tally          RunTally
	Score          string
}

// RunReport is the machine-readable report persisted next to the result file.
type RunReport struct {
	RunID      string         `yaml:"run_id"`
	StartedAt  time.Time      `yaml:"started_at"`
	FinishedAt time.Time      `yaml:"finished_at"`
	Command    string         `yaml:"command"`
	Options    RunnerOptions  `yaml:"options"`
	Pattern    string         `yaml:"match_mutant,omitempty"`
	Total      int            `yaml:"total"`
	Skipped    int            `yaml:"skipped"`
	Tested     int            `yaml:"tested"`
	Killed     int            `yaml:"killed"`
	Survived   int            `yaml:"survived"`
	Score      string         `yaml:"score"`
	Undetected []MutantID     `yaml:"undetected"`
	Mutants    []MutantRecord `yaml:"mutants"`
}
