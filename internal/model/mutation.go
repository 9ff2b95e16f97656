package model

// Mutant is a single pre-generated variant of a project file.
type Mutant struct {
	ID MutantID
	// TargetRelativePath is the path of the original file, relative to the project root.
	TargetRelativePath Path
	// MutantAbsolutePath is the location of the mutant file inside the corpus.
	MutantAbsolutePath Path
	// BaseName is the target file name up to its first dot (e.g. "Token" for Token.sol).
	BaseName string
}

// RunnerOptions holds the include/exclude patterns forwarded to the external test runner.
type RunnerOptions struct {
	MatchContract   string `yaml:"match_contract,omitempty"`
	NoMatchContract string `yaml:"no_match_contract,omitempty"`
	MatchTest       string `yaml:"match_test,omitempty"`
	NoMatchTest     string `yaml:"no_match_test,omitempty"`
}

// RunResult is the captured result of one runner invocation that actually started.
type RunResult struct {
	Output   string
	ExitCode int
}
