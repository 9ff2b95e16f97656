package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"forgemut.dev/pkg/forgemut/internal/adapter"
	m "forgemut.dev/pkg/forgemut/internal/model"
)

// SkipSets holds the two independently computed sets of excluded mutants.
type SkipSets struct {
	// Logged are the mutants flagged in the skip log, ascending.
	Logged []m.MutantID
	// Pattern are the mutants whose base name does not match the mutant pattern, ascending.
	Pattern []m.MutantID
	// Warnings are recoverable problems met while computing the sets.
	Warnings []string

	logged  map[m.MutantID]struct{}
	pattern map[m.MutantID]struct{}
}

// NewSkipSets builds SkipSets from the two id lists.
func NewSkipSets(logged, pattern []m.MutantID) SkipSets {
	s := SkipSets{
		Logged:  uniqueSorted(logged),
		Pattern: uniqueSorted(pattern),
		logged:  make(map[m.MutantID]struct{}, len(logged)),
		pattern: make(map[m.MutantID]struct{}, len(pattern)),
	}

	for _, id := range s.Logged {
		s.logged[id] = struct{}{}
	}

	for _, id := range s.Pattern {
		s.pattern[id] = struct{}{}
	}

	return s
}

// Reason reports whether id is skipped and why. The skip log wins over the pattern.
func (s SkipSets) Reason(id m.MutantID) (m.MutantOutcome, bool) {
	if _, ok := s.logged[id]; ok {
		return m.SkippedLogged, true
	}

	if _, ok := s.pattern[id]; ok {
		return m.SkippedPattern, true
	}

	return 0, false
}

// SkipFilter computes, before any file is touched, which mutants must not be tested.
type SkipFilter interface {
	// LogFlagged parses the skip log. Lines starting with '-' flag the id
	// written before the first comma. A missing log flags nothing.
	LogFlagged(ctx context.Context, skipLog m.Path) ([]m.MutantID, []string, error)

	// PatternMismatched returns the ids whose base name does not match pattern
	// (a regular expression search). An empty pattern matches everything.
	PatternMismatched(ctx context.Context, ids []m.MutantID, pattern string) ([]m.MutantID, []string, error)

	// Compute combines both sets.
	Compute(ctx context.Context, ids []m.MutantID, skipLog m.Path, pattern string) (SkipSets, error)
}

type skipFilter struct {
	adapter.SourceFSAdapter
	CorpusResolver
}

// NewSkipFilter constructs a SkipFilter.
func NewSkipFilter(fsAdapter adapter.SourceFSAdapter, resolver CorpusResolver) SkipFilter {
	return &skipFilter{SourceFSAdapter: fsAdapter, CorpusResolver: resolver}
}

func (f *skipFilter) LogFlagged(ctx context.Context, skipLog m.Path) ([]m.MutantID, []string, error) {
	if skipLog == "" {
		return nil, nil, nil
	}

	content, err := f.ReadFile(ctx, skipLog)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("Skip log not found, no mutant flagged", "path", skipLog)
		return nil, []string{fmt.Sprintf("Skip log %s not found, no mutant flagged.", skipLog)}, nil
	}

	if err != nil {
		slog.Error("Failed to read skip log", "path", skipLog, "error", err)
		return nil, nil, fmt.Errorf("read skip log %s: %w", skipLog, err)
	}

	var (
		ids      []m.MutantID
		warnings []string
	)

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "-") {
			continue
		}

		field, _, found := strings.Cut(line[1:], ",")

		id, err := strconv.Atoi(strings.TrimSpace(field))
		if !found || err != nil || id <= 0 {
			warnings = append(warnings, fmt.Sprintf("Invalid mutant number format, line %q will be ignored.", line))
			continue
		}

		ids = append(ids, m.MutantID(id))
	}

	return uniqueSorted(ids), warnings, nil
}

func (f *skipFilter) PatternMismatched(ctx context.Context, ids []m.MutantID, pattern string) ([]m.MutantID, []string, error) {
	if pattern == "" {
		return nil, nil, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid mutant pattern %q: %w", pattern, err)
	}

	resolutions, err := f.ResolveAll(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	var (
		mismatched []m.MutantID
		warnings   []string
	)

	for _, res := range resolutions {
		if res.Err != nil {
			slog.Warn("Mutant unresolved during pattern filtering", "id", res.ID, "error", res.Err)
			warnings = append(warnings, fmt.Sprintf("Invalid infos for mutant %s, mutant pattern not tested: %v", res.ID, res.Err))

			continue
		}

		if !re.MatchString(res.Mutant.BaseName) {
			mismatched = append(mismatched, res.ID)
		}
	}

	return mismatched, warnings, nil
}

func (f *skipFilter) Compute(ctx context.Context, ids []m.MutantID, skipLog m.Path, pattern string) (SkipSets, error) {
	logged, logWarnings, err := f.LogFlagged(ctx, skipLog)
	if err != nil {
		return SkipSets{}, err
	}

	mismatched, patternWarnings, err := f.PatternMismatched(ctx, ids, pattern)
	if err != nil {
		return SkipSets{}, err
	}

	sets := NewSkipSets(logged, mismatched)
	sets.Warnings = append(logWarnings, patternWarnings...)

	return sets, nil
}

func uniqueSorted(ids []m.MutantID) []m.MutantID {
	if len(ids) == 0 {
		return nil
	}

	out := make([]m.MutantID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	n := 1

	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}

	return out[:n]
}
