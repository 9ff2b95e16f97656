// Package model defines the data structures for mutant orchestration.
package model

import (
	"strconv"
	"strings"
)

// Path represents a file system path.
type Path string

// MutantID is the numeric identifier of a mutant folder in the corpus.
type MutantID int

// String returns the folder name used for the mutant in the corpus.
func (id MutantID) String() string {
	return strconv.Itoa(int(id))
}

// JoinIDs renders ids in the given order, comma separated.
func JoinIDs(ids []MutantID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}

	return strings.Join(parts, ", ")
}

// ParseMutantID converts a corpus folder name into a MutantID.
// Only positive integers are valid identifiers.
func ParseMutantID(name string) (MutantID, bool) {
	n, err := strconv.Atoi(name)
	if err != nil || n <= 0 {
		return 0, false
	}

	return MutantID(n), true
}

// CorpusEntry is one row of the corpus listing shown by the list command.
type CorpusEntry struct {
	ID       MutantID
	Target   Path
	BaseName string
	Decision string
}
