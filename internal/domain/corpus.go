package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"forgemut.dev/pkg/forgemut/internal/adapter"
	m "forgemut.dev/pkg/forgemut/internal/model"
)

// DefaultResolveThreads bounds concurrent read-only corpus traversal.
const DefaultResolveThreads = 4

// CorpusConfig locates the mutant corpus and the project it mirrors.
type CorpusConfig struct {
	Dir        m.Path
	SourceRoot m.Path
	Threads    int
}

// Resolution is the result of resolving one mutant folder.
type Resolution struct {
	ID     m.MutantID
	Mutant m.Mutant
	Err    error
}

// CorpusResolver enumerates mutants and maps each one to the project file it replaces.
type CorpusResolver interface {
	// IDs lists the numeric mutant folders in ascending order.
	IDs(ctx context.Context) ([]m.MutantID, error)

	// Resolve descends into the mutant folder until it reaches its single leaf file.
	Resolve(ctx context.Context, id m.MutantID) (m.Mutant, error)

	// ResolveAll resolves ids concurrently. Per-mutant failures are reported in
	// the matching Resolution; results keep the order of ids.
	ResolveAll(ctx context.Context, ids []m.MutantID) ([]Resolution, error)

	// Validate checks that every mutant resolves and that its target exists
	// in the source tree.
	Validate(ctx context.Context) error
}

type corpusResolver struct {
	adapter.SourceFSAdapter
	cfg CorpusConfig
}

// NewCorpusResolver constructs a CorpusResolver over the given filesystem.
func NewCorpusResolver(fsAdapter adapter.SourceFSAdapter, cfg CorpusConfig) CorpusResolver {
	if cfg.Threads <= 0 {
		cfg.Threads = DefaultResolveThreads
	}

	if cfg.SourceRoot == "" {
		cfg.SourceRoot = "."
	}

	return &corpusResolver{SourceFSAdapter: fsAdapter, cfg: cfg}
}

func (r *corpusResolver) IDs(ctx context.Context) ([]m.MutantID, error) {
	entries, err := r.ReadDir(ctx, r.cfg.Dir)
	if err != nil {
		slog.Error("Failed to read corpus", "dir", r.cfg.Dir, "error", err)
		return nil, &CorpusIntegrityError{Path: r.cfg.Dir, Reason: "cannot read corpus directory", Err: err}
	}

	ids := make([]m.MutantID, 0, len(entries))

	for _, entry := range entries {
		id, ok := m.ParseMutantID(entry.Name())
		if !ok || !entry.IsDir() {
			slog.Warn("Ignoring non-mutant corpus entry", "dir", r.cfg.Dir, "name", entry.Name())
			continue
		}

		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

func (r *corpusResolver) Resolve(ctx context.Context, id m.MutantID) (m.Mutant, error) {
	root := r.JoinPath(ctx, string(r.cfg.Dir), id.String())
	dir := root

	for {
		entries, err := r.ReadDir(ctx, dir)
		if err != nil {
			return m.Mutant{}, &CorpusIntegrityError{Path: dir, Reason: "cannot read mutant folder", Err: err}
		}

		if len(entries) != 1 {
			return m.Mutant{}, &CorpusIntegrityError{
				Path:   dir,
				Reason: fmt.Sprintf("expected exactly one file or folder, found %d", len(entries)),
			}
		}

		name := entries[0].Name()
		path := r.JoinPath(ctx, string(dir), name)

		info, err := r.FileInfo(ctx, path)
		if err != nil {
			return m.Mutant{}, &CorpusIntegrityError{Path: path, Reason: "cannot stat mutant entry", Err: err}
		}

		if info.IsDir() {
			dir = path
			continue
		}

		rel, err := r.RelPath(ctx, root, path)
		if err != nil {
			return m.Mutant{}, &CorpusIntegrityError{Path: path, Reason: "cannot locate mutant in its folder", Err: err}
		}

		return m.Mutant{
			ID:                 id,
			TargetRelativePath: rel,
			MutantAbsolutePath: absPath(path),
			BaseName:           baseName(name),
		}, nil
	}
}

func (r *corpusResolver) ResolveAll(ctx context.Context, ids []m.MutantID) ([]Resolution, error) {
	results := make([]Resolution, len(ids))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.cfg.Threads)

	for i, id := range ids {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			mutant, err := r.Resolve(groupCtx, id)
			results[i] = Resolution{ID: id, Mutant: mutant, Err: err}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func (r *corpusResolver) Validate(ctx context.Context) error {
	ids, err := r.IDs(ctx)
	if err != nil {
		return err
	}

	resolutions, err := r.ResolveAll(ctx, ids)
	if err != nil {
		return err
	}

	for _, res := range resolutions {
		if res.Err != nil {
			slog.Error("Mutant does not resolve", "id", res.ID, "error", res.Err)
			return res.Err
		}

		target := r.JoinPath(ctx, string(r.cfg.SourceRoot), string(res.Mutant.TargetRelativePath))

		info, err := r.FileInfo(ctx, target)
		if err != nil || info.IsDir() {
			slog.Error("Mutant target missing from source", "id", res.ID, "target", target, "error", err)

			return &CorpusIntegrityError{
				Path:   res.Mutant.MutantAbsolutePath,
				Reason: fmt.Sprintf("refers to %s, which does not exist in the source", res.Mutant.TargetRelativePath),
				Err:    err,
			}
		}
	}

	slog.Debug("Corpus validated", "mutants", len(ids))

	return nil
}

// baseName returns the file name up to its first dot.
func baseName(name string) string {
	base, _, _ := strings.Cut(name, ".")
	return base
}

func absPath(path m.Path) m.Path {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return path
	}

	return m.Path(abs)
}
