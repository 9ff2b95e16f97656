package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"forgemut.dev/pkg/forgemut/internal/adapter"
	"forgemut.dev/pkg/forgemut/internal/controller"
	m "forgemut.dev/pkg/forgemut/internal/model"
	pkg "forgemut.dev/pkg/forgemut/pkg"
)

// JournalFileName is the per-run outcomes journal inside the log folder.
const JournalFileName = "outcomes.gob"

// RunArgs contains the arguments of a mutation run.
type RunArgs struct {
	Options m.RunnerOptions
	// Pattern selects mutants by base name; empty selects all.
	Pattern string
	SkipLog m.Path
	// Binary is only used to render the runner command in the summary.
	Binary string
	Log    adapter.LogConfig
}

// ListArgs contains the arguments for listing the corpus.
type ListArgs struct {
	Pattern string
	SkipLog m.Path
}

// ViewArgs contains the arguments for displaying a stored run report.
type ViewArgs struct {
	// Folder is the run folder; empty selects the latest run under LogDir.
	Folder   m.Path
	LogDir   string
	BaseName string
}

// Workflow drives the mutant corpus through the project's test suite.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	List(ctx context.Context, args ListArgs) error
	View(ctx context.Context, args ViewArgs) error
}

// WorkflowDeps groups the collaborators of a Workflow.
type WorkflowDeps struct {
	FS           adapter.SourceFSAdapter
	Logs         adapter.LogStore
	Reports      adapter.ReportStore
	Worktree     adapter.WorktreeAdapter
	Resolver     CorpusResolver
	Filter       SkipFilter
	Swapper      FileSwapper
	Orchestrator Orchestrator
	UI           controller.UI
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.LogStore
	adapter.ReportStore
	adapter.WorktreeAdapter
	CorpusResolver
	SkipFilter
	FileSwapper
	Orchestrator
	controller.UI

	sourceRoot m.Path
	now        func() time.Time
}

// NewWorkflow creates a Workflow operating on the project rooted at sourceRoot.
func NewWorkflow(deps WorkflowDeps, sourceRoot m.Path) Workflow {
	return &workflow{
		SourceFSAdapter: deps.FS,
		LogStore:        deps.Logs,
		ReportStore:     deps.Reports,
		WorktreeAdapter: deps.Worktree,
		CorpusResolver:  deps.Resolver,
		SkipFilter:      deps.Filter,
		FileSwapper:     deps.Swapper,
		Orchestrator:    deps.Orchestrator,
		UI:              deps.UI,
		sourceRoot:      sourceRoot,
		now:             time.Now,
	}
}

// runState is what the control loop accumulates while testing mutants.
type runState struct {
	args          RunArgs
	session       adapter.LogSession
	journal       pkg.Journal[m.MutantRecord]
	skips         SkipSets
	tally         *m.RunTally
	runnerSkipped []m.MutantID
}

func (s *runState) record(id m.MutantID, target m.Path, outcome m.MutantOutcome) {
	s.tally.Record(id, outcome)

	if outcome == m.SkippedNoRunnerMatch {
		s.runnerSkipped = append(s.runnerSkipped, id)
	}

	record := m.MutantRecord{ID: id, Target: target, Outcome: outcome, Status: outcome.String()}
	if err := s.journal.Append(record); err != nil {
		slog.Warn("Failed to journal outcome", "id", id, "error", err)
		s.session.Append(fmt.Sprintf("Failed to journal outcome of mutant %s: %v", id, err), false, true)
	}
}

func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	startedAt := w.now()
	runID := uuid.NewString()
	logger := slog.With("run", runID)

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Close(context.WithoutCancel(ctx))

	logCfg := args.Log
	logCfg.Console = w.Console()

	session, err := w.Open(ctx, logCfg)
	if err != nil {
		return fmt.Errorf("open log session: %w", err)
	}

	journal, err := pkg.OpenJournal[m.MutantRecord](string(session.Folder()), JournalFileName)
	if err != nil {
		return fmt.Errorf("open outcomes journal: %w", err)
	}
	defer journal.Close()

	logger.Info("Run started", "folder", session.Folder(), "journal", journal.Path())

	state := &runState{args: args, session: session, journal: journal, tally: m.NewRunTally()}

	ids, err := w.prepare(ctx, state)
	if err != nil {
		session.Append(err.Error(), true, true)
		logger.Error("Run aborted before mutation", "error", err)

		return err
	}

	loopErr := w.testAll(ctx, state, ids)

	cleanupErr := w.Cleanup(ctx)
	if cleanupErr == nil {
		session.Append("Removed backup directory\n", false, false)
	}

	if err := errors.Join(loopErr, cleanupErr); err != nil {
		session.Append(err.Error(), false, true)
		logger.Error("Run aborted", "error", err)

		return err
	}

	summary := BuildSummary(SummaryInput{
		Elapsed:       w.now().Sub(startedAt),
		Binary:        args.Binary,
		Options:       args.Options,
		SkipLog:       args.SkipLog,
		Skips:         state.skips,
		RunnerSkipped: state.runnerSkipped,
		Tally:         state.tally,
	})

	if err := session.WriteFinal(controller.RenderSummary(summary, controller.PlainPalette())); err != nil {
		logger.Warn("Failed to write result file", "path", session.ResultPath(), "error", err)
		w.DisplayMessage(ctx, fmt.Sprintf("Error writing result file %s: %v", session.ResultPath(), err))
	}

	w.DisplaySummary(ctx, summary)

	report, err := w.buildReport(runID, startedAt, summary, state)
	if err == nil {
		err = w.SaveReport(ctx, session.ReportPath(), report)
	}

	if err != nil {
		logger.Warn("Failed to save run report", "path", session.ReportPath(), "error", err)
		w.DisplayMessage(ctx, fmt.Sprintf("Error saving run report: %v", err))
	}

	logger.Info("Run finished",
		"total", state.tally.Total(), "killed", state.tally.Killed(), "survived", state.tally.Survived(), "score", summary.Score)

	return nil
}

// prepare validates the corpus and computes the skip sets. Nothing in the
// project tree is touched before it succeeds.
func (w *workflow) prepare(ctx context.Context, state *runState) ([]m.MutantID, error) {
	if err := w.Validate(ctx); err != nil {
		return nil, fmt.Errorf("error checking mutant file against existing file: %w", err)
	}

	state.session.Append("All mutants have been successfully verified.\n", false, false)

	ids, err := w.IDs(ctx)
	if err != nil {
		return nil, err
	}

	skips, err := w.Compute(ctx, ids, state.args.SkipLog, state.args.Pattern)
	if err != nil {
		return nil, err
	}

	for _, warning := range skips.Warnings {
		state.session.Append(warning, false, true)
	}

	state.skips = skips

	if err := w.Preflight(ctx); err != nil {
		return nil, err
	}

	w.warnDirtyTargets(ctx, state, ids)

	return ids, nil
}

func (w *workflow) warnDirtyTargets(ctx context.Context, state *runState, ids []m.MutantID) {
	resolutions, err := w.ResolveAll(ctx, ids)
	if err != nil {
		return
	}

	seen := make(map[m.Path]struct{})

	var targets []m.Path

	for _, res := range resolutions {
		if _, skipped := state.skips.Reason(res.ID); skipped || res.Err != nil {
			continue
		}

		if _, ok := seen[res.Mutant.TargetRelativePath]; !ok {
			seen[res.Mutant.TargetRelativePath] = struct{}{}
			targets = append(targets, res.Mutant.TargetRelativePath)
		}
	}

	dirty, err := w.DirtyFiles(ctx, w.sourceRoot, targets)
	if err != nil {
		slog.Warn("Git preflight failed", "error", err)
		return
	}

	for _, path := range dirty {
		state.session.Append(fmt.Sprintf("Warning: %s has uncommitted changes.", path), true, true)
	}
}

func (w *workflow) testAll(ctx context.Context, state *runState, ids []m.MutantID) error {
	session := state.session

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		session.Append(fmt.Sprintf("Processing mutant %s...", id), false, false)

		if err := session.EnsureCapacity(); err != nil {
			slog.Warn("Failed to rotate log file", "path", session.CurrentPath(), "error", err)
		}

		w.DisplayProgress(ctx, id, i+1, len(ids))

		if err := w.testOne(ctx, state, id); err != nil {
			return err
		}
	}

	return nil
}

func (w *workflow) testOne(ctx context.Context, state *runState, id m.MutantID) error {
	session := state.session

	if reason, skipped := state.skips.Reason(id); skipped {
		if reason == m.SkippedLogged {
			session.Append(fmt.Sprintf("Mutant %s is flagged in the %s file. Skipping...\n", id, skipLogName(state.args.SkipLog)), false, false)
		} else {
			session.Append(fmt.Sprintf("Mutant %s does not match the --match-mutant regex. Skipping...\n", id), false, false)
		}

		state.record(id, "", reason)

		return nil
	}

	mutant, err := w.Resolve(ctx, id)
	if err != nil {
		session.Append(fmt.Sprintf("Skipped mutant %s due to error in mutant file details: %v\n", id, err), false, true)
		state.record(id, "", m.SkippedResolutionError)

		return nil
	}

	transition, err := w.Inject(ctx, mutant)
	if err != nil {
		return err
	}

	if transition.Restored != "" {
		session.Append(fmt.Sprintf("Restored original file %s", transition.Restored), false, false)
	}

	if transition.BackedUp != "" {
		session.Append(fmt.Sprintf("Backed up original file to %s", transition.BackedUp), false, false)
	}

	session.Append(fmt.Sprintf("Copied mutant %s from %s to %s", id, mutant.MutantAbsolutePath, transition.Injected), false, false)
	session.Append(fmt.Sprintf("Running %s for mutant %s...", RunnerCommand(state.args.Binary, state.args.Options), id), false, false)

	outcome, output, err := w.TestMutant(ctx, mutant, state.args.Options)
	if err != nil {
		session.Append(fmt.Sprintf("Runner failed for mutant %s:\n%s", id, output), false, true)
		return err
	}

	switch outcome {
	case m.Killed:
		session.Append("FAILED ! Test output:\n"+output, false, false)
	case m.SkippedNoRunnerMatch:
		session.Append("Skipped ! Test output:\n"+output, false, false)
	default:
		session.Append("PASSED ! Test output:\n"+output, false, false)
		w.logSurvivorDiff(ctx, state, mutant)
	}

	state.record(id, mutant.TargetRelativePath, outcome)
	session.Append(fmt.Sprintf("Finished testing mutant %s\n", id), false, false)

	return nil
}

func (w *workflow) logSurvivorDiff(ctx context.Context, state *runState, mutant m.Mutant) {
	original, err := w.Original(ctx)
	if err != nil {
		slog.Warn("Cannot read original for diff", "id", mutant.ID, "error", err)
		return
	}

	mutated, err := w.ReadFile(ctx, mutant.MutantAbsolutePath)
	if err != nil {
		slog.Warn("Cannot read mutant for diff", "id", mutant.ID, "error", err)
		return
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(mutated)),
		FromFile: string(mutant.TargetRelativePath),
		ToFile:   fmt.Sprintf("mutant %s", mutant.ID),
		Context:  2,
	})
	if err != nil {
		slog.Warn("Cannot build survivor diff", "id", mutant.ID, "error", err)
		return
	}

	state.session.Append(fmt.Sprintf("Mutant %s survived:\n%s", mutant.ID, diff), false, true)
}

func (w *workflow) buildReport(runID string, startedAt time.Time, summary m.Summary, state *runState) (m.RunReport, error) {
	report := m.RunReport{
		RunID:      runID,
		StartedAt:  startedAt.UTC(),
		FinishedAt: w.now().UTC(),
		Command:    summary.Command,
		Options:    state.args.Options,
		Pattern:    state.args.Pattern,
		Total:      state.tally.Total(),
		Skipped:    state.tally.Skipped(),
		Tested:     state.tally.Tested(),
		Killed:     state.tally.Killed(),
		Survived:   state.tally.Survived(),
		Score:      summary.Score,
		Undetected: state.tally.Undetected(),
	}

	report.Mutants = make([]m.MutantRecord, 0, state.journal.Len())

	err := state.journal.Range(func(_ uint64, record m.MutantRecord) error {
		report.Mutants = append(report.Mutants, record)
		return nil
	})
	if err != nil {
		return m.RunReport{}, fmt.Errorf("read outcomes journal: %w", err)
	}

	return report, nil
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	ids, err := w.IDs(ctx)
	if err != nil {
		return err
	}

	skips, err := w.Compute(ctx, ids, args.SkipLog, args.Pattern)
	if err != nil {
		return err
	}

	for _, warning := range skips.Warnings {
		w.DisplayMessage(ctx, warning)
	}

	resolutions, err := w.ResolveAll(ctx, ids)
	if err != nil {
		return err
	}

	entries := make([]m.CorpusEntry, 0, len(resolutions))

	for _, res := range resolutions {
		entry := m.CorpusEntry{
			ID:       res.ID,
			Target:   res.Mutant.TargetRelativePath,
			BaseName: res.Mutant.BaseName,
			Decision: controller.DecisionTest,
		}

		switch reason, skipped := skips.Reason(res.ID); {
		case skipped:
			entry.Decision = reason.String()
		case res.Err != nil:
			entry.Decision = m.SkippedResolutionError.String()
		}

		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	return w.DisplayCorpusListing(ctx, entries)
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	folder := args.Folder
	if folder == "" {
		latest, err := w.Latest(ctx, args.LogDir, args.BaseName)
		if err != nil {
			return fmt.Errorf("find latest run: %w", err)
		}

		folder = latest
	}

	report, err := w.LoadReport(ctx, adapter.ReportFileFor(folder))
	if err != nil {
		return fmt.Errorf("load report of %s: %w", folder, err)
	}

	return w.DisplayReport(ctx, report)
}
