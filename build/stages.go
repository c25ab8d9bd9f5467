package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sitesmith/sitesmith/metrics"
)

// StageName is a strongly-typed identifier for a build stage. All canonical
// stages are declared as constants here for compile-time safety.
type StageName string

const (
	StagePrepareOutput StageName = "prepare_output"
	StageInitContent   StageName = "init_content"
	StageResolveRoutes StageName = "resolve_routes"
	StageRenderPages   StageName = "render_pages"
	StageMergeAssets   StageName = "merge_assets"
	StageWritePages    StageName = "write_pages"
	StageCopyStatic    StageName = "copy_static"
	StagePersistCache  StageName = "persist_cache"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, st *State) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// stageDef pairs a stage name with its executing function.
type stageDef struct {
	name StageName
	fn   Stage
}

// runStages executes stages in order, recording timing and metrics, and
// stopping on the first fatal error. Warnings are recorded on the report
// and execution continues.
func runStages(ctx context.Context, st *State, stages []stageDef) error {
	for _, def := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(def.name, ctx.Err())
			st.Options.Metrics.IncStageResult(string(def.name), metrics.ResultCanceled)
			return se
		default:
		}

		t0 := time.Now()
		err := def.fn(ctx, st)
		dur := time.Since(t0)
		st.Report.StageDurations[def.name] = dur
		st.Options.Metrics.ObserveStageDuration(string(def.name), dur)
		slog.Debug("stage finished", "stage", def.name, "elapsed", dur)

		if err == nil {
			st.Options.Metrics.IncStageResult(string(def.name), metrics.ResultSuccess)
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			// Unknown errors are fatal by default.
			se = newFatalStageError(def.name, err)
		}
		switch se.Kind {
		case StageErrorWarning:
			st.Report.Warnings = append(st.Report.Warnings, se.Error())
			st.Options.Metrics.IncStageResult(string(def.name), metrics.ResultWarning)
			continue
		case StageErrorCanceled:
			st.Options.Metrics.IncStageResult(string(def.name), metrics.ResultCanceled)
			return se
		default:
			st.Options.Metrics.IncStageResult(string(def.name), metrics.ResultFatal)
			return se
		}
	}
	return nil
}
