// Package build orchestrates a full site build: route resolution, content
// loading, page rendering, asset merging and output writing, executed as a
// fixed sequence of observable stages.
package build

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sitesmith/sitesmith/content"
	"github.com/sitesmith/sitesmith/errs"
	"github.com/sitesmith/sitesmith/incremental"
	"github.com/sitesmith/sitesmith/routes"
)

// Run executes one complete build of the given routes against the content
// registry. It always returns the report, even on failure, so callers can
// inspect how far the build got. reg may be nil for sites without content
// sources.
func Run(ctx context.Context, rts []routes.Route, reg *content.Registry, opts Options) (*Report, error) {
	opts.normalize()

	if reg == nil {
		var err error
		reg, err = content.NewRegistry()
		if err != nil {
			return nil, err
		}
	}

	report := newReport(uuid.NewString())
	st := newState(opts, rts, reg, report)

	slog.Info("build starting",
		"build_id", report.BuildID,
		"routes", len(rts),
		"output", opts.OutputDir,
		"incremental", opts.Incremental)

	if opts.Incremental {
		store, err := incremental.Open(opts.CachePath)
		if err != nil {
			// Degrade to a full rebuild; never fail the build over the cache.
			warn := errs.CacheCorrupt(opts.CachePath, err)
			slog.Warn(warn.Message, "error", err)
			report.Warnings = append(report.Warnings, warn.Error())
		} else {
			st.cache = store
			defer func() { _ = store.Close() }()
		}
	}
	st.checker = incremental.NewChecker(st.cache, opts.StructuralStamp, reg)

	stages := []stageDef{
		{StagePrepareOutput, stagePrepareOutput},
		{StageInitContent, stageInitContent},
		{StageResolveRoutes, stageResolveRoutes},
		{StageRenderPages, stageRenderPages},
		{StageMergeAssets, stageMergeAssets},
		{StageWritePages, stageWritePages},
		{StageCopyStatic, stageCopyStatic},
		{StagePersistCache, stagePersistCache},
	}

	err := runStages(ctx, st, stages)
	report.Elapsed = time.Since(report.StartedAt)
	opts.Metrics.ObserveBuildDuration(report.Elapsed)
	opts.Metrics.IncBuildOutcome(outcomeOf(err))

	if err != nil {
		slog.Error("build failed",
			"build_id", report.BuildID,
			"elapsed", report.Elapsed,
			"error", err)
		return report, err
	}

	slog.Info("build finished",
		"build_id", report.BuildID,
		"pages", report.PageCount(),
		"rendered", report.RenderedPages,
		"reused", report.SkippedPages,
		"assets", report.AssetCount(),
		"static_files", len(report.StaticFiles),
		"warnings", len(report.Warnings),
		"elapsed", report.Elapsed)
	return report, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	var se *StageError
	if errors.As(err, &se) && se.Kind == StageErrorCanceled {
		return "canceled"
	}
	return "failed"
}
