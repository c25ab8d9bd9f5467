package build

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sitesmith/sitesmith/assets"
	"github.com/sitesmith/sitesmith/errs"
)

// stagePrepareOutput makes the output directory exist and, when cleaning is
// enabled, empties it first. The old tree is moved aside before removal so a
// crash mid-delete never leaves a half-empty directory masquerading as a
// finished build.
func stagePrepareOutput(_ context.Context, st *State) error {
	out := st.Options.OutputDir

	if st.Options.CleanOutput {
		if _, err := os.Stat(out); err == nil {
			aside := out + ".removing"
			_ = os.RemoveAll(aside) // leftover from an interrupted build
			if err := os.Rename(out, aside); err != nil {
				// Rename across devices can fail; fall back to in-place removal.
				if err := os.RemoveAll(out); err != nil {
					return newFatalStageError(StagePrepareOutput, errs.WriteFailed(out, err))
				}
			} else if err := os.RemoveAll(aside); err != nil {
				return newFatalStageError(StagePrepareOutput, errs.WriteFailed(aside, err))
			}
		}
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return newFatalStageError(StagePrepareOutput, errs.WriteFailed(out, err))
	}
	return nil
}

// stageMergeAssets copies or transforms every unique asset exactly once.
// Build paths are content-addressed, so an output file that already exists
// is already correct.
func stageMergeAssets(ctx context.Context, st *State) error {
	for _, key := range st.assetOrder {
		select {
		case <-ctx.Done():
			return newCanceledStageError(StageMergeAssets, ctx.Err())
		default:
		}

		rec := st.assetSet[key]
		dst := filepath.Join(st.Options.OutputDir, filepath.FromSlash(rec.BuildPath))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return newFatalStageError(StageMergeAssets, errs.WriteFailed(dst, err))
		}
		if _, err := os.Stat(dst); err == nil {
			st.Report.Assets = append(st.Report.Assets, rec.BuildPath)
			continue
		}

		var err error
		if rec.Kind == assets.KindImage && !rec.Options.IsZero() {
			err = st.Options.TransformImage(rec.SourcePath, dst, rec.Options)
		} else {
			err = copyFile(rec.SourcePath, dst)
		}
		if err != nil {
			return newFatalStageError(StageMergeAssets, errs.AssetRead(rec.SourcePath, err))
		}
		st.Report.Assets = append(st.Report.Assets, rec.BuildPath)
	}

	st.Options.Metrics.AddAssetsProcessed(len(st.Report.Assets))
	return nil
}

// stageWritePages writes every page's bytes under the output directory,
// creating intermediate directories as needed.
func stageWritePages(ctx context.Context, st *State) error {
	for _, rel := range st.writeOrder {
		select {
		case <-ctx.Done():
			return newCanceledStageError(StageWritePages, ctx.Err())
		default:
		}

		dst := filepath.Join(st.Options.OutputDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return newFatalStageError(StageWritePages, errs.WriteFailed(dst, err))
		}
		if err := os.WriteFile(dst, st.outputs[rel], 0o644); err != nil {
			return newFatalStageError(StageWritePages, errs.WriteFailed(dst, err))
		}
	}
	return nil
}

// stageCopyStatic mirrors the static directory into the output root,
// preserving relative paths. A missing static directory is not an error.
func stageCopyStatic(ctx context.Context, st *State) error {
	src := st.Options.StaticDir
	if src == "" {
		return nil
	}
	if _, err := os.Stat(src); err != nil {
		slog.Debug("static directory absent, skipping", "dir", src)
		return nil
	}

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(st.Options.OutputDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := copyFile(path, dst); err != nil {
			return err
		}
		st.Report.StaticFiles = append(st.Report.StaticFiles, StaticOutput{
			FilePath:     filepath.ToSlash(rel),
			OriginalPath: filepath.ToSlash(path),
		})
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return newCanceledStageError(StageCopyStatic, ctx.Err())
		}
		return newFatalStageError(StageCopyStatic, errs.WriteFailed(st.Options.OutputDir, err))
	}
	return nil
}

// stagePersistCache records the build's fingerprints for the next run and
// prunes records for pages the site no longer produces. Every failure here
// is a warning: the cache is disposable and must never fail a build that
// already wrote its output.
func stagePersistCache(_ context.Context, st *State) error {
	if st.cache == nil {
		return nil
	}

	var firstErr error
	if err := st.cache.SetStructuralStamp(st.Options.StructuralStamp); err != nil {
		firstErr = err
	}
	for _, p := range st.pending {
		if err := st.cache.Save(st.Report.BuildID, p.record); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	valid := make(map[string]struct{}, len(st.outputs))
	for rel := range st.outputs {
		valid[filepath.ToSlash(rel)] = struct{}{}
	}
	if err := st.cache.Prune(valid); err != nil && firstErr == nil {
		firstErr = err
	}

	if firstErr != nil {
		return newWarnStageError(StagePersistCache, errs.CacheCorrupt(st.Options.CachePath, firstErr))
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// copyTransformer is the default image transformer: a verbatim copy that
// ignores the requested options. Projects that want real resizing plug in
// their own ImageTransformer.
func copyTransformer(src, dst string, _ assets.ImageOptions) error {
	return copyFile(src, dst)
}
