package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sitesmith/sitesmith/assets"
	"github.com/sitesmith/sitesmith/content"
	"github.com/sitesmith/sitesmith/errs"
	"github.com/sitesmith/sitesmith/incremental"
	"github.com/sitesmith/sitesmith/routes"
)

// stageRenderPages renders every resolved page, or reuses the previous
// build's output when the incremental checker proves nothing the page
// depends on has changed. A single failing page aborts the whole build.
func stageRenderPages(ctx context.Context, st *State) error {
	for _, p := range st.resolved {
		select {
		case <-ctx.Done():
			return newCanceledStageError(StageRenderPages, ctx.Err())
		default:
		}

		cacheKey := filepath.ToSlash(p.FilePath)

		if rebuild, rec := st.checker.ShouldRebuild(cacheKey); !rebuild {
			st.addOutput(p.FilePath, rec.Output)
			st.mergeAssets(rec.Assets)
			st.recordPage(p, true)
			slog.Debug("page reused", "url", p.URL, "file", cacheKey)
			continue
		}

		if err := renderPage(st, p, cacheKey); err != nil {
			return newFatalStageError(StageRenderPages, err)
		}
	}

	st.Options.Metrics.AddPagesRendered(st.Report.RenderedPages)
	st.Options.Metrics.AddPagesSkipped(st.Report.SkippedPages)
	slog.Info("pages rendered",
		"rendered", st.Report.RenderedPages,
		"reused", st.Report.SkippedPages)
	return nil
}

func renderPage(st *State, p *ResolvedPage, cacheKey string) error {
	acc := content.NewAccessor(st.Content)
	ledger := assets.NewLedger(st.Options.AssetsDir)
	pctx := routes.NewPageContext(
		p.Params, p.Props, acc, ledger,
		p.URL, st.Options.BaseURL, p.Variant, st.Options.Dev,
	)

	result, err := p.Route.Render(pctx)
	if err != nil {
		return errs.Render(p.URL, p.Variant, err)
	}

	out, err := finishOutput(p, result, ledger)
	if err != nil {
		return err
	}

	st.addOutput(p.FilePath, out)
	st.mergeAssets(ledger.Records())
	st.recordPage(p, false)

	if st.cache != nil {
		deps := pageDeps(p, acc, ledger)
		st.pending = append(st.pending, pendingRecord{record: &incremental.PageRecord{
			FilePath:    cacheKey,
			URL:         p.URL,
			Fingerprint: incremental.Fingerprint(st.Options.StructuralStamp, deps),
			Deps:        deps,
			Output:      out,
			Assets:      ledger.Records(),
		}})
	}
	return nil
}

// finishOutput converts a render result into final bytes. HTML text receives
// the page's included styles and scripts in its <head>; raw output must not
// carry head inclusions because there is no head to inject into.
func finishOutput(p *ResolvedPage, result routes.RenderResult, ledger *assets.Ledger) ([]byte, error) {
	styles := ledger.IncludedStyles()
	scripts := ledger.IncludedScripts()

	switch r := result.(type) {
	case routes.Text:
		out, err := assets.InjectHead([]byte(r), styles, scripts)
		if err != nil {
			return nil, errs.Render(p.URL, p.Variant, err)
		}
		return out, nil
	case routes.Raw:
		if len(styles)+len(scripts) > 0 {
			return nil, errs.New(errs.CategoryRender,
				fmt.Sprintf("page %s produced raw output but included scripts or styles", p.URL)).
				WithContext("url", p.URL)
		}
		return []byte(r), nil
	default:
		return nil, errs.New(errs.CategoryRender,
			fmt.Sprintf("page %s returned no render result", p.URL)).
			WithContext("url", p.URL)
	}
}

// pageDeps gathers the page's dependency list: its own content reads, the
// reads of its route's enumeration, and the source files of every asset it
// registered.
func pageDeps(p *ResolvedPage, acc *content.Accessor, ledger *assets.Ledger) []incremental.Dep {
	reads := append(append([]content.ReadRecord{}, p.EnumReads...), acc.Reads()...)
	deps := incremental.ContentDeps(reads)

	seen := make(map[string]struct{})
	for _, rec := range ledger.Records() {
		if _, ok := seen[rec.SourcePath]; ok {
			continue
		}
		seen[rec.SourcePath] = struct{}{}
		deps = append(deps, incremental.AssetDep(rec.SourcePath))
	}
	return deps
}

// recordPage appends the page to the report and bumps the counters.
func (st *State) recordPage(p *ResolvedPage, reused bool) {
	st.Report.Pages = append(st.Report.Pages, PageOutput{
		Route:    p.Pattern,
		URL:      p.URL,
		FilePath: filepath.ToSlash(p.FilePath),
		Variant:  p.Variant,
		Params:   p.Params.Strings(),
		Reused:   reused,
	})
	if reused {
		st.Report.SkippedPages++
	} else {
		st.Report.RenderedPages++
	}
}
