package build

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sitesmith/sitesmith/content"
	"github.com/sitesmith/sitesmith/errs"
	"github.com/sitesmith/sitesmith/routes"
)

// stageInitContent eagerly loads every registered content source. Pages may
// not read content before this completes.
func stageInitContent(_ context.Context, st *State) error {
	if err := st.Content.InitAll(); err != nil {
		return newFatalStageError(StageInitContent, err)
	}
	return nil
}

// stageResolveRoutes expands every route into its concrete page list:
// variant expansion, static/dynamic classification, enumeration of dynamic
// pages, and URL/file-path resolution. Two pages resolving to the same
// output file abort the build naming both contributors.
func stageResolveRoutes(ctx context.Context, st *State) error {
	claimed := make(map[string]*ResolvedPage)

	for _, r := range st.Routes {
		expansions, err := routes.ExpandVariants(r)
		if err != nil {
			return newFatalStageError(StageResolveRoutes, err)
		}
		kind := routes.KindOf(r)

		for _, exp := range expansions {
			select {
			case <-ctx.Done():
				return newCanceledStageError(StageResolveRoutes, ctx.Err())
			default:
			}

			pages, enumReads, err := enumeratePages(st, r, exp, kind)
			if err != nil {
				return newFatalStageError(StageResolveRoutes, err)
			}

			defs := routes.ExtractParams(exp.Pattern)
			endpoint := routes.IsEndpoint(exp.Pattern)

			for _, pg := range pages {
				url, err := routes.BuildURL(exp.Pattern, defs, pg.Params, endpoint)
				if err != nil {
					return newFatalStageError(StageResolveRoutes, err)
				}
				filePath, err := routes.BuildFilePath(exp.Pattern, defs, pg.Params, endpoint)
				if err != nil {
					return newFatalStageError(StageResolveRoutes, err)
				}

				rp := &ResolvedPage{
					Route:     r,
					Pattern:   exp.Pattern,
					Kind:      kind,
					Variant:   exp.Variant,
					URL:       url,
					FilePath:  filePath,
					Params:    pg.Params,
					Props:     pg.Props,
					Endpoint:  endpoint,
					EnumReads: enumReads,
				}

				key := filepath.ToSlash(filePath)
				if prev, ok := claimed[key]; ok {
					return newFatalStageError(StageResolveRoutes,
						errs.DuplicateRoute(key, prev.describe(), rp.describe()))
				}
				claimed[key] = rp
				st.resolved = append(st.resolved, rp)
			}
		}
	}

	slog.Debug("routes resolved", "routes", len(st.Routes), "pages", len(st.resolved))
	return nil
}

// enumeratePages produces the (params, props) pairs for one expansion.
// Static routes yield exactly one page with empty parameters; dynamic routes
// run Pages once per expansion so each variant can enumerate its own
// dataset. Content reads made during enumeration are returned as shared
// dependencies of every produced page.
func enumeratePages(st *State, r routes.Route, exp routes.Expansion, kind routes.Kind) ([]routes.Page, []content.ReadRecord, error) {
	if kind == routes.KindStatic {
		return []routes.Page{{Params: routes.Params{}}}, nil, nil
	}

	dr, ok := r.(routes.DynamicRoute)
	if !ok {
		return nil, nil, errs.New(errs.CategoryRouting,
			fmt.Sprintf("route %q declares parameters but does not implement Pages", exp.Pattern))
	}

	acc := content.NewAccessor(st.Content)
	pages, err := dr.Pages(&routes.EnumerationContext{
		Content: acc,
		Variant: exp.Variant,
		Dev:     st.Options.Dev,
	})
	if err != nil {
		return nil, nil, errs.Wrap(err, errs.CategoryRouting,
			fmt.Sprintf("enumerating pages of %s", exp.Describe()))
	}
	return pages, acc.Reads(), nil
}
