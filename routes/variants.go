package routes

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/sitesmith/sitesmith/errs"
)

// Variant declares a localized alternate path for a route. Exactly one of
// Path (used verbatim) or Prefix (concatenated with the base pattern) must
// be set.
type Variant struct {
	// ID identifies the variant, conventionally a locale code.
	ID string
	// Path is an explicit pattern override for this variant.
	Path string
	// Prefix is prepended to the route's base pattern.
	Prefix string
}

func (v Variant) pattern(base string) string {
	if v.Path != "" {
		return v.Path
	}
	return v.Prefix + base
}

// Expansion is one (variant, pattern) pair a route expands to. An empty
// Variant is the unvaried base entry.
type Expansion struct {
	Variant string
	Pattern string
}

// Describe names the expansion for error reporting.
func (e Expansion) Describe() string {
	if e.Variant == "" {
		return fmt.Sprintf("route %q", e.Pattern)
	}
	return fmt.Sprintf("route %q (variant %s)", e.Pattern, e.Variant)
}

// ExpandVariants lists every (variant, pattern) pair a route resolves
// under. The base entry comes first unless the route is variant-only
// (empty base pattern). Two expansions colliding on the same literal
// pattern is a DuplicateRoute error naming both contributors.
func ExpandVariants(r Route) ([]Expansion, error) {
	var out []Expansion
	seen := make(map[string]Expansion)

	add := func(e Expansion) error {
		if prev, ok := seen[e.Pattern]; ok {
			return errs.DuplicateRoute(e.Pattern, prev.Describe(), e.Describe())
		}
		seen[e.Pattern] = e
		out = append(out, e)
		return nil
	}

	base := r.Pattern()
	if base != "" {
		if err := add(Expansion{Pattern: base}); err != nil {
			return nil, err
		}
	}

	lr, ok := r.(LocalizedRoute)
	if !ok {
		if base == "" {
			return nil, errs.New(errs.CategoryRouting, "route has an empty pattern and no variants")
		}
		return out, nil
	}

	for _, v := range lr.Variants() {
		if v.ID == "" {
			return nil, errs.New(errs.CategoryRouting, fmt.Sprintf("variant of route %q has an empty id", base))
		}
		if (v.Path == "") == (v.Prefix == "") {
			return nil, errs.New(errs.CategoryRouting,
				fmt.Sprintf("variant %q of route %q must set exactly one of Path or Prefix", v.ID, base))
		}
		if _, err := language.Parse(v.ID); err != nil {
			// Variant ids are conventionally locale codes but not required
			// to be; surface the oddity without failing.
			slog.Debug("variant id is not a well-formed language tag", "variant", v.ID, "route", base)
		}
		if err := add(Expansion{Variant: v.ID, Pattern: v.pattern(base)}); err != nil {
			return nil, err
		}
	}

	if len(out) == 0 {
		return nil, errs.New(errs.CategoryRouting, "route has an empty pattern and no variants")
	}
	return out, nil
}
