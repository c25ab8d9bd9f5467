package routes

// Kind classifies a route by its enumeration behavior. The orchestrator
// switches on this tag once per route.
type Kind int

const (
	// KindStatic routes resolve to exactly one page per variant entry.
	KindStatic Kind = iota
	// KindDynamic routes enumerate zero or more (params, props) pairs per
	// variant via Pages.
	KindDynamic
)

func (k Kind) String() string {
	if k == KindDynamic {
		return "dynamic"
	}
	return "static"
}

// RenderResult is the closed set of things a render can produce: HTML text
// or raw bytes. The conversion happens explicitly at the render boundary,
// keeping the orchestrator's contract with user code fixed.
type RenderResult interface {
	isRenderResult()
}

// Text is HTML output; included scripts and styles are injected into its
// <head> after rendering.
type Text string

// Raw is opaque byte output (JSON feeds, images, ...). Including scripts or
// styles alongside Raw output is a build error.
type Raw []byte

func (Text) isRenderResult() {}
func (Raw) isRenderResult()  {}

// Page is one (params, props) pair returned by a dynamic route's
// enumeration. Props carry an arbitrary typed payload through to Render.
type Page struct {
	Params Params
	Props  any
}

// Route is the contract every page of the site implements. The value is
// registered with the build and never mutated afterwards.
type Route interface {
	// Pattern returns the path template, with [name] placeholders for
	// dynamic segments. An empty pattern on a localized route means the
	// route is variant-only and has no base path.
	Pattern() string
	// Render produces the page output. Returning an error aborts the
	// entire build, reported with this page's URL.
	Render(ctx *PageContext) (RenderResult, error)
}

// DynamicRoute is implemented by routes whose pattern contains parameters.
// Pages runs once per variant; the variant id is visible on the context so
// enumeration can produce variant-specific datasets.
type DynamicRoute interface {
	Route
	Pages(ctx *EnumerationContext) ([]Page, error)
}

// LocalizedRoute is implemented by routes that declare locale variants.
type LocalizedRoute interface {
	Route
	Variants() []Variant
}

// KindOf computes a route's kind: dynamic if the base pattern or any variant
// pattern declares parameters.
func KindOf(r Route) Kind {
	if len(ExtractParams(r.Pattern())) > 0 {
		return KindDynamic
	}
	if lr, ok := r.(LocalizedRoute); ok {
		for _, v := range lr.Variants() {
			if len(ExtractParams(v.pattern(r.Pattern()))) > 0 {
				return KindDynamic
			}
		}
	}
	return KindStatic
}
