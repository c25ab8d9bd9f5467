package routes

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/sitesmith/sitesmith/assets"
	"github.com/sitesmith/sitesmith/content"
	"github.com/sitesmith/sitesmith/errs"
)

// PageContext is handed to a route's Render. One context is constructed per
// resolved page; its asset ledger starts empty and its content accessor
// records reads for the incremental cache.
type PageContext struct {
	// Params is the raw string parameter map of this page.
	Params Params
	// Content gives read-tracked access to the content source registry.
	Content *content.Accessor
	// Assets is this page's asset ledger.
	Assets *assets.Ledger
	// Path is the canonical URL path being rendered, e.g. /articles/foo/.
	Path string
	// BaseURL is the configured site base URL; empty when unset.
	BaseURL string
	// Variant is the variant id being rendered; empty for the base route.
	Variant string
	// Dev reports whether this is a development build. Render code can use
	// it to skip slow work; it is explicit state, never ambient.
	Dev bool

	props any
}

// NewPageContext assembles a page context. Used by the orchestrator; tests
// may call it directly.
func NewPageContext(params Params, props any, acc *content.Accessor, ledger *assets.Ledger, path, baseURL, variant string, dev bool) *PageContext {
	return &PageContext{
		Params:  params,
		Content: acc,
		Assets:  ledger,
		Path:    path,
		BaseURL: baseURL,
		Variant: variant,
		Dev:     dev,
		props:   props,
	}
}

// Props returns the untyped props payload attached at enumeration time.
func (c *PageContext) Props() any { return c.props }

// CanonicalURL joins the configured base URL with the current path. Empty
// when no base URL is configured.
func (c *PageContext) CanonicalURL() string {
	if c.BaseURL == "" {
		return ""
	}
	return strings.TrimSuffix(c.BaseURL, "/") + c.Path
}

// ParamsAs decodes the page's raw parameters into a typed struct.
func ParamsAs[T any](c *PageContext) (T, error) {
	var out T
	err := DecodeParams(c.Params, &out)
	return out, err
}

// PropsAs returns the page's props as T. Props set by enumeration as a
// concrete T assert directly; map payloads decode field-by-field.
func PropsAs[T any](c *PageContext) (T, error) {
	if typed, ok := c.props.(T); ok {
		return typed, nil
	}
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &out})
	if err != nil {
		return out, errs.ParamConversion(fmt.Sprintf("%T", out), err)
	}
	if err := dec.Decode(c.props); err != nil {
		return out, errs.ParamConversion(fmt.Sprintf("%T", out), err)
	}
	return out, nil
}

// EnumerationContext is handed to a dynamic route's Pages call, once per
// variant entry.
type EnumerationContext struct {
	// Content gives access to the content source registry.
	Content *content.Accessor
	// Variant is the variant id being enumerated; empty for the base route.
	Variant string
	// Dev reports whether this is a development build.
	Dev bool
}
