package routes

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/sitesmith/sitesmith/errs"
)

// Params is the raw string parameter map of a resolved page. A nil value
// marks an optional parameter that was left unset; its segment is elided
// from both the URL and the file path.
type Params map[string]*string

// V wraps a string for use as a set parameter value.
func V(s string) *string { return &s }

// Strings flattens the map, dropping unset optional parameters.
func (p Params) Strings() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// DecodeParams converts the raw parameter map into a typed struct using
// weakly-typed decoding (so numeric route parameters parse from strings).
// Failures name the offending field and the expected type.
func DecodeParams[T any](p Params, out *T) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errs.ParamConversion(fmt.Sprintf("%T", *out), err)
	}
	if err := dec.Decode(p.Strings()); err != nil {
		return errs.ParamConversion(fmt.Sprintf("%T", *out), err)
	}
	return nil
}
