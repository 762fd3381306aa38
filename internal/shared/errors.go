package shared

import "errors"

// Error kinds surfaced to the user. Components wrap them with
// fmt.Errorf("%w: ...", ErrX) so callers can test with errors.Is.
var (
	// ErrConfiguration means a required external-service setting is missing.
	ErrConfiguration = errors.New("configuration error")
	// ErrParse means imported calendar data is malformed.
	ErrParse = errors.New("calendar parse error")
	// ErrValidation means the request or the generated plan breaks a rule.
	ErrValidation = errors.New("validation error")
	// ErrResponseFormat means the model reply holds no usable JSON array.
	ErrResponseFormat = errors.New("response format error")
	// ErrExport means there is nothing to export.
	ErrExport = errors.New("export error")
)

// Kind names the taxonomy entry of err, or "internal" when it matches none.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrResponseFormat):
		return "response_format"
	case errors.Is(err, ErrExport):
		return "export"
	default:
		return "internal"
	}
}
