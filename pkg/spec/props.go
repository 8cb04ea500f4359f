package spec

// Common property names shared by Toga and Kivy widget vocabularies.
// Backends translate these to their toolkit's attribute names.
const (
	PropText        = "text"
	PropValue       = "value"
	PropEnabled     = "enabled"
	PropPlaceholder = "placeholder"
	PropSource      = "source"
	PropItems       = "items"
	PropWidthHint   = "width_hint"
	PropHeightHint  = "height_hint"
)

// Props maps property names to values for one widget.
type Props map[string]any

func (p Props) clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Text returns the named value as a string, or def when unset or not a string.
func (p Props) Text(name, def string) string {
	if v, ok := p[name].(string); ok {
		return v
	}
	return def
}

// Bool returns the named value as a bool, or def when unset or not a bool.
func (p Props) Bool(name string, def bool) bool {
	if v, ok := p[name].(bool); ok {
		return v
	}
	return def
}

// Float returns the named value as a float64, coercing integer values,
// or def when unset or non-numeric.
func (p Props) Float(name string, def float64) float64 {
	switch v := p[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Strings returns the named value as a string slice, tolerating []any
// payloads produced by codec round-trips.
func (p Props) Strings(name string) []string {
	switch v := p[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
