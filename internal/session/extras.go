package session

import (
	"maps"
	"strconv"
	"strings"
)

// ExtraLoggedIn is the extras key carrying the explicit logged-in flag.
const ExtraLoggedIn = "isLoggedIn"

// Extras is the session metadata bag. Values are kept as strings the way
// they arrive from headers and query parameters.
type Extras map[string]string

// LoggedIn reports the explicit logged-in flag and whether one is present.
// Values that do not parse as a boolean count as absent.
func (e Extras) LoggedIn() (bool, bool) {
	raw, ok := e[ExtraLoggedIn]
	if !ok {
		return false, false
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, false
	}
	return value, true
}

// WithLoggedIn returns a copy with the logged-in flag set.
func (e Extras) WithLoggedIn(loggedIn bool) Extras {
	out := e.Clone()
	out[ExtraLoggedIn] = strconv.FormatBool(loggedIn)
	return out
}

// Clone returns an independent copy. The result is never nil.
func (e Extras) Clone() Extras {
	out := make(Extras, len(e))
	maps.Copy(out, e)
	return out
}

// Merge returns a copy of e overlaid with override.
func (e Extras) Merge(override Extras) Extras {
	out := e.Clone()
	maps.Copy(out, override)
	return out
}
