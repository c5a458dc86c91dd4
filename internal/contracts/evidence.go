package contracts

import (
	"sort"
	"strings"
)

// Evidence maps a KDE (Key Data Element) name to its raw value as extracted
// from trade/order/trader data. Values may be strings, numbers, time.Time,
// RFC3339 strings, or nil. Evidence is immutable for the duration of one
// scoring call.
type Evidence map[string]interface{}

// Present reports whether the KDE has a usable value. Nil and blank strings
// count as absent.
func (e Evidence) Present(kde string) bool {
	v, ok := e[kde]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}

// KDENames returns all KDE names in sorted order. Sorting keeps scoring
// output deterministic across calls.
func (e Evidence) KDENames() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresentCount returns the number of KDEs with usable values.
func (e Evidence) PresentCount() int {
	n := 0
	for name := range e {
		if e.Present(name) {
			n++
		}
	}
	return n
}
