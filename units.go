package ruleexpr

import "sort"

// UnitResolver converts unit-suffixed numeric literals to a canonical
// scale. GetSupportedUnits lists the suffixes the lexer should recognize;
// Convert returns the factor a literal carrying that suffix is multiplied
// by. unitType distinguishes unit classes for resolvers that support more
// than one (see WithUnitContext).
type UnitResolver interface {
	GetSupportedUnits() []string
	Convert(text string, unitType int) float64
}

// nullUnitResolver is the default resolver: it supports no units, so
// suffixed literals fail to lex.
type nullUnitResolver struct{}

func (nullUnitResolver) GetSupportedUnits() []string { return nil }

func (nullUnitResolver) Convert(string, int) float64 { return 0 }

// TableUnitResolver resolves unit suffixes from a fixed table of scale
// factors. All unit classes share the one table; the unitType argument is
// ignored.
type TableUnitResolver struct {
	units  []string
	scales map[string]float64
}

// NewTableUnitResolver builds a resolver from a suffix-to-scale table.
func NewTableUnitResolver(scales map[string]float64) *TableUnitResolver {
	units := make([]string, 0, len(scales))
	for u := range scales {
		units = append(units, u)
	}
	// Longest first, ties alphabetical, so the advertised order is
	// deterministic and already suits longest-match-first lexing.
	sort.Slice(units, func(i, j int) bool {
		if len(units[i]) != len(units[j]) {
			return len(units[i]) > len(units[j])
		}
		return units[i] < units[j]
	})
	m := make(map[string]float64, len(scales))
	for u, s := range scales {
		m[u] = s
	}
	return &TableUnitResolver{units: units, scales: m}
}

func (r *TableUnitResolver) GetSupportedUnits() []string {
	return r.units
}

func (r *TableUnitResolver) Convert(text string, unitType int) float64 {
	return r.scales[text]
}
