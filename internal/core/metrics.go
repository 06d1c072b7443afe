package core

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultTopSkills is how many ranked skills the dashboard shows.
const DefaultTopSkills = 6

type (
	// Ratio is the XP given/received metric shown on the donut widget.
	// Value keeps exactly one decimal digit, alongside the raw sums.
	Ratio struct {
		XPUp   int64  `json:"xpUp"`
		XPDown int64  `json:"xpDown"`
		Value  string `json:"ratio"`
	}

	// MonthlyXP is one bar of the XP-per-month chart. Date is
	// "<year>-<month>" with a 1-based, non-zero-padded month.
	MonthlyXP struct {
		Date string `json:"date"`
		XP   int64  `json:"xp"`
	}

	// SkillTotal is one axis of the skill radar: a transaction type and
	// the summed amount across all its records.
	SkillTotal struct {
		Type        string `json:"type"`
		TotalAmount int64  `json:"totalAmount"`
	}
)

// SumByType sums Amount over transactions whose Type exactly equals typ.
// Empty or non-matching input yields 0, never a sentinel: callers divide
// by this value.
func SumByType(txns []Transaction, typ string) int64 {
	var total int64
	for _, t := range txns {
		if t.Type == typ {
			total += t.Amount
		}
	}
	return total
}

// ComputeRatio derives the up/down ratio. A zero denominator yields the
// numerator itself rather than an infinity, so users with no negative
// audits still see a meaningful number.
func ComputeRatio(xpUp, xpDown int64) Ratio {
	var v float64
	if xpDown == 0 {
		v = float64(xpUp)
	} else {
		v = float64(xpUp) / float64(xpDown)
	}
	return Ratio{XPUp: xpUp, XPDown: xpDown, Value: fmt.Sprintf("%.1f", v)}
}

// ValidGrades filters audit grades down to finite numbers, preserving the
// input order. Ungraded (nil) and NaN/Inf entries are dropped.
func ValidGrades(audits []Audit) []float64 {
	grades := make([]float64, 0, len(audits))
	for _, a := range audits {
		if a.Grade == nil {
			continue
		}
		g := *a.Grade
		if math.IsNaN(g) || math.IsInf(g, 0) {
			continue
		}
		grades = append(grades, g)
	}
	return grades
}

// BucketByMonth groups transactions by calendar (year, month) and sums
// amounts per bucket. Records are scanned in ascending id order and the
// output follows first-insertion order of the bucket keys, not
// chronological key order. That matches the chart the origin renders;
// reordering here would reorder the bars.
func BucketByMonth(txns []Transaction) []MonthlyXP {
	sorted := make([]Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byMonth := map[string]int64{}
	order := make([]string, 0)
	for _, t := range sorted {
		key := fmt.Sprintf("%d-%d", t.CreatedAt.Year(), int(t.CreatedAt.Month()))
		if _, seen := byMonth[key]; !seen {
			order = append(order, key)
		}
		byMonth[key] += t.Amount
	}

	out := make([]MonthlyXP, 0, len(order))
	for _, key := range order {
		out = append(out, MonthlyXP{Date: key, XP: byMonth[key]})
	}
	return out
}

// TopSkills sums amounts per skill-tagged transaction type and returns
// the n highest totals, descending. Ties keep the first-encountered type
// first. Types are matched by the skill fragment, not an exact tag.
func TopSkills(txns []Transaction, n int) []SkillTotal {
	byType := map[string]int64{}
	order := make([]string, 0)
	for _, t := range txns {
		if !strings.Contains(t.Type, SkillTypeFragment) {
			continue
		}
		if _, seen := byType[t.Type]; !seen {
			order = append(order, t.Type)
		}
		byType[t.Type] += t.Amount
	}

	totals := make([]SkillTotal, 0, len(order))
	for _, typ := range order {
		totals = append(totals, SkillTotal{Type: typ, TotalAmount: byType[typ]})
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].TotalAmount > totals[j].TotalAmount
	})

	if n >= 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals
}

// TotalXP nets directional audit adjustments against module-derived XP.
// Total XP is deliberately not the plain sum of "xp" transactions.
func TotalXP(xpUp, xpDown int64, monthly []MonthlyXP) int64 {
	total := xpUp - xpDown
	for _, m := range monthly {
		total += m.XP
	}
	return total
}
