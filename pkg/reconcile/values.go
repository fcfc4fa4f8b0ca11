// Package reconcile matches original-record item names to report item
// names and decides whether two written measurement values agree.
package reconcile

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

const notDetected = "未检出"

var trailingSepRe = regexp.MustCompile(`[、，,]+$`)

// Normalize prepares a written value for comparison: trims, drops
// trailing list separators and folds the full-width less-than sign.
func Normalize(v string) string {
	s := strings.TrimSpace(v)
	s = trailingSepRe.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, "＜", "<")
}

// numeric parses a normalized value as a float, accepting a leading
// below-detection-limit marker.
func numeric(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimPrefix(s, "<"), 64)
	return f, err == nil
}

// zeroOrAbsent reports the 0 / 未检出 equivalence used for bacterial
// counts.
func zeroOrAbsent(a, b string) bool {
	return (a == "0" && (b == notDetected || b == "0")) ||
		(b == "0" && (a == notDetected || a == "0"))
}

// Comparator compares written measurement values under a numeric
// tolerance.
type Comparator struct {
	Tolerance float64
}

// Equivalent reports whether two written values agree. An empty side
// means the value is absent and comparison is skipped. Values agree on
// exact match after normalization, on the 0 / 未检出 equivalence, or
// when both parse numerically within the tolerance.
func (c Comparator) Equivalent(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return true
	}
	na, nb := Normalize(a), Normalize(b)
	if na == nb || zeroOrAbsent(na, nb) {
		return true
	}
	fa, oka := numeric(na)
	fb, okb := numeric(nb)
	return oka && okb && abs(fa-fb) < c.Tolerance
}

// StrictMatch is Equivalent without the numeric tolerance: written
// values must agree character for character after normalization.
func (c Comparator) StrictMatch(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return true
	}
	na, nb := Normalize(a), Normalize(b)
	return na == nb || zeroOrAbsent(na, nb)
}

// IsValueDifference classifies a failed match: true when both sides
// parse numerically and genuinely differ, false when the discrepancy is
// formatting or digit count only (including unparseable text).
func (c Comparator) IsValueDifference(a, b string) bool {
	fa, oka := numeric(Normalize(a))
	fb, okb := numeric(Normalize(b))
	return oka && okb && abs(fa-fb) > c.Tolerance
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// DigitCount counts the written digits of a value, trailing zeros
// included: "0.005" has four, "100" has three.
func DigitCount(v string) int {
	s := strings.TrimSpace(v)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	return len(strings.ReplaceAll(s, ".", ""))
}

var (
	asciiBeforeCJKRe = regexp.MustCompile(`([\x21-\x7e])\s+(\p{Han})`)
	cjkBeforeASCIIRe = regexp.MustCompile(`(\p{Han})\s+([\x21-\x7e])`)
	whitespaceRunRe  = regexp.MustCompile(`\s+`)
)

// NormalizeMethod canonicalizes a detection-method string so that
// line wraps, full-width punctuation and justification spacing do not
// register as method differences.
func NormalizeMethod(m string) string {
	s := strings.NewReplacer("\n", " ", "\r", "", "　", " ").Replace(strings.TrimSpace(m))
	s = whitespaceRunRe.ReplaceAllString(s, " ")
	// The ideographic comma narrows to U+FF64 rather than an ASCII comma,
	// so swap it before folding.
	s = strings.ReplaceAll(s, "、", ",")
	s = width.Narrow.String(s)
	s = asciiBeforeCJKRe.ReplaceAllString(s, "$1$2")
	s = cjkBeforeASCIIRe.ReplaceAllString(s, "$1$2")
	return strings.TrimSpace(s)
}

var parentheticalRe = regexp.MustCompile(`[\(（][^)）]*?[\)）]`)

// StripParens removes every parenthetical qualifier from an item name.
func StripParens(name string) string {
	return strings.TrimSpace(parentheticalRe.ReplaceAllString(name, ""))
}
