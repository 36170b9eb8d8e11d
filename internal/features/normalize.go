package features

import (
	"regexp"
	"strings"
)

// substitution rules are applied in declared order; later rules see the
// output of earlier ones. Replacement tokens contain no digits or quotes,
// which keeps normalization idempotent.
type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

var normalizationRules = []substitution{
	{regexp.MustCompile(`line\s+\d+`), "line_num"},
	{regexp.MustCompile(`column\s+\d+`), "col_num"},
	{regexp.MustCompile(`[a-zA-Z]:\\(?:[^\\]+\\)*`), "path"},
	{regexp.MustCompile(`0x[0-9a-f]+`), "memory_addr"},
	{regexp.MustCompile(`\b\d+\b`), "number"},
	{regexp.MustCompile(`"[^"]*"`), "string_literal"},
	{regexp.MustCompile(`'[^']*'`), "char_literal"},
}

// NormalizeErrorMessage strips the volatile parts of a compiler error
// (line numbers, paths, addresses, literals) so that semantically equal
// errors compare equal as strings.
func NormalizeErrorMessage(msg string) string {
	normalized := msg
	for _, rule := range normalizationRules {
		normalized = rule.pattern.ReplaceAllString(normalized, rule.replacement)
	}
	return strings.Join(strings.Fields(normalized), " ")
}

type errorPattern struct {
	category string
	pattern  *regexp.Regexp
}

// Table order matters: patterns overlap and the first match wins.
var errorPatterns = []errorPattern{
	{"syntax_error", regexp.MustCompile(`(?i)syntax error|expected|unexpected`)},
	{"missing_semicolon", regexp.MustCompile(`(?i)expected.*;|missing.*;`)},
	{"undefined_reference", regexp.MustCompile(`(?i)undefined reference|unresolved external`)},
	{"missing_header", regexp.MustCompile(`(?i)cannot find|no such file|include`)},
	{"segmentation_fault", regexp.MustCompile(`(?i)segmentation fault|access violation`)},
	{"null_pointer", regexp.MustCompile(`(?i)null pointer|nullptr|NULL`)},
	{"array_bounds", regexp.MustCompile(`(?i)array bounds|out of bounds|index.*out of range`)},
	{"uninitialized", regexp.MustCompile(`(?i)uninitialized|used without being initialized`)},
	{"memory_leak", regexp.MustCompile(`(?i)memory leak|leaked`)},
	{"buffer_overflow", regexp.MustCompile(`(?i)buffer overflow|stack overflow`)},
	{"type_mismatch", regexp.MustCompile(`(?i)type mismatch|cannot convert|incompatible type`)},
	{"no_matching_function", regexp.MustCompile(`(?i)no matching function|overload.*not found`)},
	{"ambiguous", regexp.MustCompile(`(?i)ambiguous|more than one instance`)},
	{"redefinition", regexp.MustCompile(`(?i)redefinition|multiple definition`)},
	{"undeclared", regexp.MustCompile(`(?i)not declared|undeclared`)},
	{"incomplete_type", regexp.MustCompile(`(?i)incomplete type|forward declaration`)},
}

// ClassifyError assigns a coarse category to a compiler error message,
// returning "unknown_error" when nothing in the table matches.
func ClassifyError(msg string) string {
	lower := strings.ToLower(msg)
	for _, ep := range errorPatterns {
		if ep.pattern.MatchString(lower) {
			return ep.category
		}
	}
	return "unknown_error"
}
