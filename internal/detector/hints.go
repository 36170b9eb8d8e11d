package detector

import "strings"

type hintEntry struct {
	key  string
	hint string
}

// Hint table, first-substring-match in order against the requested
// error type.
var errorHints = []hintEntry{
	{"syntax_error", "Check for missing semicolons, brackets, or parentheses"},
	{"missing_semicolon", "You might be missing a semicolon at the end of a statement"},
	{"undefined_reference", "You might be missing a header file or library link"},
	{"missing_header", "Check if you've included the necessary header files"},
	{"segmentation_fault", "Check for null pointers or array bounds"},
	{"null_pointer", "Make sure to initialize pointers before using them"},
	{"array_bounds", "Ensure array indices are within bounds"},
	{"uninitialized", "Initialize variables before using them"},
	{"memory_leak", "Remember to free allocated memory"},
	{"buffer_overflow", "Check array sizes and string lengths"},
	{"type_mismatch", "Ensure types are compatible"},
	{"no_matching_function", "Check function parameters and overloads"},
	{"ambiguous", "Make the call more specific"},
	{"redefinition", "Remove duplicate declarations"},
	{"undeclared", "Declare variables before using them"},
	{"incomplete_type", "Include the full type definition"},
}

const fallbackHint = "Take a deep breath. Try breaking down the problem into smaller parts."

// HintFor resolves a calming, actionable hint for an error category.
func HintFor(errorType string) string {
	lower := strings.ToLower(errorType)
	for _, entry := range errorHints {
		if strings.Contains(lower, entry.key) {
			return entry.hint
		}
	}
	return fallbackHint
}
