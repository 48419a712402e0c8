package paging

import (
	"strconv"
	"strings"
)

// ParseReferenceString parses page numbers separated by whitespace or commas.
// Every token must be an integer; an empty string yields no references.
func ParseReferenceString(s string) ([]PageID, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	refs := make([]PageID, 0, len(fields))
	for i, tok := range fields {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, ErrBadReference("ParseReferenceString", i, tok, err)
		}
		refs = append(refs, PageID(n))
	}
	return refs, nil
}

// ParseCapacity parses a positive frame count
func ParseCapacity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ErrUnparsableCapacity("ParseCapacity", s, err)
	}
	if err := ValidateCapacity(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ValidateCapacity rejects frame counts below 1
func ValidateCapacity(capacity int) error {
	if capacity < 1 {
		return ErrBadCapacity("ValidateCapacity", capacity)
	}
	return nil
}

// FormatReferences joins refs with single spaces
func FormatReferences(refs []PageID) string {
	var b strings.Builder
	for i, r := range refs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(int(r)))
	}
	return b.String()
}
