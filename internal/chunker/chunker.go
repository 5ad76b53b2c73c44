// Package chunker plans how a sequence of text lines is split into
// translation requests that stay within the service's per-request character
// limit without breaking any line apart.
package chunker

import "unicode/utf8"

// CharLimit is the maximum number of characters the Cloud Translation API
// accepts in one request.
const CharLimit = 30720

// Slot is one position in a batch's output template: either a placeholder
// that takes the next translated line, or a literal line copied verbatim.
type Slot struct {
	literal     string
	placeholder bool
}

// Placeholder returns a slot to be filled by the next translation.
func Placeholder() Slot { return Slot{placeholder: true} }

// Literal returns a slot holding a line that is not translated.
func Literal(line string) Slot { return Slot{literal: line} }

// IsPlaceholder reports whether s waits for a translation.
func (s Slot) IsPlaceholder() bool { return s.placeholder }

// Line returns the literal line. It is empty for placeholders.
func (s Slot) Line() string { return s.literal }

// Batch is the unit of one translation request.
type Batch struct {
	Index int
	// Lines are sent to the backend, in order.
	Lines []string
	// Template has one Placeholder per entry in Lines and one Literal per
	// filtered line, in source order.
	Template []Slot
	// Chars is the character count of Lines.
	Chars int
}

// Truncation records a source line shortened to fit the limit.
type Truncation struct {
	// Line is the 1-based line number in the source.
	Line int
	// Length is the number of characters kept before the appended newline.
	Length int
}

// Plan holds the batches for one input plus the truncations made while
// building them.
type Plan struct {
	Batches     []Batch
	Truncations []Truncation
	Lines       int
	Passthrough int
}

// Calls returns the number of batches that need a backend request.
func (p Plan) Calls() int {
	n := 0
	for _, b := range p.Batches {
		if len(b.Lines) > 0 {
			n++
		}
	}
	return n
}

// Chars returns the total number of characters submitted for translation.
func (p Plan) Chars() int {
	n := 0
	for _, b := range p.Batches {
		n += b.Chars
	}
	return n
}

// SplitIntoBatches groups lines into batches whose submitted character count
// stays below limit. skip, when non-nil, marks lines that pass through
// untranslated; those do not count toward the limit.
//
// Before a line is added, the running count including that line is compared
// with limit; reaching or exceeding it closes the current batch first. A line
// that alone reaches limit is cut to limit-1 characters plus "\n".
func SplitIntoBatches(lines []string, limit int, skip func(string) bool) Plan {
	var plan Plan
	plan.Lines = len(lines)

	var cur Batch
	buffered := 0
	flush := func() {
		if len(cur.Template) > 0 {
			cur.Index = len(plan.Batches)
			plan.Batches = append(plan.Batches, cur)
		}
		cur = Batch{}
	}

	for i, line := range lines {
		if skip != nil && skip(line) {
			cur.Template = append(cur.Template, Literal(line))
			plan.Passthrough++
			continue
		}
		if Len(line) >= limit {
			line = Truncate(line, limit-1) + "\n"
			plan.Truncations = append(plan.Truncations, Truncation{Line: i + 1, Length: limit - 1})
		}
		n := Len(line)
		buffered += n
		if buffered >= limit {
			flush()
			buffered = n
		}
		cur.Lines = append(cur.Lines, line)
		cur.Template = append(cur.Template, Placeholder())
		cur.Chars += n
	}
	flush()
	return plan
}

// Len counts characters the way the translation service does: one per
// Unicode code point.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate returns the first n code points of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
