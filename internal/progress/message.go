// internal/progress/message.go
//
// MessageAssembler: the fixed per-day fragments and their assembly into
// the decoded message, always in ascending day order.

package progress

import (
	"slices"
	"strings"
)

// Messages maps a day to the narrative fragment revealed when it is completed.
type Messages map[Day]string

// NewMessages converts a day-number keyed table.
func NewMessages(m map[int]string) Messages {
	out := make(Messages, len(m))
	for d, s := range m {
		out[Day(d)] = s
	}
	return out
}

// Fragment returns the fragment for d, or "".
func (m Messages) Fragment(d Day) string { return m[d] }

// Assemble concatenates the fragments of days in ascending day order.
// Days without a fragment are skipped. The input slice is not modified.
func (m Messages) Assemble(days []Day) string {
	sorted := slices.Clone(days)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var b strings.Builder
	for _, d := range sorted {
		b.WriteString(m[d])
	}
	return b.String()
}
