package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mamadbah2/importados/internal/domain/models"
)

// SizeLedger maps size labels to unit counts. Labels are trimmed and compared
// case-sensitively; a label whose count reaches zero is removed.
type SizeLedger struct {
	counts map[string]int
	order  []string
}

// NewSizeLedger counts the occurrences of each label in sizes. Blank labels are ignored.
func NewSizeLedger(sizes []string) *SizeLedger {
	l := &SizeLedger{counts: make(map[string]int)}
	for _, size := range sizes {
		l.Increment(size, 1)
	}
	return l
}

// FromCounts builds a ledger from an already counted map, keeping order for the listed labels.
func FromCounts(counts map[string]int, order []string) *SizeLedger {
	l := &SizeLedger{counts: make(map[string]int)}
	for _, size := range order {
		l.Increment(size, counts[size])
	}
	return l
}

// SplitSizeList splits an operator answer such as "9, 9,10" into labels.
func SplitSizeList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Increment adds n units of size. Non-positive n is ignored.
func (l *SizeLedger) Increment(size string, n int) {
	size = strings.TrimSpace(size)
	if size == "" || n <= 0 {
		return
	}
	if _, ok := l.counts[size]; !ok {
		l.order = append(l.order, size)
	}
	l.counts[size] += n
}

// Decrement removes one unit of size, pruning the label when it runs out.
func (l *SizeLedger) Decrement(size string) error {
	size = strings.TrimSpace(size)
	n, ok := l.counts[size]
	if !ok || n <= 0 {
		return fmt.Errorf("size %q: %w", size, models.ErrSizeUnavailable)
	}
	n--
	if n <= 0 {
		l.remove(size)
		return nil
	}
	l.counts[size] = n
	return nil
}

// Count returns the units left for size.
func (l *SizeLedger) Count(size string) int {
	return l.counts[strings.TrimSpace(size)]
}

// Total returns the units left across all sizes.
func (l *SizeLedger) Total() int {
	total := 0
	for _, n := range l.counts {
		total += n
	}
	return total
}

// Len returns the number of distinct sizes with stock.
func (l *SizeLedger) Len() int {
	return len(l.order)
}

// Sizes returns the labels in the order they were first added.
func (l *SizeLedger) Sizes() []string {
	return append([]string(nil), l.order...)
}

// Counts returns a copy of the label to count mapping.
func (l *SizeLedger) Counts() map[string]int {
	out := make(map[string]int, len(l.counts))
	for k, v := range l.counts {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy.
func (l *SizeLedger) Clone() *SizeLedger {
	return FromCounts(l.counts, l.order)
}

// Joined renders the ledger as "9 (2), 10": a bare label stands for a single unit.
func (l *SizeLedger) Joined() string {
	parts := make([]string, 0, len(l.order))
	for _, size := range l.order {
		n := l.counts[size]
		if n == 1 {
			parts = append(parts, size)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%d)", size, n))
	}
	return strings.Join(parts, ", ")
}

// ParseJoined reads the Joined form back. Repeated bare labels ("9, 9, 10") are
// counted, which also accepts lists written without explicit counts.
func ParseJoined(raw string) (*SizeLedger, error) {
	l := &SizeLedger{counts: make(map[string]int)}
	for _, token := range SplitSizeList(raw) {
		size, n, err := parseToken(token)
		if err != nil {
			return nil, err
		}
		l.Increment(size, n)
	}
	return l, nil
}

func parseToken(token string) (string, int, error) {
	if !strings.HasSuffix(token, ")") {
		return token, 1, nil
	}
	open := strings.LastIndex(token, "(")
	if open <= 0 {
		return token, 1, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(token[open+1 : len(token)-1]))
	if err != nil {
		return token, 1, nil
	}
	if n < 0 {
		return "", 0, fmt.Errorf("size token %q: %w", token, models.ErrStorageUnreadable)
	}
	return strings.TrimSpace(token[:open]), n, nil
}

func (l *SizeLedger) remove(size string) {
	delete(l.counts, size)
	for i, s := range l.order {
		if s == size {
			l.order = append(l.order[:i], l.order[i+1:]...)
			return
		}
	}
}
