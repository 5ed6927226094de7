package watchlist

import (
	"errors"
	"fmt"
	"strings"

	"stock-watch/internal/market"
)

var ErrEmptyCode = errors.New("stock code is empty")

// DuplicateSymbolError is returned by Add when the code matches an entry that
// is already on the list.
type DuplicateSymbolError struct {
	Code     string
	Existing string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("%s is already on the watchlist as %s", e.Code, e.Existing)
}

// Entry is one tracked ticker. Code is the user's own spelling and is never
// replaced by provider data.
type Entry struct {
	Code  string
	Quote market.Quote
}

func NewEntry(code string) Entry {
	return Entry{Code: code, Quote: market.Placeholder(code)}
}

// MatchKey is the comparison key for a user code: the manual marker and
// market prefix are dropped and the rest upper-cased, so 600519 and
// x1.600519 compare equal. A trailing dot is part of the ticker (London's
// "RR."), so in that case only a numeric market prefix is removed.
func MatchKey(code string) string {
	return tickerKey(market.StripManualMarker(code))
}

// ProviderKey is the comparison key for a code returned by the provider.
// Provider codes never carry the manual marker, so a leading X is kept.
func ProviderKey(code string) string {
	return tickerKey(code)
}

func tickerKey(s string) string {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		if i < len(s)-1 {
			s = s[i+1:]
		} else if j := strings.IndexByte(s, '.'); j > 0 && j < i && isDigits(s[:j]) {
			s = s[j+1:]
		}
	}
	return strings.ToUpper(s)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Merge applies fetched quotes onto entries in place. Each entry takes the
// first quote with the same match key; entries without a match keep their
// previous quote. Order and codes are untouched.
func Merge(entries []Entry, quotes []market.Quote) []Entry {
	if len(quotes) == 0 {
		return entries
	}
	byKey := make(map[string]int, len(quotes))
	for i := len(quotes) - 1; i >= 0; i-- {
		byKey[ProviderKey(quotes[i].Code)] = i
	}
	for i := range entries {
		if idx, ok := byKey[MatchKey(entries[i].Code)]; ok {
			entries[i].Quote = quotes[idx]
		}
	}
	return entries
}

// List is the ordered watchlist. It is owned by a single goroutine and does
// no locking.
type List struct {
	entries []Entry
}

func New(codes []string) *List {
	l := &List{entries: make([]Entry, 0, len(codes))}
	for _, c := range codes {
		l.entries = append(l.entries, NewEntry(c))
	}
	return l
}

func (l *List) Len() int { return len(l.entries) }

// Entries returns the backing slice for rendering. Callers must not retain it
// across mutations.
func (l *List) Entries() []Entry { return l.entries }

func (l *List) Codes() []string {
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Code)
	}
	return out
}

func (l *List) Add(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCode
	}
	key := MatchKey(code)
	if key == "" {
		return ErrEmptyCode
	}
	for _, e := range l.entries {
		if MatchKey(e.Code) == key {
			return &DuplicateSymbolError{Code: code, Existing: e.Code}
		}
	}
	l.entries = append(l.entries, NewEntry(code))
	return nil
}

func (l *List) Remove(i int) bool {
	if i < 0 || i >= len(l.entries) {
		return false
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return true
}

func (l *List) Swap(i, j int) bool {
	if i < 0 || j < 0 || i >= len(l.entries) || j >= len(l.entries) || i == j {
		return false
	}
	l.entries[i], l.entries[j] = l.entries[j], l.entries[i]
	return true
}

func (l *List) MoveUp(i int) bool { return l.Swap(i, i-1) }

func (l *List) MoveDown(i int) bool { return l.Swap(i, i+1) }

// Replace swaps in a new code set, e.g. after a reload from disk.
func (l *List) Replace(codes []string) {
	fresh := New(codes)
	l.entries = fresh.entries
}

func (l *List) Merge(quotes []market.Quote) {
	l.entries = Merge(l.entries, quotes)
}
