// Package censor redacts banned words from chat messages.
//
// A banned word matches case-insensitively, optionally followed by one of the
// plural or feminine endings in Suffixes, and only when it stands as a whole
// word: "con", "cons" and "conne" match while "cone" and "flacon" do not.
// Each match is replaced by as many random symbols as it had characters.
package censor

import (
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Alphabet is the set of characters used to bleep a match.
const Alphabet = "#$%&*@!?"

// Suffixes are the inflectional endings tolerated after a banned word,
// longest first so the longest ending wins.
var Suffixes = []string{"nes", "ne", "s", "x"}

// Result is the outcome of scanning one message.
type Result struct {
	Original  string
	Redacted  string
	Triggered bool
}

// Filter holds the compiled banned-word list. It is safe for concurrent use.
type Filter struct {
	words    []string
	patterns []*regexp.Regexp
}

// New compiles a filter for words. Empty entries and case-insensitive
// duplicates are dropped.
func New(words []string) *Filter {
	fold := cases.Fold()
	seen := make(map[string]bool, len(words))

	f := &Filter{}
	for _, w := range words {
		w = norm.NFC.String(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		key := fold.String(w)
		if seen[key] {
			continue
		}
		seen[key] = true
		f.words = append(f.words, w)
	}

	// Longer words first so "connard" is redacted whole before "con" is tried.
	sort.SliceStable(f.words, func(i, j int) bool {
		return utf8.RuneCountInString(f.words[i]) > utf8.RuneCountInString(f.words[j])
	})

	suffixes := make([]string, len(Suffixes))
	for i, s := range Suffixes {
		suffixes[i] = regexp.QuoteMeta(s)
	}
	tail := "(?:" + strings.Join(suffixes, "|") + ")?"

	for _, w := range f.words {
		f.patterns = append(f.patterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(w)+tail))
	}
	return f
}

// Words returns the normalized word list, longest first.
func (f *Filter) Words() []string {
	out := make([]string, len(f.words))
	copy(out, f.words)
	return out
}

// Len returns the number of banned words
func (f *Filter) Len() int {
	return len(f.words)
}

// Censor scans text and returns it with every banned word bleeped. Matching
// runs on the NFC form of text so decomposed accents cannot dodge the list;
// bytes outside a match are copied from text unchanged.
func (f *Filter) Censor(text string) Result {
	res := Result{Original: text, Redacted: text}

	n := normalize(text)
	var spans [][2]int
	for _, re := range f.patterns {
		for _, m := range re.FindAllStringIndex(n.text, -1) {
			if !isBoundary(n.text, m[0], m[1]) || overlaps(spans, m[0], m[1]) {
				continue
			}
			spans = append(spans, [2]int{m[0], m[1]})
		}
	}
	if len(spans) == 0 {
		return res
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, s := range spans {
		start, end := n.original(s[0], false), n.original(s[1], true)
		if start < last {
			start = last
		}
		b.WriteString(text[last:start])
		b.WriteString(bleep(utf8.RuneCountInString(n.text[s[0]:s[1]])))
		last = end
	}
	b.WriteString(text[last:])

	res.Redacted = b.String()
	res.Triggered = true
	return res
}

// Censor is a one-shot helper for callers without a long-lived Filter.
func Censor(text string, words []string) Result {
	return New(words).Censor(text)
}

// normalized is the NFC form of a message plus the offsets needed to map
// positions in it back to the message as received.
type normalized struct {
	text string
	// at[i] in text corresponds to orig[i] in the original. Both are nil
	// when the message was already NFC.
	at, orig []int
}

func normalize(s string) normalized {
	if norm.NFC.IsNormalString(s) {
		return normalized{text: s}
	}

	var n normalized
	var b strings.Builder
	var it norm.Iter
	it.InitString(norm.NFC, s)
	for !it.Done() {
		n.at = append(n.at, b.Len())
		n.orig = append(n.orig, it.Pos())
		b.Write(it.Next())
	}
	n.at = append(n.at, b.Len())
	n.orig = append(n.orig, len(s))
	n.text = b.String()
	return n
}

// original maps offset i of the normalized text to the original, rounding
// to the enclosing segment edge: down for a start, up for an end.
func (n normalized) original(i int, up bool) int {
	if n.at == nil {
		return i
	}
	k := sort.SearchInts(n.at, i)
	if k < len(n.at) && n.at[k] == i {
		return n.orig[k]
	}
	if up {
		return n.orig[k]
	}
	return n.orig[k-1]
}

func overlaps(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && s[0] < end {
			return true
		}
	}
	return false
}

// isBoundary reports whether text[start:end] is not glued to other word characters.
func isBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func bleep(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = Alphabet[rand.IntN(len(Alphabet))]
	}
	return string(out)
}
