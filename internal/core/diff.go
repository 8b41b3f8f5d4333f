package core

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	textSniffBytes   = 8192 // prefix inspected by IsText
	maxControlPerMil = 100  // control runes tolerated per thousand
)

// IsText reports whether a payload looks like readable text, so verify
// can show a line diff instead of a size summary. Only the first 8 KiB
// are inspected.
func IsText(data []byte) bool {
	sample := data[:min(len(data), textSniffBytes)]

	// Do not reject a rune split by the sample boundary
	if len(sample) < len(data) {
		for i := len(sample) - 1; i >= 0 && i >= len(sample)-utf8.UTFMax; i-- {
			if utf8.RuneStart(sample[i]) {
				if !utf8.FullRune(sample[i:]) {
					sample = sample[:i]
				}
				break
			}
		}
	}

	var runes, control int
	for len(sample) > 0 {
		r, size := utf8.DecodeRune(sample)
		if r == utf8.RuneError && size <= 1 {
			return false
		}
		if r == 0 {
			return false
		}
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			control++
		}
		runes++
		sample = sample[size:]
	}
	return control*1000 <= runes*maxControlPerMil
}

// Comparison is the outcome of checking a hidden payload against a local
// file. Hashes use the same hex SHA-256 recorded in the history journal.
type Comparison struct {
	HiddenHash  string
	LocalHash   string
	HiddenBytes int
	LocalBytes  int
	Text        bool   // both sides are text
	Diff        string // unified diff, set for differing text payloads
}

// Match reports whether both payloads are byte-identical
func (c *Comparison) Match() bool {
	return c.HiddenHash == c.LocalHash
}

// ComparePayload hashes the payload recovered from an image and the local
// file called name, and builds a unified diff when they are text and differ
func ComparePayload(name string, hidden, local []byte) *Comparison {
	c := &Comparison{
		HiddenHash:  HashPayload(hidden),
		LocalHash:   HashPayload(local),
		HiddenBytes: len(hidden),
		LocalBytes:  len(local),
		Text:        IsText(hidden) && IsText(local),
	}
	if c.Match() || !c.Text {
		return c
	}
	c.Diff = unifiedDiff(name, string(hidden), string(local))
	return c
}

func unifiedDiff(name, hidden, local string) string {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(hidden, local)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	patches := dmp.PatchMake(hidden, diffs)
	if len(patches) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("--- image/" + name + "\n")
	sb.WriteString("+++ file/" + name + "\n")
	sb.WriteString(dmp.PatchToText(patches))
	return sb.String()
}
