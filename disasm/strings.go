package disasm

import (
	"fmt"
	"strings"
	"unicode"
)

// RecoveredString is one entry of the disassembled string pool: its byte
// offset (what STRING-opcode operands reference), the synthesized assembly
// label, and the original text.
type RecoveredString struct {
	Offset int
	Label  string
	Value  string
}

const maxLabelChars = 25

// recoverStrings walks pool's NUL-terminated entries in order, synthesising a
// label for each (§4.9): a<CamelCasedFirst25IdentChars>, collisions
// disambiguated with _2, _3, …, and aEmptyString for an empty entry.
func recoverStrings(pool []byte) []RecoveredString {
	var out []RecoveredString
	seen := map[string]int{}

	offset := 0
	start := 0
	for offset < len(pool) {
		if pool[offset] == 0 {
			value := string(pool[start:offset])
			out = append(out, RecoveredString{
				Offset: start,
				Label:  nextLabel(value, seen),
				Value:  value,
			})
			start = offset + 1
		}
		offset++
	}
	return out
}

func nextLabel(value string, seen map[string]int) string {
	base := "a" + camelIdentPrefix(value, maxLabelChars)
	if value == "" {
		base = "aEmptyString"
	} else if base == "a" {
		base = "aUnnamed"
	}
	n := seen[base]
	seen[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n+1)
}

// camelIdentPrefix splits s on runs of characters that are neither letters nor
// digits (so '_' also separates words), capitalizes
// each word's first letter and lowercases the rest, and concatenates up to
// limit characters of the result.
func camelIdentPrefix(s string, limit int) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, w := range words {
		runes := []rune(w)
		cased := append([]rune{unicode.ToUpper(runes[0])}, toLowerAll(runes[1:])...)
		for _, r := range cased {
			if b.Len() >= limit {
				return b.String()
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toLowerAll(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = unicode.ToLower(r)
	}
	return out
}
