package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

// ErrUnparsable means no valid JSON could be recovered from a response,
// even after repair.
var ErrUnparsable = errors.New("no parsable JSON in response")

// ExtractJSON recovers one JSON document from raw LLM output. The model is
// asked for bare JSON but reliably approximates it: truncation at the token
// limit, explanatory prose around the object, and markdown fences are the
// three dominant failure shapes. The ladder below tries, in order:
//
//  1. the trimmed text as-is,
//  2. the trimmed text after bracket/comma repair,
//  3. the contents of a fenced code block, through 1-2,
//  4. the first-{ to last-} substring, through 1-2.
func ExtractJSON(raw string) (string, error) {
	if out, ok := parseOrRepair(raw); ok {
		return out, nil
	}
	if inner, ok := fencedBlock(raw); ok {
		if out, ok := parseOrRepair(inner); ok {
			return out, nil
		}
	}
	if sub, ok := braceSubstring(raw); ok {
		if out, ok := parseOrRepair(sub); ok {
			return out, nil
		}
	}
	return "", fmt.Errorf("extract json: %w", ErrUnparsable)
}

func parseOrRepair(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if json.Valid([]byte(s)) {
		return s, true
	}
	if repaired := repairJSON(s); json.Valid([]byte(repaired)) {
		return repaired, true
	}
	return "", false
}

// repairJSON fixes the near-valid shapes truncated generation produces:
// comma-before-close artifacts, a dangling trailing comma, an unterminated
// string, and unclosed brackets/braces (closed in stack order).
func repairJSON(s string) string {
	s = stripCommaArtifacts(strings.TrimSpace(s))
	s = strings.TrimSuffix(strings.TrimSpace(s), ",")

	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		s += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		s += string(stack[i])
	}
	return s
}

// stripCommaArtifacts drops commas that directly precede a closing bracket
// or brace, outside of strings.
func stripCommaArtifacts(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString && c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		}
	}
	return b.String()
}

// fencedBlock returns the contents of the first triple-backtick block. An
// unclosed fence (truncated output) yields everything after the opening.
func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start == -1 {
		return "", false
	}
	rest := s[start+3:]

	// Skip the optional language tag line ("json", "JSON", ...).
	nl := strings.IndexByte(rest, '\n')
	if nl == -1 {
		return "", false
	}
	rest = rest[nl+1:]

	if end := strings.Index(rest, "```"); end != -1 {
		return rest[:end], true
	}
	return rest, true
}

// braceSubstring returns the first-{ through last-} slice of s.
func braceSubstring(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// baseResponse is the base-phase response schema.
type baseResponse struct {
	Words              []domain.WordStub `json:"words"`
	LiteralTranslation string            `json:"literalTranslation"`
}

// DecodeBase extracts, decodes, and validates a base-phase response and
// stamps it with the verse identity. Word numbers must form the dense
// ascending sequence 1..N; a gap or duplicate means the response is not
// aligned with the verse and fails the unit.
func DecodeBase(v domain.SourceVerse, raw string) (domain.BaseAnalysis, error) {
	text, err := ExtractJSON(raw)
	if err != nil {
		return domain.BaseAnalysis{}, fmt.Errorf("base response: %w", err)
	}

	var resp baseResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return domain.BaseAnalysis{}, fmt.Errorf("base response: %w: %v", ErrUnparsable, err)
	}

	var fieldErrs []domain.FieldError
	if len(resp.Words) == 0 {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "words", Message: "must not be empty"})
	}
	for i, w := range resp.Words {
		if w.Number != i+1 {
			fieldErrs = append(fieldErrs, domain.FieldError{
				Field:   fmt.Sprintf("words[%d].wordNumber", i),
				Message: fmt.Sprintf("must be %d, got %d", i+1, w.Number),
			})
			break
		}
		if w.Arabic == "" {
			fieldErrs = append(fieldErrs, domain.FieldError{
				Field: fmt.Sprintf("words[%d].arabic", i), Message: "must not be empty",
			})
		}
		if w.Meaning == "" {
			fieldErrs = append(fieldErrs, domain.FieldError{
				Field: fmt.Sprintf("words[%d].meaning", i), Message: "must not be empty",
			})
		}
	}
	if resp.LiteralTranslation == "" {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "literalTranslation", Message: "must not be empty"})
	}
	if len(fieldErrs) > 0 {
		return domain.BaseAnalysis{}, fmt.Errorf("base response: %w", domain.NewValidationErrors(fieldErrs))
	}

	return domain.BaseAnalysis{
		Surah:              v.Key.Surah,
		Verse:              v.Key.Verse,
		Arabic:             v.Arabic,
		Words:              resp.Words,
		LiteralTranslation: resp.LiteralTranslation,
	}, nil
}

// DecodeWordDetail extracts, decodes, and validates a word-phase response.
// An absent root or components list is valid and stays absent.
func DecodeWordDetail(raw string) (domain.WordDetail, error) {
	text, err := ExtractJSON(raw)
	if err != nil {
		return domain.WordDetail{}, fmt.Errorf("word response: %w", err)
	}

	var detail domain.WordDetail
	if err := json.Unmarshal([]byte(text), &detail); err != nil {
		return domain.WordDetail{}, fmt.Errorf("word response: %w: %v", ErrUnparsable, err)
	}

	var fieldErrs []domain.FieldError
	if detail.Root != nil && detail.Root.Letters == "" {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "root.letters", Message: "must not be empty"})
	}
	for i, c := range detail.Components {
		if c.Arabic == "" {
			fieldErrs = append(fieldErrs, domain.FieldError{
				Field: fmt.Sprintf("components[%d].arabic", i), Message: "must not be empty",
			})
		}
	}
	if len(fieldErrs) > 0 {
		return domain.WordDetail{}, fmt.Errorf("word response: %w", domain.NewValidationErrors(fieldErrs))
	}

	return detail, nil
}
