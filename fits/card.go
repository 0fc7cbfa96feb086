package fits

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/astrofold/shearkit/errs"
)

const (
	// CardSize is the fixed length of one header card in bytes.
	CardSize = 80
	// BlockSize is the FITS block size; headers and payloads pad to it.
	BlockSize = 2880

	// keywordSize is the card keyword field width.
	keywordSize = 8
	// valueColumn is the 0-based column fixed-format values are right
	// justified to (numbers and logicals end at column 29).
	valueColumn = 30
)

// Card is a single header entry.
//
// Value is nil for commentary cards (COMMENT, HISTORY, and blank keywords),
// and otherwise holds one of bool, int64, float64, or string.
type Card struct {
	// Keyword is the card name, at most 8 characters of A-Z, 0-9, '-', '_'.
	Keyword string
	// Value is the typed card value, nil for commentary cards.
	Value any
	// Comment is the optional trailing comment.
	Comment string
}

// commentary reports whether the card carries free text instead of a value.
func (c *Card) commentary() bool {
	return c.Keyword == "COMMENT" || c.Keyword == "HISTORY" || c.Keyword == ""
}

// FormatCard renders a card in fixed format, always exactly CardSize bytes.
//
// Strings are quoted at column 11 with embedded quotes doubled and padded to
// the conventional minimum width; numbers and logicals are right justified to
// column 30. Floats render in the shortest form that re-parses to the same
// bits.
//
// Returns:
//   - []byte: The 80-byte card image
//   - error: errs.ErrInvalidCard for bad keywords, non-finite floats,
//     unsupported value types, or content that cannot fit in 80 bytes
func FormatCard(c *Card) ([]byte, error) {
	if err := validateKeyword(c.Keyword); err != nil {
		return nil, err
	}

	buf := make([]byte, CardSize)
	for i := range buf {
		buf[i] = ' '
	}
	copy(buf, c.Keyword)

	if c.commentary() {
		text := c.Comment
		if len(text) > CardSize-keywordSize {
			return nil, fmt.Errorf("%w: commentary text %q exceeds %d bytes",
				errs.ErrInvalidCard, text, CardSize-keywordSize)
		}
		copy(buf[keywordSize:], text)

		return buf, nil
	}

	buf[8] = '='
	body, err := formatValue(c.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: keyword %s: %v", errs.ErrInvalidCard, c.Keyword, err)
	}

	pos := 10
	if body != "" && body[0] != '\'' {
		// Right justify numbers and logicals to the fixed value column.
		if pad := valueColumn - len(body); pad > pos {
			pos = pad
		}
	}

	if pos+len(body) > CardSize {
		return nil, fmt.Errorf("%w: keyword %s: value does not fit", errs.ErrInvalidCard, c.Keyword)
	}
	copy(buf[pos:], body)
	pos += len(body)

	if c.Comment != "" {
		tail := " / " + c.Comment
		if pos+len(tail) > CardSize {
			tail = tail[:CardSize-pos]
		}
		copy(buf[pos:], tail)
	}

	return buf, nil
}

// ParseCard parses one 80-byte card image.
//
// Returns:
//   - *Card: The parsed card, nil for the END card
//   - error: errs.ErrInvalidCard for short slices or malformed values
func ParseCard(raw []byte) (*Card, error) {
	if len(raw) != CardSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidCard, len(raw), CardSize)
	}

	keyword := strings.TrimRight(string(raw[:keywordSize]), " ")
	if keyword == "END" {
		return nil, nil
	}

	c := &Card{Keyword: keyword}

	if keyword == "" || keyword == "COMMENT" || keyword == "HISTORY" || raw[8] != '=' || raw[9] != ' ' {
		c.Comment = strings.TrimRight(string(raw[keywordSize:]), " ")
		return c, nil
	}

	body := string(raw[10:])

	value, comment, err := parseValue(body)
	if err != nil {
		return nil, fmt.Errorf("%w: keyword %s: %v", errs.ErrInvalidCard, keyword, err)
	}

	c.Value = value
	c.Comment = comment

	return c, nil
}

// validateKeyword enforces the FITS keyword character set and length.
func validateKeyword(keyword string) error {
	if len(keyword) > keywordSize {
		return fmt.Errorf("%w: keyword %q longer than %d characters", errs.ErrInvalidCard, keyword, keywordSize)
	}

	for i := 0; i < len(keyword); i++ {
		ch := keyword[i]
		ok := (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_'
		if !ok {
			return fmt.Errorf("%w: keyword %q has invalid character %q", errs.ErrInvalidCard, keyword, ch)
		}
	}

	return nil
}

// formatValue renders a typed value in fixed format. A nil value renders
// empty (an undefined-value card).
func formatValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil

	case bool:
		if v {
			return "T", nil
		}
		return "F", nil

	case int:
		return strconv.FormatInt(int64(v), 10), nil

	case int64:
		return strconv.FormatInt(v, 10), nil

	case float64:
		return formatFloat(v)

	case string:
		return quoteString(v)

	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

// formatFloat renders the shortest decimal that re-parses bit-identically,
// forcing a decimal point so the value never re-parses as an integer.
func formatFloat(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("non-finite value %v has no FITS representation", v)
	}

	s := strconv.FormatFloat(v, 'G', -1, 64)
	if !strings.ContainsAny(s, ".E") {
		s += ".0"
	}

	return s, nil
}

// quoteString renders a quoted string with embedded quotes doubled, padded
// to the conventional minimum of 8 content characters.
func quoteString(v string) (string, error) {
	for i := 0; i < len(v); i++ {
		if v[i] < 0x20 || v[i] > 0x7E {
			return "", fmt.Errorf("string %q has non-printable character", v)
		}
	}

	escaped := strings.ReplaceAll(v, "'", "''")
	if len(escaped) < 8 {
		escaped += strings.Repeat(" ", 8-len(escaped))
	}

	return "'" + escaped + "'", nil
}

// parseValue splits a card body (bytes 10..79) into a typed value and the
// trailing comment.
func parseValue(body string) (any, string, error) {
	trimmed := strings.TrimLeft(body, " ")
	if trimmed == "" {
		return nil, "", nil
	}

	if trimmed[0] == '\'' {
		return parseQuoted(trimmed)
	}

	// Split the comment off at the first slash.
	text := trimmed
	comment := ""
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		text = strings.TrimRight(trimmed[:idx], " ")
		comment = strings.TrimSpace(trimmed[idx+1:])
	} else {
		text = strings.TrimRight(text, " ")
	}

	switch text {
	case "T":
		return true, comment, nil
	case "F":
		return false, comment, nil
	case "":
		return nil, comment, nil
	}

	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, comment, nil
	}

	// Fortran-style exponents are legal in files written by other stacks.
	f, err := strconv.ParseFloat(strings.Map(dToE, text), 64)
	if err != nil {
		return nil, "", fmt.Errorf("unparseable value %q", text)
	}

	return f, comment, nil
}

// parseQuoted parses a leading quoted string and its trailing comment.
func parseQuoted(s string) (any, string, error) {
	var sb strings.Builder

	i := 1
	for {
		if i >= len(s) {
			return nil, "", fmt.Errorf("unterminated string %q", s)
		}

		if s[i] == '\'' {
			if i+1 < len(s) && s[i+1] == '\'' {
				sb.WriteByte('\'')
				i += 2
				continue
			}
			i++
			break
		}

		sb.WriteByte(s[i])
		i++
	}

	comment := ""
	if idx := strings.IndexByte(s[i:], '/'); idx >= 0 {
		comment = strings.TrimSpace(s[i+idx+1:])
	}

	// FITS strings are space padded on disk; trailing spaces are not data.
	return strings.TrimRight(sb.String(), " "), comment, nil
}

func dToE(r rune) rune {
	if r == 'D' || r == 'd' {
		return 'E'
	}

	return r
}
