package fits

import (
	"fmt"

	"github.com/astrofold/shearkit/errs"
)

// Header is an ordered list of cards with keyword lookup.
//
// Cards keep their insertion order through encode/decode. Keywords are
// unique except for commentary cards (COMMENT, HISTORY, blank), which
// accumulate; Set replaces the first matching card, Delete removes every
// match.
type Header struct {
	cards []Card
	index map[string]int
}

// NewHeader creates an empty header.
func NewHeader() *Header {
	return &Header{index: make(map[string]int)}
}

// Len returns the number of cards.
func (h *Header) Len() int {
	return len(h.cards)
}

// Cards returns a copy of the cards in insertion order.
func (h *Header) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)

	return out
}

// Has reports whether a keyword is present.
func (h *Header) Has(keyword string) bool {
	_, ok := h.index[keyword]
	return ok
}

// Get returns the first card with the given keyword.
func (h *Header) Get(keyword string) (Card, bool) {
	i, ok := h.index[keyword]
	if !ok {
		return Card{}, false
	}

	return h.cards[i], true
}

// GetString returns a string-valued keyword.
//
// Returns:
//   - string: The value
//   - error: errs.ErrKeywordNotFound, or errs.ErrWrongValueType when the
//     card holds a different type
func (h *Header) GetString(keyword string) (string, error) {
	c, ok := h.Get(keyword)
	if !ok {
		return "", fmt.Errorf("%w: %s", errs.ErrKeywordNotFound, keyword)
	}

	s, ok := c.Value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s holds %T, want string", errs.ErrWrongValueType, keyword, c.Value)
	}

	return s, nil
}

// GetInt returns an integer-valued keyword.
func (h *Header) GetInt(keyword string) (int64, error) {
	c, ok := h.Get(keyword)
	if !ok {
		return 0, fmt.Errorf("%w: %s", errs.ErrKeywordNotFound, keyword)
	}

	i, ok := c.Value.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: %s holds %T, want int", errs.ErrWrongValueType, keyword, c.Value)
	}

	return i, nil
}

// GetFloat returns a float-valued keyword. Integer cards promote losslessly.
func (h *Header) GetFloat(keyword string) (float64, error) {
	c, ok := h.Get(keyword)
	if !ok {
		return 0, fmt.Errorf("%w: %s", errs.ErrKeywordNotFound, keyword)
	}

	switch v := c.Value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s holds %T, want float", errs.ErrWrongValueType, keyword, c.Value)
	}
}

// GetBool returns a logical-valued keyword.
func (h *Header) GetBool(keyword string) (bool, error) {
	c, ok := h.Get(keyword)
	if !ok {
		return false, fmt.Errorf("%w: %s", errs.ErrKeywordNotFound, keyword)
	}

	b, ok := c.Value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s holds %T, want bool", errs.ErrWrongValueType, keyword, c.Value)
	}

	return b, nil
}

// Set stores a keyword, replacing the first existing card or appending a new
// one. The value must be nil, bool, int, int64, float64, or string.
//
// Returns:
//   - error: errs.ErrInvalidCard for invalid keywords or value types
func (h *Header) Set(keyword string, value any, comment string) error {
	if err := validateKeyword(keyword); err != nil {
		return err
	}

	if _, err := formatValue(value); err != nil {
		return fmt.Errorf("%w: keyword %s: %v", errs.ErrInvalidCard, keyword, err)
	}

	if i, ok := h.index[keyword]; ok {
		h.cards[i] = Card{Keyword: keyword, Value: value, Comment: comment}
		return nil
	}

	h.appendCard(Card{Keyword: keyword, Value: value, Comment: comment})

	return nil
}

// SetString stores a string keyword.
func (h *Header) SetString(keyword, value, comment string) error {
	return h.Set(keyword, value, comment)
}

// SetInt stores an integer keyword.
func (h *Header) SetInt(keyword string, value int64, comment string) error {
	return h.Set(keyword, value, comment)
}

// SetFloat stores a float keyword. Non-finite values are rejected; callers
// with Inf/NaN semantics serialize them as strings.
func (h *Header) SetFloat(keyword string, value float64, comment string) error {
	return h.Set(keyword, value, comment)
}

// SetBool stores a logical keyword.
func (h *Header) SetBool(keyword string, value bool, comment string) error {
	return h.Set(keyword, value, comment)
}

// AppendComment appends a COMMENT card.
func (h *Header) AppendComment(text string) {
	h.appendCard(Card{Keyword: "COMMENT", Comment: text})
}

// AppendHistory appends a HISTORY card.
func (h *Header) AppendHistory(text string) {
	h.appendCard(Card{Keyword: "HISTORY", Comment: text})
}

// Delete removes every card with the given keyword and reports whether any
// was present.
func (h *Header) Delete(keyword string) bool {
	if _, ok := h.index[keyword]; !ok {
		return false
	}

	kept := h.cards[:0]
	for _, c := range h.cards {
		if c.Keyword != keyword {
			kept = append(kept, c)
		}
	}
	h.cards = kept

	h.reindex()

	return true
}

// Clone returns a deep copy.
func (h *Header) Clone() *Header {
	out := &Header{
		cards: make([]Card, len(h.cards)),
		index: make(map[string]int, len(h.index)),
	}
	copy(out.cards, h.cards)
	for k, v := range h.index {
		out.index[k] = v
	}

	return out
}

// appendCard appends without replacement, indexing the first occurrence.
func (h *Header) appendCard(c Card) {
	if h.index == nil {
		h.index = make(map[string]int)
	}

	if _, ok := h.index[c.Keyword]; !ok && c.Keyword != "" {
		h.index[c.Keyword] = len(h.cards)
	}

	h.cards = append(h.cards, c)
}

func (h *Header) reindex() {
	h.index = make(map[string]int, len(h.cards))
	for i, c := range h.cards {
		if c.Keyword == "" {
			continue
		}
		if _, ok := h.index[c.Keyword]; !ok {
			h.index[c.Keyword] = i
		}
	}
}

// encode appends the header as 80-byte cards plus END, space-padded to a
// whole number of blocks.
func (h *Header) encode(dst []byte) ([]byte, error) {
	start := len(dst)

	for i := range h.cards {
		img, err := FormatCard(&h.cards[i])
		if err != nil {
			return nil, err
		}
		dst = append(dst, img...)
	}

	end := [CardSize]byte{'E', 'N', 'D'}
	for i := 3; i < CardSize; i++ {
		end[i] = ' '
	}
	dst = append(dst, end[:]...)

	for (len(dst)-start)%BlockSize != 0 {
		dst = append(dst, ' ')
	}

	return dst, nil
}

// decodeHeader parses header blocks until the END card and returns the
// header and the number of bytes consumed (always a multiple of BlockSize).
//
// Returns errs.ErrInvalidBlockSize when the data ends inside a block and
// errs.ErrUnterminatedHeader when the blocks run out before END.
func decodeHeader(data []byte) (*Header, int, error) {
	h := NewHeader()
	offset := 0

	for {
		if len(data)-offset < BlockSize {
			if len(data)-offset > 0 {
				return nil, 0, fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidBlockSize, len(data)-offset)
			}

			return nil, 0, errs.ErrUnterminatedHeader
		}

		block := data[offset : offset+BlockSize]
		offset += BlockSize

		for pos := 0; pos < BlockSize; pos += CardSize {
			c, err := ParseCard(block[pos : pos+CardSize])
			if err != nil {
				return nil, 0, err
			}

			if c == nil {
				return h, offset, nil
			}

			// Padding between the last real card and END decodes as
			// empty blanks; keep only meaningful cards.
			if c.Keyword == "" && c.Value == nil && c.Comment == "" {
				continue
			}

			h.appendCard(*c)
		}
	}
}
