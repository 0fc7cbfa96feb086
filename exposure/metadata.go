package exposure

import (
	"encoding/json"
	"fmt"

	"github.com/astrofold/shearkit/errs"
	"github.com/astrofold/shearkit/fits"
	"github.com/astrofold/shearkit/internal/hash"
)

// DetectorMeta holds the human-readable side of one detector: its name and
// its FITS headers, stored as 80-character card images so arbitrary keywords
// survive the round trip.
type DetectorMeta struct {
	// Name is the detector name, "1-1" through "6-6" for full CCDs or
	// "1-1.E" style for quadrants.
	Name string `json:"name"`

	// Header holds the detector's FITS header cards, if any.
	Header []string `json:"header,omitempty"`

	// WCSHeader holds the detector's WCS keywords as header cards, if any.
	WCSHeader []string `json:"wcs,omitempty"`
}

// Metadata is the JSON metadata section of an exposure store.
//
// The binary index identifies detectors by xxHash64 of their names only; this
// section carries the names themselves plus everything human-readable.
type Metadata struct {
	// Detectors lists the stored detectors in index order.
	Detectors []DetectorMeta `json:"detectors"`

	// GlobalHeader holds exposure-level FITS header cards, if any.
	GlobalHeader []string `json:"global_header,omitempty"`
}

// encode serializes the metadata and returns the JSON payload with its
// xxhash64 checksum.
func (m *Metadata) encode() ([]byte, uint64, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode store metadata: %w", err)
	}

	return data, hash.Sum64(data), nil
}

// decodeMetadata parses the metadata section, verifying its checksum first.
func decodeMetadata(data []byte, checksum uint64) (*Metadata, error) {
	if got := hash.Sum64(data); got != checksum {
		return nil, fmt.Errorf("%w: got 0x%016x, header says 0x%016x",
			errs.ErrMetadataChecksum, got, checksum)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode store metadata: %w", err)
	}

	return &m, nil
}

// headerToCards serializes a FITS header into 80-character card images.
// A nil or empty header yields nil.
func headerToCards(h *fits.Header) ([]string, error) {
	if h == nil || h.Len() == 0 {
		return nil, nil
	}

	cards := make([]string, 0, h.Len())
	for _, c := range h.Cards() {
		raw, err := fits.FormatCard(&c)
		if err != nil {
			return nil, err
		}
		cards = append(cards, string(raw))
	}

	return cards, nil
}

// cardsToHeader parses card images back into a FITS header.
// Nil input yields nil, so absent headers stay absent.
func cardsToHeader(cards []string) (*fits.Header, error) {
	if len(cards) == 0 {
		return nil, nil
	}

	h := fits.NewHeader()
	for _, raw := range cards {
		c, err := fits.ParseCard([]byte(raw))
		if err != nil {
			return nil, err
		}

		switch c.Keyword {
		case "COMMENT":
			h.AppendComment(c.Comment)
		case "HISTORY":
			h.AppendHistory(c.Comment)
		case "":
			// blank card, nothing to keep
		default:
			if err := h.Set(c.Keyword, c.Value, c.Comment); err != nil {
				return nil, err
			}
		}
	}

	return h, nil
}
