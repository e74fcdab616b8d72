package reconcile

import (
	"encoding/json"
	"strings"
)

// NoteKindSizeVariations tags a note that embeds per-size stock.
const NoteKindSizeVariations = "sizeVariations"

// Note is the parsed form of ItemRecord.Note: either PlainNote or SizeVariationsNote.
type Note interface {
	// Units expands the note into countable stock units. ok is false when the note
	// carries no embedded variations and the item itself is the unit.
	Units() (units []SizeStock, ok bool)
	isNote()
}

// SizeStock is one embedded size variation.
type SizeStock struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// PlainNote is free text.
type PlainNote struct {
	Text string
}

// SizeVariationsNote is the tagged payload {"kind":"sizeVariations","variations":[...]}.
type SizeVariationsNote struct {
	Variations []SizeStock
}

func (PlainNote) isNote()          {}
func (SizeVariationsNote) isNote() {}

// Units implements Note.
func (PlainNote) Units() ([]SizeStock, bool) { return nil, false }

// Units implements Note.
func (n SizeVariationsNote) Units() ([]SizeStock, bool) {
	if len(n.Variations) == 0 {
		return nil, false
	}
	return n.Variations, true
}

type taggedNote struct {
	Kind       string          `json:"kind"`
	Variations json.RawMessage `json:"variations"`
}

type rawSizeStock struct {
	Size  string          `json:"size"`
	Stock json.RawMessage `json:"stock"`
}

// ParseNote interprets a raw note. Anything that is not a well-formed tagged
// payload is returned as PlainNote; it never fails.
func ParseNote(raw string) Note {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return PlainNote{Text: raw}
	}
	var tagged taggedNote
	if err := json.Unmarshal([]byte(trimmed), &tagged); err != nil {
		return PlainNote{Text: raw}
	}
	if tagged.Kind != NoteKindSizeVariations {
		return PlainNote{Text: raw}
	}
	var entries []rawSizeStock
	if err := json.Unmarshal(tagged.Variations, &entries); err != nil {
		return PlainNote{Text: raw}
	}
	variations := make([]SizeStock, 0, len(entries))
	for _, e := range entries {
		variations = append(variations, SizeStock{Size: e.Size, Stock: parseCount(e.Stock)})
	}
	return SizeVariationsNote{Variations: variations}
}

// EncodeSizeVariations renders variations in the tagged note format.
func EncodeSizeVariations(variations []SizeStock) string {
	if variations == nil {
		variations = []SizeStock{}
	}
	payload := struct {
		Kind       string      `json:"kind"`
		Variations []SizeStock `json:"variations"`
	}{Kind: NoteKindSizeVariations, Variations: variations}
	data, _ := json.Marshal(payload)
	return string(data)
}

// parseCount accepts numbers and numeric strings; anything else counts as 0.
func parseCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return numberToInt(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return numberToInt(json.Number(strings.TrimSpace(s)))
	}
	return 0
}

func numberToInt(n json.Number) int {
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	if f, err := n.Float64(); err == nil {
		return int(f)
	}
	return 0
}
