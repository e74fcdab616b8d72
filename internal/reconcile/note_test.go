package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNote(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		units []SizeStock
	}{
		{"plain text", "handle with care", nil},
		{"empty", "", nil},
		{"broken json", `{"kind":`, nil},
		{"wrong kind", `{"kind":"memo","variations":[{"size":"S","stock":1}]}`, nil},
		{"variations not a list", `{"kind":"sizeVariations","variations":{"size":"S"}}`, nil},
		{"empty list", `{"kind":"sizeVariations","variations":[]}`, nil},
		{"tagged", `{"kind":"sizeVariations","variations":[{"size":"S","stock":3},{"size":"M","stock":"7"}]}`,
			[]SizeStock{{Size: "S", Stock: 3}, {Size: "M", Stock: 7}}},
		{"bad stock value", `{"kind":"sizeVariations","variations":[{"size":"S","stock":true}]}`,
			[]SizeStock{{Size: "S", Stock: 0}}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			units, ok := ParseNote(tt.raw).Units()
			require.Equal(t, tt.units != nil, ok)
			require.Equal(t, tt.units, units)
		})
	}
}

func TestParseNoteKeepsPlainText(t *testing.T) {
	note := ParseNote("  see supplier invoice ")
	plain, ok := note.(PlainNote)
	require.True(t, ok)
	require.Equal(t, "  see supplier invoice ", plain.Text)
}

func TestEncodeSizeVariationsRoundTrip(t *testing.T) {
	raw := EncodeSizeVariations([]SizeStock{{Size: "L", Stock: 4}})
	note, ok := ParseNote(raw).(SizeVariationsNote)
	require.True(t, ok)
	require.Equal(t, []SizeStock{{Size: "L", Stock: 4}}, note.Variations)
}

func TestDecodeLineItems(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"array", `[{"name":"Polo","size":"S","quantity":2,"price":150}]`, 1},
		{"stringified array", `"[{\"name\":\"Polo\",\"size\":\"S\",\"quantity\":\"2\"},{\"name\":\"Skirt\"}]"`, 2},
		{"object", `{"name":"Polo"}`, 0},
		{"null", `null`, 0},
		{"garbage string", `"not json"`, 0},
		{"mixed entries", `[{"name":"Polo"}, 42, "x"]`, 1},
		{"empty", ``, 0},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, DecodeLineItems([]byte(tt.raw)), tt.want)
		})
	}
}

func TestOrderRecordTolerantItems(t *testing.T) {
	var order OrderRecord
	err := json.Unmarshal([]byte(`{"id":"o1","status":"pending","items":"oops"}`), &order)
	require.NoError(t, err)
	require.Empty(t, order.Items)

	err = json.Unmarshal([]byte(`{"id":"o2","status":"pending","items":"[{\"name\":\"Polo\",\"size\":\"Small (S)\",\"quantity\":1}]"}`), &order)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	require.Equal(t, 1, order.Items[0].Quantity)
}
