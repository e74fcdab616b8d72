package reconcile

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItems is an order's item list. It decodes from a JSON array, from a
// JSON string that itself holds an array, or degrades to empty for anything else.
type LineItems []OrderLineItem

// UnmarshalJSON implements json.Unmarshaler and never reports an error.
func (l *LineItems) UnmarshalJSON(data []byte) error {
	*l = DecodeLineItems(data)
	return nil
}

// DecodeLineItems parses a stored line-item payload.
func DecodeLineItems(data []byte) LineItems {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return LineItems{}
	}
	switch data[0] {
	case '[':
		return decodeLineArray(data)
	case '"':
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return LineItems{}
		}
		inner = strings.TrimSpace(inner)
		if !strings.HasPrefix(inner, "[") {
			return LineItems{}
		}
		return decodeLineArray([]byte(inner))
	default:
		return LineItems{}
	}
}

type rawLineItem struct {
	Name     string          `json:"name"`
	Size     string          `json:"size"`
	Quantity json.RawMessage `json:"quantity"`
	Price    json.RawMessage `json:"price"`
}

func decodeLineArray(data []byte) LineItems {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return LineItems{}
	}
	items := make(LineItems, 0, len(raws))
	for _, raw := range raws {
		var line rawLineItem
		if err := json.Unmarshal(raw, &line); err != nil {
			continue
		}
		item := OrderLineItem{Name: line.Name, Size: line.Size, Quantity: parseCount(line.Quantity)}
		item.Price = parseMoney(line.Price)
		items = append(items, item)
	}
	return items
}

func parseMoney(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero
	}
	return d
}
