package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Pricing holds the points awarded per deposited item, keyed by material.
// Stored as a jsonb column so the operator can retune rates without a schema change.
type Pricing struct {
	Glass   int `json:"glass"`
	Plastic int `json:"plastic"`
	Can     int `json:"can"`
}

// DefaultPricing returns the rates the machine ships with.
func DefaultPricing() Pricing {
	return Pricing{Glass: 5, Plastic: 3, Can: 4}
}

// PointsFor returns the configured rate for the given material name.
func (p Pricing) PointsFor(material string) (int, bool) {
	switch material {
	case "glass":
		return p.Glass, true
	case "plastic":
		return p.Plastic, true
	case "can":
		return p.Can, true
	}
	return 0, false
}

// Value implements driver.Valuer for jsonb persistence.
func (p Pricing) Value() (driver.Value, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling pricing: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner for jsonb persistence.
func (p *Pricing) Scan(src any) error {
	if src == nil {
		*p = Pricing{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported pricing column type %T", src)
	}

	return json.Unmarshal(raw, p)
}
