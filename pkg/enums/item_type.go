package enums

import (
	"fmt"
	"strings"
)

// ItemType describes the allowed values for the `item_type` column in point_history.
type ItemType string

const (
	ItemTypeGlass   ItemType = "glass"
	ItemTypePlastic ItemType = "plastic"
	ItemTypeCan     ItemType = "can"
)

var validItemTypes = []ItemType{
	ItemTypeGlass,
	ItemTypePlastic,
	ItemTypeCan,
}

// IsValid reports whether the value matches the canonical item type enum.
func (i ItemType) IsValid() bool {
	for _, candidate := range validItemTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseItemType converts the raw string to ItemType.
func ParseItemType(value string) (ItemType, error) {
	for _, candidate := range validItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item type %q", value)
}

// ClassifyItemLabel maps a free-form classifier label coming from the kiosk
// to a canonical item type. Matching is by substring so labels like
// "GlassBottle", "plastic-bottle" or "Aluminum Can" resolve without an
// exact vocabulary. Aluminum is treated as a can.
func ClassifyItemLabel(label string) (ItemType, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(normalized, "glass"):
		return ItemTypeGlass, nil
	case strings.Contains(normalized, "plastic"):
		return ItemTypePlastic, nil
	case strings.Contains(normalized, "can"), strings.Contains(normalized, "aluminum"):
		return ItemTypeCan, nil
	}
	return "", fmt.Errorf("unrecognized item label %q", label)
}
