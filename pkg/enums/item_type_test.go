package enums

import "testing"

func TestClassifyItemLabel(t *testing.T) {
	cases := []struct {
		label string
		want  ItemType
	}{
		{"glass", ItemTypeGlass},
		{"GlassBottle", ItemTypeGlass},
		{"plastic-bottle", ItemTypePlastic},
		{"  Plastic ", ItemTypePlastic},
		{"can", ItemTypeCan},
		{"Aluminum", ItemTypeCan},
		{"aluminum can", ItemTypeCan},
	}
	for _, tc := range cases {
		got, err := ClassifyItemLabel(tc.label)
		if err != nil {
			t.Fatalf("ClassifyItemLabel(%q) returned error: %v", tc.label, err)
		}
		if got != tc.want {
			t.Fatalf("ClassifyItemLabel(%q) = %s, want %s", tc.label, got, tc.want)
		}
	}
}

func TestClassifyItemLabel_Unknown(t *testing.T) {
	if _, err := ClassifyItemLabel("cardboard"); err == nil {
		t.Fatal("expected unrecognized label to return an error")
	}
}

func TestParseItemType(t *testing.T) {
	if _, err := ParseItemType("paper"); err == nil {
		t.Fatal("expected invalid item type to return an error")
	}
	got, err := ParseItemType("glass")
	if err != nil || got != ItemTypeGlass {
		t.Fatalf("ParseItemType(glass) = %v, %v", got, err)
	}
}
