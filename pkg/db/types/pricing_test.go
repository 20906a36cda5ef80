package types

import "testing"

func TestPricingRoundTrip(t *testing.T) {
	p := Pricing{Glass: 7, Plastic: 2, Can: 4}

	value, err := p.Value()
	if err != nil {
		t.Fatalf("Value() returned error: %v", err)
	}

	var restored Pricing
	if err := restored.Scan(value); err != nil {
		t.Fatalf("Scan() returned error: %v", err)
	}
	if restored != p {
		t.Fatalf("round trip mismatch: got %+v want %+v", restored, p)
	}
}

func TestPricingPointsFor(t *testing.T) {
	p := DefaultPricing()
	if got, ok := p.PointsFor("glass"); !ok || got != 5 {
		t.Fatalf("PointsFor(glass) = %d, %v", got, ok)
	}
	if _, ok := p.PointsFor("cardboard"); ok {
		t.Fatal("expected unknown material to report not found")
	}
}

func TestPricingScanNil(t *testing.T) {
	p := Pricing{Glass: 1}
	if err := p.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) returned error: %v", err)
	}
	if p != (Pricing{}) {
		t.Fatalf("expected zero pricing, got %+v", p)
	}
}
