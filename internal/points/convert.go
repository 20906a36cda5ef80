package points

// PointsToBaht converts a point amount to whole baht at the given rate,
// discarding any remainder. The remainder stays on the balance.
func PointsToBaht(points, pointsPerBaht int) int {
	if points <= 0 || pointsPerBaht <= 0 {
		return 0
	}
	return points / pointsPerBaht
}

// BahtToPoints returns the points required to cash out the given baht amount.
func BahtToPoints(baht, pointsPerBaht int) int {
	if baht <= 0 || pointsPerBaht <= 0 {
		return 0
	}
	return baht * pointsPerBaht
}
