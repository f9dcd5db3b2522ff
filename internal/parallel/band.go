package parallel

// Band is a half-open range of rows [Y0, Y1).
type Band struct {
	Y0, Y1 int
}

// Height returns the number of rows in the band.
func (b Band) Height() int { return b.Y1 - b.Y0 }

// SplitRows divides height rows into at most n contiguous bands of nearly
// equal size, in top to bottom order. Bands never have zero height.
func SplitRows(height, n int) []Band {
	if height <= 0 {
		return nil
	}
	n = max(1, min(n, height))
	bands := make([]Band, n)
	base, extra := height/n, height%n
	y := 0
	for i := range bands {
		h := base
		if i < extra {
			h++
		}
		bands[i] = Band{Y0: y, Y1: y + h}
		y += h
	}
	return bands
}
