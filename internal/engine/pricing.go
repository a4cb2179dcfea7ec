package engine

// ResolvePrice resolves a single scalar price from a PriceStats bundle under
// the requested mode. Each mode tries its preferred field first and walks a
// fixed fallback chain; the first populated field wins. The blended mode
// combines median and minimum listing when both are present, with blendWeight
// clamped to [0,1] (weight 1 = pure minimum listing).
//
// Returns nil only when every underlying field is nil. Callers must propagate
// that nil rather than treat it as zero; the financial calculator converts it
// to a documented default at its final summation step.
func ResolvePrice(stats PriceStats, mode PriceMode, blendWeight float64) *float64 {
	switch mode {
	case ModeRegionalAverage:
		return firstPrice(stats.Average, stats.Median, stats.MinListing)
	case ModeMinListing, ModeHomeMin, ModeRegionalMin:
		return firstPrice(stats.MinListing, stats.Median, stats.Average)
	case ModeBlended:
		w := clamp01(blendWeight)
		if stats.Median != nil && stats.MinListing != nil {
			v := *stats.Median*(1-w) + *stats.MinListing*w
			return &v
		}
		return firstPrice(stats.Median, stats.MinListing, stats.Average)
	default:
		// regionalMedian, and any unrecognized mode degrades to it.
		return firstPrice(stats.Median, stats.Average, stats.MinListing)
	}
}

// firstPrice returns a copy of the first non-nil value.
func firstPrice(candidates ...*float64) *float64 {
	for _, c := range candidates {
		if c != nil {
			v := *c
			return &v
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
