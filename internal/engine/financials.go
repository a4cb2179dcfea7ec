package engine

import "fmt"

// ComputeFinancials derives cost, revenue, profit, ROI, and time-to-sell for
// one priced recipe under the given parameters.
//
// Ingredient unit prices resolve in a fixed order: a caller override (from
// PriceOverrides or the ingredient's own override) wins, then the vendor
// price when IncludeVendorPrices is set, then the region-scoped price policy
// under CostMode. An ingredient with no resolvable price contributes zero to
// cost and is recorded in Missing instead of being silently absorbed.
//
// ComputeFinancials never fails: all missing-data cases degrade to documented
// numeric defaults plus a diagnostic note.
func ComputeFinancials(item RecipeMarket, params SearchParameters) Financials {
	var missing []string

	var materialCost float64
	for _, mat := range item.Materials {
		price := resolveIngredientPrice(mat, params)
		if price == nil {
			missing = append(missing, fmt.Sprintf("ingredient %s (%d)", mat.Name, mat.ItemID))
			continue
		}
		materialCost += *price * float64(mat.Quantity)
	}

	outputStats := item.OutputRegion
	if params.RevenueMode == ModeHomeMin {
		outputStats = item.OutputHome
	}
	outputUnitPrice := ResolvePrice(outputStats, params.RevenueMode, params.BlendedListingWeight)
	if outputUnitPrice == nil {
		missing = append(missing, "revenue")
	}

	unitPrice := 0.0
	if outputUnitPrice != nil {
		unitPrice = *outputUnitPrice
	}

	yields := float64(item.Yields)
	revenue := unitPrice * yields
	profit := revenue - materialCost

	profitPerUnit := profit
	revenuePerUnit := revenue
	if item.Yields > 0 {
		profitPerUnit = profit / yields
		revenuePerUnit = revenue / yields
	}

	// ROI is defined as 0 at zero cost; never Inf or NaN.
	roi := 0.0
	if materialCost > 0 {
		roi = profit / materialCost
	}

	velocity := firstPrice(item.OutputHome.SaleVelocity, item.OutputRegion.SaleVelocity)
	var timeToSell *float64
	if velocity != nil && *velocity > 0 {
		days := yields / *velocity
		timeToSell = &days
	}

	return Financials{
		Revenue:            revenue,
		RevenuePerUnit:     revenuePerUnit,
		Cost:               materialCost,
		Profit:             profit,
		ProfitPerUnit:      profitPerUnit,
		ROI:                roi,
		TimeToSellDays:     timeToSell,
		SaleVelocityPerDay: velocity,
		Missing:            missing,
	}
}

// resolveIngredientPrice applies the override → vendor → policy fallback.
func resolveIngredientPrice(mat IngredientMarket, params SearchParameters) *float64 {
	if v, ok := params.PriceOverrides[mat.ItemID]; ok {
		price := v
		return &price
	}
	if mat.Override != nil {
		price := *mat.Override
		return &price
	}
	if params.IncludeVendorPrices && mat.VendorPrice != nil {
		price := *mat.VendorPrice
		return &price
	}
	return ResolvePrice(mat.Region, params.CostMode, params.BlendedListingWeight)
}
