package api

import (
	"xiv-profit/internal/db"
	"xiv-profit/internal/engine"
)

// DefaultPresets returns the presets seeded into an empty database.
func DefaultPresets() []db.Preset {
	quickFlips := engine.DefaultSearchParameters()
	quickFlips.MinProfit = 10000
	quickFlips.MaxTimeToSell = 2
	quickFlips.SortKey = engine.SortProfit
	quickFlips.SortDir = "desc"

	expertCrafts := engine.DefaultSearchParameters()
	expertCrafts.ExpertOnly = true
	expertCrafts.SortKey = engine.SortROI
	expertCrafts.SortDir = "desc"

	bulkCrafts := engine.DefaultSearchParameters()
	bulkCrafts.MinYield = 3
	bulkCrafts.SortKey = engine.SortProfitPerUnit
	bulkCrafts.SortDir = "desc"

	return []db.Preset{
		{
			Name:        "Quick Flips",
			Description: "High profit items that sell within two days",
			Tags:        []string{"fast", "profit"},
			IsDefault:   true,
			Parameters:  quickFlips,
		},
		{
			Name:        "Expert Crafts",
			Description: "Expert recipes ranked by return on investment",
			Tags:        []string{"expert"},
			Parameters:  expertCrafts,
		},
		{
			Name:        "Bulk Crafts",
			Description: "Multi-yield recipes ranked by per-unit profit",
			Tags:        []string{"bulk"},
			Parameters:  bulkCrafts,
		},
	}
}
