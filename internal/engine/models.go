package engine

import "time"

// Job classifies a recipe by crafting discipline.
type Job string

const (
	JobDoH  Job = "DoH"  // Disciple of the Hand
	JobDoL  Job = "DoL"  // Disciple of the Land
	JobOmni Job = "Omni" // eligible across multiple crafting disciplines
)

// Ingredient is one material line of a recipe.
type Ingredient struct {
	ItemID      int32    `json:"itemId"`
	Name        string   `json:"name"`
	Quantity    int      `json:"quantity"`
	VendorPrice *float64 `json:"vendorPrice,omitempty"`
	TimedNode   bool     `json:"timedNode,omitempty"` // gathering-window-gated material
}

// RecipeItem describes one craftable recipe. Immutable per snapshot.
type RecipeItem struct {
	ID           int32        `json:"id"`
	OutputItemID int32        `json:"outputItemId"`
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	Job          Job          `json:"job"`
	Level        int          `json:"level"`
	Stars        int          `json:"stars"` // 0-4
	Yields       int          `json:"yields"`
	IsExpert     bool         `json:"isExpert"`
	HomeWorld    string       `json:"homeWorld"`
	DataCenter   string       `json:"dataCenter"`
	Region       string       `json:"region"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// PriceStats is a bundle of optional per-location price statistics.
// A nil field means "no market data available" and is never coerced to
// zero before the financial calculator's final summation step.
type PriceStats struct {
	Average      *float64   `json:"average"`
	Median       *float64   `json:"median"`
	MinListing   *float64   `json:"minListing"`
	SaleVelocity *float64   `json:"saleVelocity"` // units per day
	LastUpload   *time.Time `json:"lastUpload,omitempty"`
}

// Empty reports whether no price field is populated.
func (p PriceStats) Empty() bool {
	return p.Average == nil && p.Median == nil && p.MinListing == nil
}

// IngredientMarket is an ingredient enriched with pricing context.
type IngredientMarket struct {
	Ingredient
	Override *float64   `json:"override,omitempty"` // caller-supplied override price
	Home     PriceStats `json:"home"`               // searcher's home world scope
	Region   PriceStats `json:"region"`             // broader region scope
}

// RecipeMarket is a fully priced recipe within one snapshot.
type RecipeMarket struct {
	RecipeItem
	UniversalisURL string             `json:"universalisUrl"`
	Materials      []IngredientMarket `json:"materials"`
	OutputHome     PriceStats         `json:"outputHome"`
	OutputRegion   PriceStats         `json:"outputRegion"`
	Complexity     int                `json:"complexity"`     // ingredient count
	TimedNodeCount int                `json:"timedNodeCount"` // materials gated behind timed nodes
}

// Snapshot sources.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// MarketSnapshot is an immutable, timestamped capture of recipe market data.
// Consumers never mutate a snapshot in place.
type MarketSnapshot struct {
	Items      []RecipeMarket `json:"items"`
	CapturedAt time.Time      `json:"capturedAt"`
	CacheMs    int64          `json:"cacheMs"` // cache window, always > 0
	Source     string         `json:"source"`  // "live" or "fallback"
}

// PriceMode selects how a scalar price is resolved from a PriceStats bundle.
type PriceMode string

const (
	ModeRegionalMedian  PriceMode = "regionalMedian"
	ModeRegionalAverage PriceMode = "regionalAverage"
	ModeMinListing      PriceMode = "minListing"
	ModeBlended         PriceMode = "blended"
	ModeHomeMin         PriceMode = "homeMin"
	ModeRegionalMin     PriceMode = "regionalMin"
)

// SortKey selects the ranking dimension for search results.
type SortKey string

const (
	SortName          SortKey = "name"
	SortProfit        SortKey = "profit"
	SortROI           SortKey = "roi"
	SortLevel         SortKey = "level"
	SortStars         SortKey = "stars"
	SortYields        SortKey = "yields"
	SortProfitPerUnit SortKey = "profitPerUnit"
	SortTimeToSell    SortKey = "timeToSell"
)

// SearchParameters fully describes one search request. Two instances with
// identical field values produce identical results for the same snapshot.
type SearchParameters struct {
	Query                   string            `json:"query"`
	HomeServer              string            `json:"homeServer"`
	Region                  string            `json:"region,omitempty"`
	DataCenter              string            `json:"dataCenter"`
	Categories              []string          `json:"categories"`
	JobFilter               string            `json:"jobFilter"` // "any" | "DoH" | "Omni"
	MinSales                float64           `json:"minSales"`  // weekly sale count floor, 0 = no gate
	MinPrice                float64           `json:"minPrice"`  // per-unit revenue floor
	MinProfit               float64           `json:"minProfit"`
	MinYield                int               `json:"minYield"`
	StarLimit               int               `json:"starLimit"`  // minimum stars, 0-4
	LevelRange              [2]int            `json:"levelRange"` // inclusive, 1-100
	ExpertOnly              bool              `json:"expertOnly"`
	OnlyOmnicrafterFriendly bool              `json:"onlyOmnicrafterFriendly"`
	CostMode                PriceMode         `json:"costMode"`
	RevenueMode             PriceMode         `json:"revenueMode"`
	BlendedListingWeight    float64           `json:"blendedListingWeight"` // 0-1
	IncludeVendorPrices     bool              `json:"includeVendorPrices"`
	PriceOverrides          map[int32]float64 `json:"priceOverrides"`
	TimedNodeOnly           bool              `json:"timedNodeOnly"`
	MaxComplexity           int               `json:"maxComplexity"` // 0 = no ceiling
	MaxTimeToSell           float64           `json:"maxTimeToSell"` // days, 0 = unbounded
	SortKey                 SortKey           `json:"sortKey"`
	SortDir                 string            `json:"sortDir"` // "asc" | "desc"
}

// Financials holds the derived per-item metrics for one (item, parameters)
// pair. Never stored; recomputed on every search.
type Financials struct {
	Revenue            float64  `json:"revenue"`
	RevenuePerUnit     float64  `json:"revenuePerUnit"`
	Cost               float64  `json:"cost"`
	Profit             float64  `json:"profit"`
	ProfitPerUnit      float64  `json:"profitPerUnit"`
	ROI                float64  `json:"roi"`
	TimeToSellDays     *float64 `json:"timeToSellDays"`     // nil = unknown
	SaleVelocityPerDay *float64 `json:"saleVelocityPerDay"` // nil = no sale data
	Missing            []string `json:"missing"`            // ingredient notes in definition order, then "revenue"
}

// SearchResult pairs an item with its computed financials.
type SearchResult struct {
	Item       RecipeMarket `json:"item"`
	Financials Financials   `json:"financials"`
}

// SearchOutput is the result of one pipeline run. AvailableCategories is the
// sorted distinct category set of the unfiltered snapshot, so callers can
// offer every category even when the active filters exclude all matches.
type SearchOutput struct {
	Results             []SearchResult `json:"results"`
	AvailableCategories []string       `json:"availableCategories"`
}

// DefaultSearchParameters returns the baseline request every search starts from.
func DefaultSearchParameters() SearchParameters {
	return SearchParameters{
		JobFilter:            "any",
		MinYield:             1,
		LevelRange:           [2]int{50, 100},
		CostMode:             ModeRegionalMedian,
		RevenueMode:          ModeRegionalMedian,
		BlendedListingWeight: 0.5,
		IncludeVendorPrices:  true,
		SortKey:              SortProfit,
		SortDir:              "desc",
	}
}
