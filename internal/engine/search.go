package engine

import (
	"math"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"xiv-profit/internal/servers"
)

// DefaultPageSize is the page size used by the reference UI.
const DefaultPageSize = 10

// TraceFunc receives the number of items surviving each named filter stage.
// Nil disables tracing; the pipeline itself never logs.
type TraceFunc func(stage string, remaining int)

// RunSearch filters, prices, and ranks a snapshot under the given parameters.
// It is deterministic: identical snapshot and parameters always yield
// identical ordered results.
func RunSearch(snapshot MarketSnapshot, params SearchParameters) SearchOutput {
	return RunSearchTraced(snapshot, params, nil)
}

// RunSearchTraced is RunSearch with an optional per-stage trace hook.
func RunSearchTraced(snapshot MarketSnapshot, params SearchParameters, trace TraceFunc) SearchOutput {
	// Categories come from the unfiltered snapshot so the UI can offer every
	// category even when the active filters exclude all matching items.
	availableCategories := distinctCategories(snapshot.Items)

	items := snapshot.Items
	emit(trace, "snapshot", len(items))

	for _, stage := range attributeStages(params) {
		kept := items[:0:0]
		for _, item := range items {
			if stage.pass(item) {
				kept = append(kept, item)
			}
		}
		items = kept
		emit(trace, stage.name, len(items))
	}

	results := priceItems(items, params)

	gate := financialGate(params)
	kept := results[:0]
	for _, r := range results {
		if gate(r.Financials) {
			kept = append(kept, r)
		}
	}
	results = kept
	emit(trace, "financials", len(results))

	sortResults(results, params)

	return SearchOutput{Results: results, AvailableCategories: availableCategories}
}

// Paginate slices one page out of the full result set (1-based page numbers).
func Paginate(results []SearchResult, page, pageSize int) []SearchResult {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(results) {
		return nil
	}
	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}

// TotalPages returns the page count for a result set, never less than 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

func emit(trace TraceFunc, stage string, remaining int) {
	if trace != nil {
		trace(stage, remaining)
	}
}

func distinctCategories(items []RecipeMarket) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			out = append(out, item.Category)
		}
	}
	sort.Strings(out)
	return out
}

// filterStage is one named predicate of the inclusion chain.
type filterStage struct {
	name string
	pass func(RecipeMarket) bool
}

// attributeStages builds the ordered predicate chain over item attributes.
// Every item must pass all stages to remain.
func attributeStages(params SearchParameters) []filterStage {
	var stages []filterStage

	if q := strings.ToLower(strings.TrimSpace(params.Query)); q != "" {
		stages = append(stages, filterStage{"query", func(item RecipeMarket) bool {
			return strings.Contains(strings.ToLower(item.Name), q)
		}})
	}

	if hs := strings.ToLower(params.HomeServer); hs != "" {
		stages = append(stages, filterStage{"homeWorld", func(item RecipeMarket) bool {
			return strings.Contains(strings.ToLower(item.HomeWorld), hs)
		}})
	}

	// Region filter: the derived region is the explicit parameter when set,
	// otherwise the region owning the requested data center. An item matches
	// on its own region text or by belonging to a data center of that region.
	if derived := deriveRegion(params); derived != "" {
		lowerRegion := strings.ToLower(derived)
		regionDCs := servers.DataCentersForRegion(derived)
		stages = append(stages, filterStage{"region", func(item RecipeMarket) bool {
			if strings.Contains(strings.ToLower(item.Region), lowerRegion) {
				return true
			}
			for _, dc := range regionDCs {
				if strings.EqualFold(item.DataCenter, dc.Name) {
					return true
				}
			}
			return false
		}})
	}

	if dc := strings.ToLower(params.DataCenter); dc != "" {
		stages = append(stages, filterStage{"dataCenter", func(item RecipeMarket) bool {
			return strings.Contains(strings.ToLower(item.DataCenter), dc)
		}})
	}

	if len(params.Categories) > 0 {
		allowed := make(map[string]bool, len(params.Categories))
		for _, c := range params.Categories {
			allowed[c] = true
		}
		stages = append(stages, filterStage{"categories", func(item RecipeMarket) bool {
			return allowed[item.Category]
		}})
	}

	if params.JobFilter != "" && params.JobFilter != "any" {
		want := Job(params.JobFilter)
		stages = append(stages, filterStage{"job", func(item RecipeMarket) bool {
			return item.Job == want
		}})
	}

	if params.ExpertOnly {
		stages = append(stages, filterStage{"expert", func(item RecipeMarket) bool {
			return item.IsExpert
		}})
	}

	if params.TimedNodeOnly {
		stages = append(stages, filterStage{"timedNode", func(item RecipeMarket) bool {
			return item.TimedNodeCount > 0
		}})
	}

	if params.MaxComplexity > 0 {
		max := params.MaxComplexity
		stages = append(stages, filterStage{"complexity", func(item RecipeMarket) bool {
			return item.Complexity <= max
		}})
	}

	stages = append(stages, filterStage{"attributes", func(item RecipeMarket) bool {
		if item.Yields < params.MinYield {
			return false
		}
		if item.Stars < params.StarLimit {
			return false
		}
		// An inverted level range simply matches nothing.
		if item.Level < params.LevelRange[0] || item.Level > params.LevelRange[1] {
			return false
		}
		if params.OnlyOmnicrafterFriendly && item.Job != JobOmni {
			return false
		}
		return true
	}})

	return stages
}

func deriveRegion(params SearchParameters) string {
	if params.Region != "" {
		return params.Region
	}
	if params.DataCenter != "" {
		return servers.RegionForDataCenter(params.DataCenter)
	}
	return ""
}

// priceItems computes financials for the surviving items. Per-item
// computations are independent, so they fan out across workers; results are
// written by index to keep snapshot order regardless of completion order.
func priceItems(items []RecipeMarket, params SearchParameters) []SearchResult {
	results := make([]SearchResult, len(items))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, item := range items {
		g.Go(func() error {
			results[i] = SearchResult{Item: item, Financials: ComputeFinancials(item, params)}
			return nil
		})
	}
	g.Wait()

	return results
}

// financialGate returns the combined financial threshold predicate. The
// per-unit revenue and profit floors apply on every search, so the default
// MinProfit of 0 already excludes loss-making recipes. Only the weekly-sales
// and time-to-sell gates treat zero as "no constraint".
func financialGate(params SearchParameters) func(Financials) bool {
	return func(f Financials) bool {
		// MinSales of 0 means "no constraint", so the weekly-sales gate is
		// skipped entirely rather than vacuously satisfied by zero velocity.
		if params.MinSales > 0 {
			weekly := 0.0
			if f.SaleVelocityPerDay != nil {
				weekly = *f.SaleVelocityPerDay * 7
			}
			if weekly < params.MinSales {
				return false
			}
		}
		if f.RevenuePerUnit < params.MinPrice {
			return false
		}
		if f.Profit < params.MinProfit {
			return false
		}
		if params.MaxTimeToSell > 0 {
			// Unknown time-to-sell never passes an active ceiling.
			if f.TimeToSellDays == nil || *f.TimeToSellDays > params.MaxTimeToSell {
				return false
			}
		}
		return true
	}
}

// sortResults stably sorts results by the chosen key and direction. Ties keep
// snapshot-relative order, which makes pagination deterministic.
func sortResults(results []SearchResult, params SearchParameters) {
	desc := params.SortDir == "desc"

	if params.SortKey == SortName {
		coll := collate.New(language.English, collate.Loose)
		sort.SliceStable(results, func(i, j int) bool {
			c := coll.CompareString(results[i].Item.Name, results[j].Item.Name)
			if desc {
				return c > 0
			}
			return c < 0
		})
		return
	}

	key := numericSortValue(params.SortKey)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := key(results[i]), key(results[j])
		if desc {
			return a > b
		}
		return a < b
	})
}

func numericSortValue(key SortKey) func(SearchResult) float64 {
	switch key {
	case SortROI:
		return func(r SearchResult) float64 { return r.Financials.ROI }
	case SortLevel:
		return func(r SearchResult) float64 { return float64(r.Item.Level) }
	case SortStars:
		return func(r SearchResult) float64 { return float64(r.Item.Stars) }
	case SortYields:
		return func(r SearchResult) float64 { return float64(r.Item.Yields) }
	case SortProfitPerUnit:
		return func(r SearchResult) float64 { return r.Financials.ProfitPerUnit }
	case SortTimeToSell:
		return func(r SearchResult) float64 {
			if r.Financials.TimeToSellDays == nil {
				return math.Inf(1)
			}
			return *r.Financials.TimeToSellDays
		}
	default:
		return func(r SearchResult) float64 { return r.Financials.Profit }
	}
}
