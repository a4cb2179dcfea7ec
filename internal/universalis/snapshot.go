package universalis

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"xiv-profit/internal/engine"
	"xiv-profit/internal/logger"
	"xiv-profit/internal/recipes"
)

// DefaultCacheWindow is how long a captured snapshot stays reusable.
const DefaultCacheWindow = 15 * time.Minute

// CaptureOptions configures one snapshot capture.
type CaptureOptions struct {
	HomeWorld   string
	Region      string
	CacheWindow time.Duration
	Overrides   map[int32]float64 // ingredient price overrides baked into the snapshot
}

func (o CaptureOptions) cacheMs() int64 {
	w := o.CacheWindow
	if w <= 0 {
		w = DefaultCacheWindow
	}
	return w.Milliseconds()
}

// CaptureSnapshot prices the whole catalog against the home world and region
// scopes and assembles an immutable snapshot. Per-item fetches fan out
// concurrently, but items are assembled by catalog index, so the snapshot is
// deterministic regardless of fetch completion order.
//
// Individual fetch failures degrade to empty price stats for that scope; the
// engine surfaces them later as missing-data notes. Only when every fetch
// fails is the snapshot marked as a fallback.
func (c *Client) CaptureSnapshot(ctx context.Context, catalog []recipes.Definition, opts CaptureOptions) engine.MarketSnapshot {
	items := make([]engine.RecipeMarket, len(catalog))
	fetched := make([]int, len(catalog)) // successful fetches per item

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, def := range catalog {
		g.Go(func() error {
			items[i], fetched[i] = c.priceRecipe(ctx, def, opts)
			return nil
		})
	}
	g.Wait()

	source := engine.SourceFallback
	var total int
	for _, n := range fetched {
		total += n
	}
	if total > 0 {
		source = engine.SourceLive
	} else if len(catalog) > 0 {
		logger.Warn("Capture", "No price data fetched; snapshot synthesized from catalog only")
	}

	return engine.MarketSnapshot{
		Items:      items,
		CapturedAt: time.Now().UTC(),
		CacheMs:    opts.cacheMs(),
		Source:     source,
	}
}

// priceRecipe fetches output and ingredient stats for one catalog entry.
// Returns the priced item and how many stats fetches succeeded.
func (c *Client) priceRecipe(ctx context.Context, def recipes.Definition, opts CaptureOptions) (engine.RecipeMarket, int) {
	var ok int
	fetch := func(scope string, itemID int32) engine.PriceStats {
		if scope == "" {
			return engine.PriceStats{}
		}
		stats, err := c.PriceStats(ctx, scope, itemID)
		if err != nil {
			return engine.PriceStats{}
		}
		ok++
		return stats
	}

	materials := make([]engine.IngredientMarket, len(def.Ingredients))
	timedNodes := 0
	for i, ing := range def.Ingredients {
		mat := engine.IngredientMarket{
			Ingredient: ing,
			Home:       fetch(opts.HomeWorld, ing.ItemID),
			Region:     fetch(opts.Region, ing.ItemID),
		}
		if v, found := opts.Overrides[ing.ItemID]; found {
			price := v
			mat.Override = &price
		}
		if ing.TimedNode {
			timedNodes++
		}
		materials[i] = mat
	}

	return engine.RecipeMarket{
		RecipeItem:     def.RecipeItem,
		UniversalisURL: def.URL(),
		Materials:      materials,
		OutputHome:     fetch(opts.HomeWorld, def.OutputItemID),
		OutputRegion:   fetch(opts.Region, def.OutputItemID),
		Complexity:     len(def.Ingredients),
		TimedNodeCount: timedNodes,
	}, ok
}
