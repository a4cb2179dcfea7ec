package universalis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"xiv-profit/internal/engine"
	"xiv-profit/internal/recipes"
)

func captureCatalog() []recipes.Definition {
	return []recipes.Definition{
		{
			RecipeItem: engine.RecipeItem{
				ID: 36218, OutputItemID: 36218,
				Name: "Chondrite Ingot", Category: "Blacksmith",
				Job: engine.JobDoH, Level: 90, Stars: 2, Yields: 3,
				HomeWorld: "Ravana", DataCenter: "Materia", Region: "Oceania",
				Ingredients: []engine.Ingredient{
					{ItemID: 36078, Name: "Chondrite", Quantity: 3},
					{ItemID: 36137, Name: "Manganese Ore", Quantity: 1, TimedNode: true},
				},
			},
			Slug: "chondrite-ingot",
		},
	}
}

func TestCaptureSnapshot_LiveSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"medianPrice": 500, "saleVelocity": 2}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	snap := c.CaptureSnapshot(context.Background(), captureCatalog(), CaptureOptions{
		HomeWorld: "Ravana",
		Region:    "Oceania",
	})

	if snap.Source != engine.SourceLive {
		t.Errorf("Source = %q, want %q", snap.Source, engine.SourceLive)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("Items = %d, want 1", len(snap.Items))
	}
	item := snap.Items[0]
	if item.OutputRegion.Median == nil || *item.OutputRegion.Median != 500 {
		t.Errorf("OutputRegion.Median = %v, want 500", item.OutputRegion.Median)
	}
	if item.Complexity != 2 {
		t.Errorf("Complexity = %d, want 2", item.Complexity)
	}
	if item.TimedNodeCount != 1 {
		t.Errorf("TimedNodeCount = %d, want 1", item.TimedNodeCount)
	}
	if item.UniversalisURL != "https://universalis.app/market/chondrite-ingot" {
		t.Errorf("UniversalisURL = %q", item.UniversalisURL)
	}
	if snap.CacheMs != DefaultCacheWindow.Milliseconds() {
		t.Errorf("CacheMs = %d, want default window", snap.CacheMs)
	}
	if snap.CapturedAt.IsZero() {
		t.Error("CapturedAt not set")
	}
}

func TestCaptureSnapshot_AllFetchesFailFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	snap := c.CaptureSnapshot(context.Background(), captureCatalog(), CaptureOptions{
		HomeWorld: "Ravana",
		Region:    "Oceania",
	})

	if snap.Source != engine.SourceFallback {
		t.Errorf("Source = %q, want %q", snap.Source, engine.SourceFallback)
	}
	if len(snap.Items) != 1 {
		t.Fatalf("Items = %d, want 1", len(snap.Items))
	}
	// Every scope degraded to empty stats rather than dropping the item.
	if !snap.Items[0].OutputRegion.Empty() || !snap.Items[0].OutputHome.Empty() {
		t.Errorf("failed fetches should yield empty stats: %+v", snap.Items[0])
	}
}

func TestCaptureSnapshot_AppliesOverrides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"medianPrice": 500}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	snap := c.CaptureSnapshot(context.Background(), captureCatalog(), CaptureOptions{
		HomeWorld: "Ravana",
		Region:    "Oceania",
		Overrides: map[int32]float64{36078: 42},
	})

	mats := snap.Items[0].Materials
	if mats[0].Override == nil || *mats[0].Override != 42 {
		t.Errorf("Override = %v, want 42", mats[0].Override)
	}
	if mats[1].Override != nil {
		t.Errorf("unrelated ingredient got override %v", *mats[1].Override)
	}
}

func TestCaptureSnapshot_CustomCacheWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	snap := c.CaptureSnapshot(context.Background(), captureCatalog(), CaptureOptions{
		Region:      "Oceania",
		CacheWindow: 3 * time.Minute,
	})
	if snap.CacheMs != (3 * time.Minute).Milliseconds() {
		t.Errorf("CacheMs = %d, want 180000", snap.CacheMs)
	}
}

func TestCaptureSnapshot_EmptyScopeSkipsFetch(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `{"medianPrice": 500}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	snap := c.CaptureSnapshot(context.Background(), captureCatalog(), CaptureOptions{
		Region: "Oceania",
	})

	// 1 output + 2 ingredients, region scope only.
	if hits != 3 {
		t.Errorf("server hit %d times, want 3 (home scope empty)", hits)
	}
	if !snap.Items[0].OutputHome.Empty() {
		t.Errorf("home stats should be empty without a home world")
	}
}
