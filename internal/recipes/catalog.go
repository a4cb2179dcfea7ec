// Package recipes holds the static recipe catalog the snapshot capture is
// built from. A built-in catalog ships with the binary; a recipes.json file
// in the data directory overrides it.
package recipes

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"xiv-profit/internal/engine"
)

// Definition is one catalog entry: a recipe plus its Universalis slug.
type Definition struct {
	engine.RecipeItem
	Slug string `json:"slug,omitempty"`
}

// URL returns the Universalis market page for the recipe output.
func (d Definition) URL() string {
	if d.Slug == "" {
		return fmt.Sprintf("https://universalis.app/market/%d", d.OutputItemID)
	}
	return "https://universalis.app/market/" + d.Slug
}

// Load reads recipes.json from dataDir, falling back to the built-in catalog
// when the file does not exist.
func Load(dataDir string) ([]Definition, error) {
	path := filepath.Join(dataDir, "recipes.json")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Builtin(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read recipe catalog: %w", err)
	}
	var defs []Definition
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse recipe catalog %s: %w", path, err)
	}
	if len(defs) == 0 {
		return Builtin(), nil
	}
	return defs, nil
}

func vendor(price float64) *float64 { return &price }

// Builtin returns the catalog compiled into the binary.
func Builtin() []Definition {
	return []Definition{
		{
			RecipeItem: engine.RecipeItem{
				ID: 37038, OutputItemID: 37038,
				Name: "Indagator's Alembic", Category: "Alchemist",
				Job: engine.JobDoH, Level: 90, Stars: 4, Yields: 1,
				HomeWorld: "Ravana", DataCenter: "Materia", Region: "Oceania",
				Ingredients: []engine.Ingredient{
					{ItemID: 37019, Name: "Grade 8 Tinctures Base", Quantity: 2},
					{ItemID: 37277, Name: "Dravanian Spring Water", Quantity: 1, TimedNode: true},
					{ItemID: 37276, Name: "Paldao Lumber", Quantity: 2},
					{ItemID: 37274, Name: "Hannish Fiber", Quantity: 1},
				},
			},
			Slug: "indagators-alembic",
		},
		{
			RecipeItem: engine.RecipeItem{
				ID: 37057, OutputItemID: 37057,
				Name: "Resplendent Saw", Category: "Carpenter",
				Job: engine.JobOmni, Level: 90, Stars: 4, Yields: 1, IsExpert: true,
				HomeWorld: "Leviathan", DataCenter: "Primal", Region: "North America",
				Ingredients: []engine.Ingredient{
					{ItemID: 37055, Name: "Resplendent Carpenter Component", Quantity: 6, TimedNode: true},
					{ItemID: 37276, Name: "Paldao Lumber", Quantity: 3},
					{ItemID: 36070, Name: "Ophiotauros Leather", Quantity: 2},
					{ItemID: 36076, Name: "Integral Log", Quantity: 4},
				},
			},
			Slug: "resplendent-saw",
		},
		{
			RecipeItem: engine.RecipeItem{
				ID: 36218, OutputItemID: 36218,
				Name: "Chondrite Ingot", Category: "Blacksmith",
				Job: engine.JobDoH, Level: 90, Stars: 2, Yields: 3,
				HomeWorld: "Balmung", DataCenter: "Crystal", Region: "North America",
				Ingredients: []engine.Ingredient{
					{ItemID: 36078, Name: "Chondrite", Quantity: 3},
					{ItemID: 36137, Name: "Manganese Ore", Quantity: 1, TimedNode: true},
					{ItemID: 36123, Name: "Cinderfoot Olive Oil", Quantity: 1, VendorPrice: vendor(1200)},
				},
			},
			Slug: "chondrite-ingot",
		},
		{
			RecipeItem: engine.RecipeItem{
				ID: 36114, OutputItemID: 36114,
				Name: "Rarefied Sykon Bavarois", Category: "Culinarian",
				Job: engine.JobDoH, Level: 80, Stars: 1, Yields: 3,
				HomeWorld: "Cerberus", DataCenter: "Chaos", Region: "Europe",
				Ingredients: []engine.Ingredient{
					{ItemID: 36109, Name: "Sykon", Quantity: 6, TimedNode: true},
					{ItemID: 36110, Name: "Palm Syrup", Quantity: 2},
					{ItemID: 36111, Name: "Sweet Cream", Quantity: 1, VendorPrice: vendor(400)},
					{ItemID: 36112, Name: "Gelatin", Quantity: 1, VendorPrice: vendor(300)},
				},
			},
			Slug: "rarefied-sykon-bavarois",
		},
		{
			RecipeItem: engine.RecipeItem{
				ID: 34101, OutputItemID: 34101,
				Name: "Facet Miqote Halfrobe", Category: "Weaver",
				Job: engine.JobDoH, Level: 78, Stars: 0, Yields: 1,
				HomeWorld: "Gilgamesh", DataCenter: "Aether", Region: "North America",
				Ingredients: []engine.Ingredient{
					{ItemID: 33913, Name: "Dwarven Cotton", Quantity: 4, TimedNode: true},
					{ItemID: 33910, Name: "Dwarven Cotton Boll", Quantity: 8},
					{ItemID: 33911, Name: "Dwarven Cotton Yarn", Quantity: 4},
					{ItemID: 33912, Name: "Dwarven Cotton Cloth", Quantity: 4},
				},
			},
			Slug: "facet-miqote-halfrobe",
		},
		{
			RecipeItem: engine.RecipeItem{
				ID: 31577, OutputItemID: 31577,
				Name: "Rarefied Titanoboa Skin", Category: "Leatherworker",
				Job: engine.JobDoH, Level: 72, Stars: 0, Yields: 1,
				HomeWorld: "Lich", DataCenter: "Light", Region: "Europe",
				Ingredients: []engine.Ingredient{
					{ItemID: 31575, Name: "Titanoboa Leather", Quantity: 3},
					{ItemID: 31573, Name: "Titanoboa Scale", Quantity: 8, TimedNode: true},
					{ItemID: 31574, Name: "Gum Arabic", Quantity: 2, VendorPrice: vendor(250)},
				},
			},
			Slug: "rarefied-titanoboa-skin",
		},
	}
}
