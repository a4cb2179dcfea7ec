// Package servers holds the static world topology: regions contain data
// centers, data centers contain worlds. Lookups are exact-match and total;
// absence is an empty result, never an error.
package servers

// DataCenter is one entry of the static topology table.
type DataCenter struct {
	Name   string   `json:"name"`
	Region string   `json:"region"`
	Worlds []string `json:"worlds"`
}

var dataCenters = []DataCenter{
	{
		Name:   "Aether",
		Region: "North America",
		Worlds: []string{"Adamantoise", "Cactuar", "Faerie", "Gilgamesh", "Jenova", "Midgardsormr", "Sargatanas", "Siren"},
	},
	{
		Name:   "Primal",
		Region: "North America",
		Worlds: []string{"Behemoth", "Excalibur", "Exodus", "Famfrit", "Hyperion", "Lamia", "Leviathan", "Ultros"},
	},
	{
		Name:   "Crystal",
		Region: "North America",
		Worlds: []string{"Balmung", "Brynhildr", "Coeurl", "Diabolos", "Goblin", "Malboro", "Mateus", "Zalera"},
	},
	{
		Name:   "Dynamis",
		Region: "North America",
		Worlds: []string{"Halicarnassus", "Maduin", "Marilith", "Seraph"},
	},
	{
		Name:   "Chaos",
		Region: "Europe",
		Worlds: []string{"Cerberus", "Louisoix", "Moogle", "Omega", "Phantom", "Ragnarok", "Sagittarius", "Spriggan"},
	},
	{
		Name:   "Light",
		Region: "Europe",
		Worlds: []string{"Alpha", "Lich", "Odin", "Phoenix", "Raiden", "Shiva", "Twintania", "Zodiark"},
	},
	{
		Name:   "Shadow",
		Region: "Europe",
		Worlds: []string{"Innocence", "Pixie", "Titania", "Tycoon"},
	},
	{
		Name:   "Elemental",
		Region: "Japan",
		Worlds: []string{"Aegis", "Atomos", "Carbuncle", "Garuda", "Gungnir", "Kujata", "Tonberry", "Typhon"},
	},
	{
		Name:   "Gaia",
		Region: "Japan",
		Worlds: []string{"Alexander", "Bahamut", "Durandal", "Fenrir", "Ifrit", "Ridill", "Tiamat", "Ultima"},
	},
	{
		Name:   "Mana",
		Region: "Japan",
		Worlds: []string{"Anima", "Asura", "Chocobo", "Hades", "Ixion", "Masamune", "Pandaemonium", "Titan"},
	},
	{
		Name:   "Meteor",
		Region: "Japan",
		Worlds: []string{"Belias", "Mandragora", "Ramuh", "Shinryu", "Unicorn", "Valefor", "Yojimbo", "Zeromus"},
	},
	{
		Name:   "Materia",
		Region: "Oceania",
		Worlds: []string{"Bismarck", "Ravana", "Sephirot", "Sophia", "Zurvan"},
	},
	{
		Name:   "Korea",
		Region: "Korea",
		Worlds: []string{"Louisoix (KR)", "Moogle (KR)", "Omega (KR)", "Ragnarok (KR)"},
	},
	{
		Name:   "China",
		Region: "China",
		Worlds: []string{"LuXingNiao", "ShenYiZhiDi", "HuanYingQunDao", "MengYaChi", "YuZhouHeYin"},
	},
}

// DataCenters returns the full topology table.
func DataCenters() []DataCenter {
	return dataCenters
}

// Regions returns the distinct region names in table order.
func Regions() []string {
	var out []string
	seen := make(map[string]bool)
	for _, dc := range dataCenters {
		if !seen[dc.Region] {
			seen[dc.Region] = true
			out = append(out, dc.Region)
		}
	}
	return out
}

// RegionForDataCenter returns the region owning the named data center, or ""
// when the name is unknown. No fuzzy matching.
func RegionForDataCenter(dcName string) string {
	for _, dc := range dataCenters {
		if dc.Name == dcName {
			return dc.Region
		}
	}
	return ""
}

// WorldsForDataCenter returns the worlds of the named data center. An empty
// name returns all worlds across all data centers; an unknown name returns nil.
func WorldsForDataCenter(dcName string) []string {
	if dcName == "" {
		var all []string
		for _, dc := range dataCenters {
			all = append(all, dc.Worlds...)
		}
		return all
	}
	for _, dc := range dataCenters {
		if dc.Name == dcName {
			return dc.Worlds
		}
	}
	return nil
}

// DataCentersForRegion returns the data centers within a region; all data
// centers when region is empty.
func DataCentersForRegion(region string) []DataCenter {
	if region == "" {
		return dataCenters
	}
	var out []DataCenter
	for _, dc := range dataCenters {
		if dc.Region == region {
			out = append(out, dc)
		}
	}
	return out
}
