package main

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// Synthetic data tables for -generate mode. The output schema matches the
// CSV export fields, so generated and exported records load identically.

type cityInfo struct {
	city, country, currency string
}

var cities = []cityInfo{
	{"Paris", "France", "EUR"},
	{"Rome", "Italy", "EUR"},
	{"Barcelona", "Spain", "EUR"},
	{"Lisbon", "Portugal", "EUR"},
	{"Amsterdam", "Netherlands", "EUR"},
	{"Vienna", "Austria", "EUR"},
	{"Prague", "Czech Republic", "CZK"},
	{"Budapest", "Hungary", "HUF"},
	{"London", "United Kingdom", "GBP"},
	{"Edinburgh", "United Kingdom", "GBP"},
	{"New York", "United States", "USD"},
	{"San Francisco", "United States", "USD"},
	{"Chicago", "United States", "USD"},
	{"Toronto", "Canada", "CAD"},
	{"Mexico City", "Mexico", "MXN"},
	{"Buenos Aires", "Argentina", "ARS"},
	{"Tokyo", "Japan", "JPY"},
	{"Kyoto", "Japan", "JPY"},
	{"Seoul", "South Korea", "KRW"},
	{"Singapore", "Singapore", "SGD"},
	{"Bangkok", "Thailand", "THB"},
	{"Sydney", "Australia", "AUD"},
	{"Cape Town", "South Africa", "ZAR"},
	{"Istanbul", "Turkey", "TRY"},
	{"Dubai", "United Arab Emirates", "AED"},
	{"Reykjavik", "Iceland", "ISK"},
}

var categories = []string{
	"Museum", "Art Gallery", "Park", "Botanical Garden", "Cathedral",
	"Castle", "Palace", "Monument", "Observation Deck", "Aquarium",
	"Zoo", "Market", "Theatre", "Bridge", "Historic District",
}

var nameAdjectives = []string{
	"Royal", "National", "Grand", "Imperial", "Golden", "Crystal",
	"Harbor", "Riverside", "Old Town", "Summit", "Victoria", "Meridian",
	"Aurora", "Northern", "Heritage", "Central",
}

var streets = []string{
	"King Street", "Market Square", "Harbor Road", "Castle Hill",
	"Garden Lane", "Station Avenue", "Old Bridge Way", "Cathedral Close",
	"Liberty Boulevard", "Museum Quarter",
}

var hourPatterns = []string{
	"09:00-18:00",
	"10:00-20:00",
	"08:30-17:30",
	"10:00-22:00",
	"07:00-19:00",
	"24/7",
	"Closed Mondays, 09:00-17:00",
	"Weekends only, 10:00-16:00",
}

var activities = []string{
	"Join a guided tour and learn about the site's history.",
	"Enjoy panoramic views over the city.",
	"Browse the gift shop for local crafts.",
	"Take photos at the famous viewpoints.",
	"Attend a seasonal exhibition or event.",
	"Relax at the cafe on the grounds.",
	"Follow the self-guided audio route.",
	"Watch the evening illumination.",
	"Explore the surrounding old quarter on foot.",
	"Try street food from nearby stalls.",
}

// freeCategories are typically open access, so most generated entries are free.
var freeCategories = map[string]bool{
	"Park": true, "Bridge": true, "Market": true,
	"Monument": true, "Historic District": true,
}

// generateAttractions produces n synthetic attractions with unique names.
func generateAttractions(n int, rng *rand.Rand) []domain.Attraction {
	used := make(map[string]struct{}, n)
	out := make([]domain.Attraction, 0, n)

	for i := 0; i < n; i++ {
		ci := cities[rng.Intn(len(cities))]
		category := categories[rng.Intn(len(categories))]
		name := uniqueName(rng, category, ci.city, used, i)

		desc := pickTwo(rng, activities)

		out = append(out, domain.Attraction{
			ID:          attractionID(name, ci.city),
			Name:        name,
			City:        ci.city,
			Category:    category,
			Location:    ci.city + ", " + ci.country,
			Address:     fmt.Sprintf("%d %s", 1+rng.Intn(200), streets[rng.Intn(len(streets))]),
			Price:       priceFor(rng, category),
			Currency:    ci.currency,
			OpenHours:   hourPatterns[rng.Intn(len(hourPatterns))],
			Description: desc,
		})
	}
	return out
}

// uniqueName composes "<Adjective> <Category>" or "<Category> of <City>" and
// retries on collision. After a few attempts it appends a counter so large n
// never stalls on the finite name space.
func uniqueName(rng *rand.Rand, category, city string, used map[string]struct{}, i int) string {
	for attempt := 0; attempt < 8; attempt++ {
		var name string
		if rng.Intn(3) == 0 {
			name = category + " of " + city
		} else {
			name = nameAdjectives[rng.Intn(len(nameAdjectives))] + " " + category
		}
		key := name + "|" + city
		if _, taken := used[key]; !taken {
			used[key] = struct{}{}
			return name
		}
	}
	name := fmt.Sprintf("%s %s %d", nameAdjectives[rng.Intn(len(nameAdjectives))], category, i)
	used[name+"|"+city] = struct{}{}
	return name
}

func priceFor(rng *rand.Rand, category string) float64 {
	if freeCategories[category] && rng.Intn(4) != 0 {
		return 0
	}
	return math.Round((4+rng.Float64()*36)*100) / 100
}

func pickTwo(rng *rand.Rand, items []string) string {
	a := rng.Intn(len(items))
	b := rng.Intn(len(items) - 1)
	if b >= a {
		b++
	}
	return items[a] + " " + items[b]
}
