package memory

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/petstore-core/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	name, category, description, image, price string
	stock                                     int
}

var aquariumCatalog = []seedProduct{
	{"Red Guppy Male - Premium", catalog.CategoryGuppies, "Beautiful red male guppy with full tail fin and vibrant colors", "red-guppy.jpg", "5.99", 25},
	{"Blue Guppy Male - Platinum", catalog.CategoryGuppies, "Stunning blue male guppy with platinum highlights", "blue-guppy.jpg", "6.49", 18},
	{"Black Lace Guppy Female", catalog.CategoryGuppies, "Elegant black female guppy perfect for breeding", "black-guppy.jpg", "4.99", 30},
	{"Yellow Guppy Pair", catalog.CategoryGuppies, "Bright yellow male and female pair for breeding", "yellow-guppy.jpg", "9.99", 12},
	{"Premium Guppy Food - Flakes", catalog.CategoryFishFood, "High-quality nutritious flakes for guppies and tropical fish", "food-flakes.jpg", "8.99", 50},
	{"Guppy Fry Food - Micro Pellets", catalog.CategoryFishFood, "Special micro pellets for guppy fry and small fish", "fry-food.jpg", "12.99", 35},
	{"Color Enhancement Pellets", catalog.CategoryFishFood, "Pellets with color enhancers to brighten guppy colors", "color-pellets.jpg", "14.99", 28},
	{"10 Gallon Aquarium Starter Kit", catalog.CategoryEquipment, "Complete 10-gallon tank with filter, heater, and light", "tank-10g.jpg", "49.99", 15},
	{"Submersible Tank Filter", catalog.CategoryEquipment, "Efficient internal filter for 20-40 gallon tanks", "filter.jpg", "24.99", 22},
	{"Aquarium Heater - 50W", catalog.CategoryEquipment, "Adjustable 50W heater for maintaining optimal temperature", "heater.jpg", "19.99", 40},
	{"Aquatic Plant - Cabomba", catalog.CategoryDecorations, "Live cabomba plant for tank decoration and oxygen production", "cabomba.jpg", "5.99", 60},
	{"Driftwood - Large", catalog.CategoryDecorations, "Natural driftwood for tank decoration and hiding spots", "driftwood.jpg", "17.99", 8},
	{"Fish Antibiotic Treatment", catalog.CategoryMedicines, "Effective antibiotic treatment for fish diseases", "antibiotic.jpg", "16.99", 20},
}

const imageBaseURL = "https://aquaworld.com/images/"

// SeedCatalog loads the demo aquarium catalog and returns how many products were added.
func SeedCatalog(ctx context.Context, repo catalog.Repository) (int, error) {
	for i, s := range aquariumCatalog {
		price, err := decimal.NewFromString(s.price)
		if err != nil {
			return i, fmt.Errorf("seed %q: %w", s.name, err)
		}
		p, err := catalog.New(s.name, s.category, s.description, price, s.stock)
		if err != nil {
			return i, fmt.Errorf("seed %q: %w", s.name, err)
		}
		p.ImageURL = imageBaseURL + s.image
		if err := repo.Insert(ctx, p); err != nil {
			return i, fmt.Errorf("seed %q: %w", s.name, err)
		}
	}
	return len(aquariumCatalog), nil
}
