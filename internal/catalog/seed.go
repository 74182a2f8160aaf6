package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SeedIfEmpty 目录为空时写入内置展车（开发/演示环境首次启动用）。
func (s *Service) SeedIfEmpty(ctx context.Context) (int, error) {
	if s == nil || s.repo == nil {
		return 0, fmt.Errorf("service not initialized")
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count cars: %w", err)
	}
	if total > 0 {
		return 0, nil
	}

	for i := range seedCars {
		c := seedCars[i]
		c.ID = uuid.NewString()
		c.Available = true
		if err := s.repo.Create(ctx, &c); err != nil {
			return 0, fmt.Errorf("seed car %q: %w", c.Name, err)
		}
	}
	return len(seedCars), nil
}

// seedCars 内置展车数据。金额单位：分。
var seedCars = []Car{
	{
		Name:         "Supra Mk4",
		Brand:        "Toyota",
		PriceCents:   7500000,
		Category:     "Sports",
		Year:         1998,
		Mileage:      35000,
		FuelType:     "Gasoline",
		Transmission: "Manual",
		Description:  "The Toyota Supra Mk4 is a legendary Japanese sports car, renowned for its 2JZ-GTE engine, iconic styling, and immense tuning potential.",
		Features: StringList{
			"2JZ-GTE Twin-Turbo Engine",
			"Removable Targa Top",
			"Aftermarket Wheels",
			"Upgraded Suspension",
			"Performance Exhaust",
		},
		Specifications: StringMap{
			"engine":       "3.0L Twin-Turbo Inline-6 (2JZ-GTE)",
			"horsepower":   "276 hp (stock)",
			"torque":       "318 lb-ft",
			"acceleration": "0-60 mph in 4.6s",
			"drivetrain":   "Rear-Wheel Drive",
			"seating":      "4 passengers",
		},
		IsFeatured: true,
	},
	{
		Name:         "AMG GT",
		Brand:        "Mercedes-Benz",
		PriceCents:   11860000,
		Category:     "Sports",
		Year:         2024,
		Mileage:      0,
		FuelType:     "Gasoline",
		Transmission: "Automatic",
		Description:  "Pure driving dynamics with handcrafted AMG performance and luxury refinement.",
		Features: StringList{
			"AMG Performance Seats",
			"Carbon Fiber Trim",
			"Performance Exhaust",
			"Burmester Sound System",
		},
		Specifications: StringMap{
			"engine":       "4.0L V8 Biturbo",
			"horsepower":   "469 hp",
			"torque":       "465 lb-ft",
			"acceleration": "0-60 mph in 3.9s",
			"drivetrain":   "Rear-Wheel Drive",
			"seating":      "2 passengers",
		},
		IsFeatured: true,
	},
	{
		Name:         "Model S",
		Brand:        "Tesla",
		PriceCents:   8999000,
		Category:     "Electric",
		Year:         2024,
		Mileage:      0,
		FuelType:     "Electric",
		Transmission: "Automatic",
		Description:  "Long-range electric sedan with dual-motor all-wheel drive and minimalist interior.",
		Features: StringList{
			"Autopilot",
			"17-inch Touchscreen",
			"Glass Roof",
			"Over-the-air Updates",
		},
		Specifications: StringMap{
			"range":        "405 miles (EPA est.)",
			"acceleration": "0-60 mph in 3.1s",
			"drivetrain":   "Dual Motor AWD",
			"seating":      "5 passengers",
		},
		IsFeatured: false,
	},
	{
		Name:         "Land Cruiser",
		Brand:        "Toyota",
		PriceCents:   5795000,
		Category:     "SUV",
		Year:         2023,
		Mileage:      12000,
		FuelType:     "Gasoline",
		Transmission: "Automatic",
		Description:  "Full-size body-on-frame SUV with proven off-road capability and seating for seven.",
		Features: StringList{
			"Four-Wheel Drive",
			"Crawl Control",
			"Leather Interior",
			"Three-Row Seating",
		},
		Specifications: StringMap{
			"engine":     "3.5L Twin-Turbo V6",
			"horsepower": "409 hp",
			"drivetrain": "Four-Wheel Drive",
			"seating":    "7 passengers",
		},
		IsFeatured: false,
	},
}
