package sim

// DateLayout is the calendar-day format used in all output tables.
const DateLayout = "2006-01-02"

// Band is an inclusive range a uniform random value is drawn from.
type Band struct {
	Min float64
	Max float64
}

// UnitEconomics is the per-unit price and cost breakdown of a product.
type UnitEconomics struct {
	SellingPrice  float64
	COGS          float64
	PackagingCost float64
	LogisticsCost float64
}

// UnitCost is the total cost to produce and deliver one unit.
func (u UnitEconomics) UnitCost() float64 {
	return u.COGS + u.PackagingCost + u.LogisticsCost
}

// Product is one catalog entry. Static for the simulation's lifetime.
type Product struct {
	Name            string
	BaseDailyDemand int
	ProductionMin   int // inclusive
	ProductionMax   int // inclusive
	Econ            UnitEconomics
}

// Region is a sales region with a relative demand-share weight.
type Region struct {
	Name   string
	Weight float64
}

// Channel is a sales/marketing channel. SpendBand is the channel's
// inefficiency coefficient band: ad spend is drawn as revenue times a uniform
// value from it. CTRBand and CVRBand bound the funnel rates and must lie in
// (0, 1] so the impressions >= clicks >= conversions ordering holds.
type Channel struct {
	Name      string
	Weight    float64
	SpendBand Band
	CTRBand   Band
	CVRBand   Band
}

// World is the full static configuration of the simulated business.
type World struct {
	Products []Product
	Regions  []Region
	Channels []Channel

	// DemandNoise multiplies each product's base daily demand.
	DemandNoise Band
	// ImpressionsPerSpend converts ad spend into raw impressions.
	ImpressionsPerSpend Band
	// DisruptionProb is the per-product-day probability that production is
	// cut to a DisruptionCut fraction of the drawn volume (supply shock).
	DisruptionProb float64
	DisruptionCut  Band
	// StartingStock seeds each product's opening stock on day one of a
	// fresh history.
	StartingStock int
}

// DefaultWorld returns the built-in Nutrain catalog: three products, four
// regions, three channels, with the noise bands the generated histories use.
func DefaultWorld() *World {
	return &World{
		Products: []Product{
			{
				Name:            "Nutrain Vanilla",
				BaseDailyDemand: 120,
				ProductionMin:   105,
				ProductionMax:   135,
				Econ:            UnitEconomics{SellingPrice: 180, COGS: 82, PackagingCost: 10, LogisticsCost: 9},
			},
			{
				Name:            "Nutrain Choco Coffee",
				BaseDailyDemand: 90,
				ProductionMin:   80,
				ProductionMax:   105,
				Econ:            UnitEconomics{SellingPrice: 190, COGS: 88, PackagingCost: 11, LogisticsCost: 10},
			},
			{
				Name:            "Nutrain Banana Oats",
				BaseDailyDemand: 60,
				ProductionMin:   55,
				ProductionMax:   75,
				Econ:            UnitEconomics{SellingPrice: 170, COGS: 76, PackagingCost: 9, LogisticsCost: 9},
			},
		},
		Regions: []Region{
			{Name: "Bangalore", Weight: 0.28},
			{Name: "Mumbai", Weight: 0.30},
			{Name: "Delhi", Weight: 0.22},
			{Name: "Chennai", Weight: 0.20},
		},
		Channels: []Channel{
			{
				Name:      "Instagram",
				Weight:    0.40,
				SpendBand: Band{Min: 0.18, Max: 0.28},
				CTRBand:   Band{Min: 0.008, Max: 0.018},
				CVRBand:   Band{Min: 0.015, Max: 0.030},
			},
			{
				Name:      "Google",
				Weight:    0.38,
				SpendBand: Band{Min: 0.30, Max: 0.55},
				CTRBand:   Band{Min: 0.020, Max: 0.050},
				CVRBand:   Band{Min: 0.030, Max: 0.060},
			},
			{
				Name:      "Influencers",
				Weight:    0.22,
				SpendBand: Band{Min: 0.28, Max: 0.60},
				CTRBand:   Band{Min: 0.004, Max: 0.012},
				CVRBand:   Band{Min: 0.010, Max: 0.025},
			},
		},
		DemandNoise:         Band{Min: 0.85, Max: 1.15},
		ImpressionsPerSpend: Band{Min: 80, Max: 150},
		DisruptionProb:      0.12,
		DisruptionCut:       Band{Min: 0.2, Max: 0.5},
		StartingStock:       150,
	}
}

// Validate checks the world configuration. It returns a *ConfigurationError
// on the first problem found; a world that fails validation must not be
// simulated.
func (w *World) Validate() error {
	if len(w.Products) == 0 {
		return &ConfigurationError{Field: "products", Reason: "catalog is empty"}
	}
	if len(w.Regions) == 0 {
		return &ConfigurationError{Field: "regions", Reason: "no regions configured"}
	}
	if len(w.Channels) == 0 {
		return &ConfigurationError{Field: "channels", Reason: "no channels configured"}
	}

	seen := make(map[string]bool, len(w.Products))
	for _, p := range w.Products {
		if p.Name == "" {
			return &ConfigurationError{Field: "products", Reason: "product with empty name"}
		}
		if seen[p.Name] {
			return &ConfigurationError{Field: "products", Reason: "duplicate product " + p.Name}
		}
		seen[p.Name] = true
		if p.BaseDailyDemand <= 0 {
			return &ConfigurationError{Field: "products", Reason: p.Name + ": base daily demand must be positive"}
		}
		if p.ProductionMin < 0 || p.ProductionMax < p.ProductionMin {
			return &ConfigurationError{Field: "products", Reason: p.Name + ": invalid production range"}
		}
		if p.Econ.SellingPrice <= 0 {
			return &ConfigurationError{Field: "products", Reason: p.Name + ": selling price must be positive"}
		}
		if p.Econ.COGS < 0 || p.Econ.PackagingCost < 0 || p.Econ.LogisticsCost < 0 {
			return &ConfigurationError{Field: "products", Reason: p.Name + ": negative unit cost component"}
		}
	}

	var regionTotal float64
	for _, r := range w.Regions {
		if r.Weight < 0 {
			return &ConfigurationError{Field: "regions", Reason: r.Name + ": negative weight"}
		}
		regionTotal += r.Weight
	}
	if regionTotal <= 0 {
		return &ConfigurationError{Field: "regions", Reason: "weights must sum to a positive total"}
	}

	var channelTotal float64
	for _, c := range w.Channels {
		if c.Weight < 0 {
			return &ConfigurationError{Field: "channels", Reason: c.Name + ": negative weight"}
		}
		channelTotal += c.Weight
		if err := validateRateBand(c.Name+".ctr", c.CTRBand); err != nil {
			return err
		}
		if err := validateRateBand(c.Name+".cvr", c.CVRBand); err != nil {
			return err
		}
		if c.SpendBand.Min < 0 || c.SpendBand.Max < c.SpendBand.Min {
			return &ConfigurationError{Field: "channels", Reason: c.Name + ": invalid spend band"}
		}
	}
	if channelTotal <= 0 {
		return &ConfigurationError{Field: "channels", Reason: "weights must sum to a positive total"}
	}

	if w.DemandNoise.Min <= 0 || w.DemandNoise.Max < w.DemandNoise.Min {
		return &ConfigurationError{Field: "demand_noise", Reason: "band must be positive and ordered"}
	}
	if w.ImpressionsPerSpend.Min < 0 || w.ImpressionsPerSpend.Max < w.ImpressionsPerSpend.Min {
		return &ConfigurationError{Field: "impressions_per_spend", Reason: "invalid band"}
	}
	if w.DisruptionProb < 0 || w.DisruptionProb > 1 {
		return &ConfigurationError{Field: "disruption_prob", Reason: "must be in [0, 1]"}
	}
	if w.DisruptionCut.Min < 0 || w.DisruptionCut.Max < w.DisruptionCut.Min || w.DisruptionCut.Max > 1 {
		return &ConfigurationError{Field: "disruption_cut", Reason: "band must lie in [0, 1]"}
	}
	if w.StartingStock < 0 {
		return &ConfigurationError{Field: "starting_stock", Reason: "must be non-negative"}
	}
	return nil
}

func validateRateBand(field string, b Band) error {
	if b.Min <= 0 || b.Max < b.Min || b.Max > 1 {
		return &ConfigurationError{Field: field, Reason: "rate band must lie in (0, 1]"}
	}
	return nil
}

// ProductByName returns the catalog entry with the given name.
func (w *World) ProductByName(name string) (Product, bool) {
	for _, p := range w.Products {
		if p.Name == name {
			return p, true
		}
	}
	return Product{}, false
}
