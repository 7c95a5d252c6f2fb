package cmd

import (
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/bizsim/bizsim/sim"
)

// Define structs for the YAML world file
type WorldFile struct {
	Products            []ProductEntry `yaml:"products"`
	Regions             []RegionEntry  `yaml:"regions"`
	Channels            []ChannelEntry `yaml:"channels"`
	DemandNoise         BandEntry      `yaml:"demand_noise"`
	ImpressionsPerSpend BandEntry      `yaml:"impressions_per_spend"`
	DisruptionProb      float64        `yaml:"disruption_prob"`
	DisruptionCut       BandEntry      `yaml:"disruption_cut"`
	StartingStock       int            `yaml:"starting_stock"`
}

type ProductEntry struct {
	Name            string  `yaml:"name"`
	BaseDailyDemand int     `yaml:"base_daily_demand"`
	ProductionMin   int     `yaml:"production_min"`
	ProductionMax   int     `yaml:"production_max"`
	SellingPrice    float64 `yaml:"selling_price"`
	COGS            float64 `yaml:"cogs"`
	PackagingCost   float64 `yaml:"packaging_cost"`
	LogisticsCost   float64 `yaml:"logistics_cost"`
}

type RegionEntry struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

type ChannelEntry struct {
	Name      string    `yaml:"name"`
	Weight    float64   `yaml:"weight"`
	SpendBand BandEntry `yaml:"spend_band"`
	CTRBand   BandEntry `yaml:"ctr_band"`
	CVRBand   BandEntry `yaml:"cvr_band"`
}

type BandEntry struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (b BandEntry) band() sim.Band {
	return sim.Band{Min: b.Min, Max: b.Max}
}

// LoadWorld reads a YAML world file and converts it into a validated
// sim.World.
func LoadWorld(path string) (*sim.World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wf WorldFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, err
	}

	w := &sim.World{
		DemandNoise:         wf.DemandNoise.band(),
		ImpressionsPerSpend: wf.ImpressionsPerSpend.band(),
		DisruptionProb:      wf.DisruptionProb,
		DisruptionCut:       wf.DisruptionCut.band(),
		StartingStock:       wf.StartingStock,
	}
	for _, p := range wf.Products {
		w.Products = append(w.Products, sim.Product{
			Name:            p.Name,
			BaseDailyDemand: p.BaseDailyDemand,
			ProductionMin:   p.ProductionMin,
			ProductionMax:   p.ProductionMax,
			Econ: sim.UnitEconomics{
				SellingPrice:  p.SellingPrice,
				COGS:          p.COGS,
				PackagingCost: p.PackagingCost,
				LogisticsCost: p.LogisticsCost,
			},
		})
	}
	for _, r := range wf.Regions {
		w.Regions = append(w.Regions, sim.Region{Name: r.Name, Weight: r.Weight})
	}
	for _, c := range wf.Channels {
		w.Channels = append(w.Channels, sim.Channel{
			Name:      c.Name,
			Weight:    c.Weight,
			SpendBand: c.SpendBand.band(),
			CTRBand:   c.CTRBand.band(),
			CVRBand:   c.CVRBand.band(),
		})
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
