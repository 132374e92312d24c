package layer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/epimaps/broadstreet/internal/geodata"
)

// Style holds the visual parameters for a layer's features.
type Style struct {
	Color       string  `yaml:"color" json:"color"`
	FillColor   string  `yaml:"fill_color" json:"fill_color"`
	FillOpacity float64 `yaml:"fill_opacity" json:"fill_opacity"`
	Radius      int     `yaml:"radius" json:"radius"`
	Weight      int     `yaml:"weight" json:"weight"`
	Icon        string  `yaml:"icon" json:"icon"`
}

// Config drives the construction of one layer.
type Config struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Cluster bool   `json:"cluster"`
	Label   string `json:"label"`
	Style   Style  `json:"style"`
}

// defaultStyles reproduces the classic dashboard styling: red death
// markers, blue pump pins, orange area fills.
var defaultStyles = map[string]Style{
	geodata.LayerDeaths: {Color: "red", FillColor: "red", FillOpacity: 0.7, Radius: 3},
	geodata.LayerPumps:  {Color: "blue", Icon: "tint"},
	geodata.LayerAreas:  {Color: "orange", FillColor: "orange", FillOpacity: 0.2, Weight: 2},
}

// defaultLabels are the fixed popup texts for point layers.
var defaultLabels = map[string]string{
	geodata.LayerDeaths: "Death Location",
	geodata.LayerPumps:  "Water Pump",
}

// DefaultConfigs returns the layer configurations in render order,
// optionally overridden by a style palette.
func DefaultConfigs(palette map[string]Style) []Config {
	names := []string{geodata.LayerDeaths, geodata.LayerPumps, geodata.LayerAreas}
	cfgs := make([]Config, 0, len(names))
	for _, name := range names {
		cfg := Config{
			Name:    name,
			Enabled: true,
			Cluster: name == geodata.LayerDeaths,
			Label:   defaultLabels[name],
			Style:   defaultStyles[name],
		}
		if s, ok := palette[name]; ok {
			cfg.Style = s
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs
}

// ResolveStyle returns the effective style for a layer config: the
// configured style when set, the layer default otherwise. Pure; called
// once per layer, never per feature.
func ResolveStyle(cfg Config) Style {
	if cfg.Style != (Style{}) {
		return cfg.Style
	}
	if s, ok := defaultStyles[cfg.Name]; ok {
		return s
	}
	return Style{Color: "gray", FillOpacity: 0.5, Radius: 3, Weight: 1}
}

// LoadPalette reads per-layer style overrides from a YAML file.
func LoadPalette(path string) (map[string]Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "layer: read palette %s", path)
	}

	palette := make(map[string]Style)
	if err := yaml.Unmarshal(data, &palette); err != nil {
		return nil, eris.Wrapf(err, "layer: parse palette %s", path)
	}
	return palette, nil
}
