package main

import (
	"github.com/epimaps/broadstreet/internal/geodata"
	"github.com/epimaps/broadstreet/internal/layer"
	"github.com/epimaps/broadstreet/internal/mapview"
)

// configuredSources maps the data config onto loader sources.
func configuredSources() geodata.Sources {
	return geodata.Sources{
		Deaths: geodata.Source{Path: cfg.Data.DeathsPath, CRS: cfg.Data.DeathsCRS},
		Pumps:  geodata.Source{Path: cfg.Data.PumpsPath, CRS: cfg.Data.PumpsCRS},
		Areas:  geodata.Source{Path: cfg.Data.AreasPath, CRS: cfg.Data.AreasCRS},
	}
}

// newComposer builds the composer, loading the optional style palette.
func newComposer() (*mapview.Composer, error) {
	var palette map[string]layer.Style
	if cfg.Map.StylesPath != "" {
		p, err := layer.LoadPalette(cfg.Map.StylesPath)
		if err != nil {
			return nil, err
		}
		palette = p
	}
	return mapview.NewComposer(cfg.Map.DefaultZoom, palette), nil
}
