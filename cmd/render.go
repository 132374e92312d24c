package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/epimaps/broadstreet/internal/geodata"
	"github.com/epimaps/broadstreet/internal/layer"
	"github.com/epimaps/broadstreet/internal/mapview"
)

var (
	renderOut        string
	renderGeoJSONDir string
	renderBasemap    string
	renderDeaths     bool
	renderPumps      bool
	renderAreas      bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Compose a map view once and write it as JSON",
	Long:  "Loads the sources, composes a single map view with the given toggles, and writes the view JSON to a file or stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		loader := geodata.NewLoader(configuredSources(), nil)
		composer, err := newComposer()
		if err != nil {
			return err
		}

		ds, err := loader.Load(ctx)
		if err != nil {
			return err
		}

		basemap := renderBasemap
		if basemap == "" {
			basemap = cfg.Map.DefaultBasemap
		}
		view, err := composer.Compose(ds, mapview.ControlState{
			ShowDeaths: renderDeaths,
			ShowPumps:  renderPumps,
			ShowArea:   renderAreas,
			Basemap:    basemap,
		})
		if err != nil {
			return err
		}

		if renderGeoJSONDir != "" {
			if err := os.MkdirAll(renderGeoJSONDir, 0o755); err != nil {
				return eris.Wrapf(err, "render: create %s", renderGeoJSONDir)
			}
			for _, l := range view.Layers {
				body, err := layer.EncodeGeoJSON(l)
				if err != nil {
					return err
				}
				out := filepath.Join(renderGeoJSONDir, l.Name+".geojson")
				if err := os.WriteFile(out, body, 0o644); err != nil {
					return eris.Wrapf(err, "render: write %s", out)
				}
			}
		}

		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return eris.Wrap(err, "render: encode view")
		}

		if renderOut == "" || renderOut == "-" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(renderOut, data, 0o644); err != nil {
			return eris.Wrapf(err, "render: write %s", renderOut)
		}
		fmt.Printf("wrote %s (%d layers)\n", renderOut, len(view.Layers))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "-", "output file (- for stdout)")
	renderCmd.Flags().StringVar(&renderGeoJSONDir, "geojson-dir", "", "also write one GeoJSON file per layer into this directory")
	renderCmd.Flags().StringVar(&renderBasemap, "basemap", "", "basemap id (default from config)")
	renderCmd.Flags().BoolVar(&renderDeaths, "deaths", true, "include the death locations layer")
	renderCmd.Flags().BoolVar(&renderPumps, "pumps", true, "include the water pumps layer")
	renderCmd.Flags().BoolVar(&renderAreas, "areas", true, "include the district areas layer")
	rootCmd.AddCommand(renderCmd)
}
