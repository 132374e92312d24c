package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/epimaps/broadstreet/internal/geodata"
	"github.com/epimaps/broadstreet/internal/mapview"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dataset statistics",
	Long:  "Loads the configured sources and prints record counts, the computed center, and the visible extent.",
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		view, err := composer.Compose(ds, mapview.ControlState{
			ShowDeaths: true,
			ShowPumps:  true,
			ShowArea:   true,
			Basemap:    cfg.Map.DefaultBasemap,
		})
		if err != nil {
			return err
		}

		p := message.NewPrinter(language.English)
		p.Println("=== Dataset Status ===")
		p.Printf("Death locations:  %d\n", view.DeathCount)
		p.Printf("Water pumps:      %d\n", view.PumpCount)
		p.Printf("District areas:   %d\n", len(ds.Areas))
		p.Println()
		p.Printf("Center:           %.4f, %.4f (zoom %d)\n", view.Center.Lat, view.Center.Lon, view.Zoom)
		if b := view.Bounds; b != nil {
			p.Printf("Extent:           %.4f, %.4f to %.4f, %.4f\n", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
		}
		p.Println()

		p.Println("Basemaps:")
		for _, b := range mapview.Basemaps() {
			marker := " "
			if b.ID == cfg.Map.DefaultBasemap {
				marker = "*"
			}
			p.Printf("  %s %-10s %s\n", marker, b.ID, b.Name)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
