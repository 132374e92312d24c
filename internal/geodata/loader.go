package geodata

import (
	"context"
	"strings"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/epimaps/broadstreet/internal/crs"
	"github.com/epimaps/broadstreet/internal/fetcher"
)

// ErrLoad marks a missing or malformed source file.
var ErrLoad = eris.New("load error")

// Source identifies one raw input: a file path and its declared
// coordinate reference system.
type Source struct {
	Path string
	CRS  string
}

// Sources names the three raw inputs of a dataset.
type Sources struct {
	Deaths Source
	Pumps  Source
	Areas  Source
}

// Signature returns the cache key for this source combination.
func (s Sources) Signature() string {
	return strings.Join([]string{s.Deaths.Path, s.Pumps.Path, s.Areas.Path}, "|")
}

// LoadObserver receives load and cache events, typically backed by
// Prometheus metrics.
type LoadObserver interface {
	ObserveLoad(d time.Duration, deaths, pumps, areas int)
	ObserveCache(hit bool)
}

// Loader reads the point workbooks and the boundary shapefile into a
// normalized Dataset, memoized through an explicit cache.
type Loader struct {
	sources  Sources
	cache    *Cache
	observer LoadObserver
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithObserver wires load and cache events to an observer.
func WithObserver(obs LoadObserver) LoaderOption {
	return func(l *Loader) {
		l.observer = obs
	}
}

// NewLoader creates a Loader over the given sources. The cache may be
// nil, in which case every Load re-reads the files.
func NewLoader(sources Sources, cache *Cache, opts ...LoaderOption) *Loader {
	l := &Loader{sources: sources, cache: cache}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load produces the normalized Dataset, serving from cache when the
// sources were already read. The three sources load in parallel; the
// returned dataset is fully normalized.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	key := l.sources.Signature()
	if l.cache != nil {
		ds, ok := l.cache.Get(key)
		if l.observer != nil {
			l.observer.ObserveCache(ok)
		}
		if ok {
			return ds, nil
		}
	}

	log := zap.L().With(zap.String("component", "geodata.loader"))
	start := time.Now()

	ds := &Dataset{}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := loadPointSource(l.sources.Deaths)
		if err != nil {
			return err
		}
		ds.Deaths = recs
		return nil
	})
	g.Go(func() error {
		recs, err := loadPointSource(l.sources.Pumps)
		if err != nil {
			return err
		}
		ds.Pumps = recs
		return nil
	})
	g.Go(func() error {
		recs, err := loadAreaSource(l.sources.Areas)
		if err != nil {
			return err
		}
		ds.Areas = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	log.Info("dataset loaded",
		zap.Int("deaths", ds.DeathCount()),
		zap.Int("pumps", ds.PumpCount()),
		zap.Int("areas", len(ds.Areas)),
		zap.Duration("elapsed", elapsed),
	)
	if l.observer != nil {
		l.observer.ObserveLoad(elapsed, ds.DeathCount(), ds.PumpCount(), len(ds.Areas))
	}

	if l.cache != nil {
		l.cache.Put(key, ds)
	}
	return ds, nil
}

// Reload drops any cached dataset for these sources and loads fresh.
func (l *Loader) Reload(ctx context.Context) (*Dataset, error) {
	if l.cache != nil {
		l.cache.Invalidate(l.sources.Signature())
	}
	return l.Load(ctx)
}

// loadPointSource reads one XLSX point table into normalized records.
//
// Column convention: the workbooks store latitude in column "x" and
// longitude in column "y". The swap matches how the dataset was
// authored; reading the columns literally places every marker in the
// wrong hemisphere.
func loadPointSource(src Source) ([]PointRecord, error) {
	table, err := fetcher.ReadXLSXTable(src.Path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, eris.Wrapf(ErrLoad, "geodata: read point source %s: %v", src.Path, err)
	}

	xIdx := table.ColumnIndex("x")
	yIdx := table.ColumnIndex("y")
	if xIdx < 0 || yIdx < 0 {
		return nil, eris.Wrapf(ErrLoad, "geodata: %s is missing x/y coordinate columns", src.Path)
	}

	records := make([]PointRecord, 0, len(table.Rows))
	for i := range table.Rows {
		lat, err := table.Float(i, xIdx)
		if err != nil {
			return nil, eris.Wrapf(ErrLoad, "geodata: %s row %d: %v", src.Path, i+2, err)
		}
		lon, err := table.Float(i, yIdx)
		if err != nil {
			return nil, eris.Wrapf(ErrLoad, "geodata: %s row %d: %v", src.Path, i+2, err)
		}

		pt := geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326)
		normalized, err := crs.Normalize(pt, src.CRS)
		if err != nil {
			return nil, err
		}

		var fields []Field
		for col, name := range table.Header {
			if col == xIdx || col == yIdx {
				continue
			}
			fields = append(fields, Field{Name: strings.TrimSpace(name), Value: table.Cell(i, col)})
		}

		records = append(records, PointRecord{
			Geom:   normalized.(*geom.Point),
			Fields: fields,
		})
	}

	return records, nil
}

// loadAreaSource reads the boundary shapefile into normalized area
// records, carrying every DBF attribute in field order.
func loadAreaSource(src Source) ([]AreaRecord, error) {
	reader, err := shp.Open(src.Path)
	if err != nil {
		return nil, eris.Wrapf(ErrLoad, "geodata: open area source %s: %v", src.Path, err)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}

	var records []AreaRecord
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			return nil, eris.Wrapf(ErrLoad, "geodata: %s contains a non-polygon shape", src.Path)
		}

		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			return nil, eris.Wrapf(ErrLoad, "geodata: %s contains an empty polygon", src.Path)
		}

		normalized, err := crs.Normalize(mp, src.CRS)
		if err != nil {
			return nil, err
		}

		attrs := make([]Field, 0, len(names))
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			attrs = append(attrs, Field{Name: name, Value: val})
		}

		records = append(records, AreaRecord{
			Geom:   normalized.(*geom.MultiPolygon),
			Fields: attrs,
		})
	}

	return records, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a
// geom.MultiPolygon, one single-ring polygon per part.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("geodata: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("geodata: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
