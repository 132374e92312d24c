package tiles

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/epimaps/broadstreet/internal/mapview"
)

// Proxy fetches raster basemap tiles from the catalog upstreams,
// cache-first, with a shared rate limit towards the tile servers.
type Proxy struct {
	client  *http.Client
	cache   *Cache
	limiter *rate.Limiter

	// lookup resolves a basemap id; swapped out in tests.
	lookup func(string) (mapview.Basemap, error)
}

// NewProxy creates a basemap tile proxy. The cache may be nil; rps
// bounds the upstream request rate.
func NewProxy(cache *Cache, rps float64) *Proxy {
	if rps <= 0 {
		rps = 10
	}
	return &Proxy{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		lookup:  mapview.LookupBasemap,
	}
}

// Tile is one fetched raster tile.
type Tile struct {
	Data        []byte
	ContentType string
	FromCache   bool
}

// Fetch retrieves one tile for a catalog basemap, from cache or
// upstream. Unknown basemap ids fail with mapview.ErrConfig.
func (p *Proxy) Fetch(ctx context.Context, basemapID string, z, x, y int) (Tile, error) {
	basemap, err := p.lookup(basemapID)
	if err != nil {
		return Tile{}, err
	}

	if p.cache != nil {
		if cached := p.cache.Get(basemapID, z, x, y); cached != nil {
			return Tile{Data: cached, ContentType: contentType(basemap.URL), FromCache: true}, nil
		}
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return Tile{}, eris.Wrap(err, "tiles: rate limit wait")
	}

	url := expandTileURL(basemap.URL, z, x, y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Tile{}, eris.Wrap(err, "tiles: create basemap request")
	}
	req.Header.Set("User-Agent", "broadstreet/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return Tile{}, eris.Wrap(err, "tiles: fetch basemap tile")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Tile{}, eris.Errorf("tiles: upstream returned %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Tile{}, eris.Wrap(err, "tiles: read basemap tile body")
	}

	if p.cache != nil {
		p.cache.Put(basemapID, z, x, y, data)
	}

	zap.L().Debug("tiles: fetched basemap tile", zap.String("url", url), zap.Int("bytes", len(data)))
	return Tile{Data: data, ContentType: contentType(basemap.URL)}, nil
}

// Stats exposes the underlying cache statistics.
func (p *Proxy) Stats() CacheStats {
	if p.cache == nil {
		return CacheStats{}
	}
	return p.cache.Stats()
}

// expandTileURL substitutes {z}/{x}/{y} in a catalog URL template.
func expandTileURL(template string, z, x, y int) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	)
	return r.Replace(template)
}

// contentType derives the tile MIME type from the upstream template.
func contentType(template string) string {
	switch {
	case strings.HasSuffix(template, ".png"):
		return "image/png"
	case strings.HasSuffix(template, ".jpg"), strings.HasSuffix(template, ".jpeg"):
		return "image/jpeg"
	default:
		// Esri imagery tiles have no extension in the URL.
		return "image/jpeg"
	}
}
