package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/service/geometry"
	"github.com/go-spatial/geom"
)

// AreaOfInterest is a rectangle in a given CRS
type AreaOfInterest struct {
	Extent    geom.Extent
	CRS       string
	Projected bool // Coordinates are given in the CRS projection (not geodesic)
}

// NewAreaOfInterest creates a non-degenerate rectangle from two corners
func NewAreaOfInterest(minX, minY, maxX, maxY float64, crs string, projected bool) (AreaOfInterest, error) {
	if !geometry.ValidCRSCode(crs) {
		return AreaOfInterest{}, fmt.Errorf("NewAreaOfInterest: invalid crs code: %s", crs)
	}
	ext, err := geometry.NewExtent(minX, minY, maxX, maxY)
	if err != nil {
		return AreaOfInterest{}, fmt.Errorf("NewAreaOfInterest.%w", err)
	}
	return AreaOfInterest{Extent: ext, CRS: crs, Projected: projected}, nil
}

// Polygon returns the rectangle as a polygon
func (a AreaOfInterest) Polygon() geom.Polygon {
	return geometry.Rectangle(a.Extent)
}

// WKT of the rectangle
func (a AreaOfInterest) WKT() string {
	return geometry.WKT(a.Polygon())
}

// GeoJSON of the rectangle (coordinates in the AOI's CRS)
func (a AreaOfInterest) GeoJSON() (json.RawMessage, error) {
	return geometry.GeoJSON(a.Polygon())
}

func (a AreaOfInterest) String() string {
	return fmt.Sprintf("%s %v", a.CRS, [4]float64(a.Extent))
}

// ImageCollectionQuery is a lazy, conjunctive filter over an image collection
type ImageCollectionQuery struct {
	CollectionID  string
	Start         time.Time // inclusive
	End           time.Time // exclusive
	Area          AreaOfInterest
	MaxCloudCover float64 // strictly less than
}

// Accept returns true if the scene passes the cloud-cover and date predicates
// (the spatial predicate is only evaluated remotely)
func (q ImageCollectionQuery) Accept(s SceneMetadata) bool {
	if !(s.CloudCover < q.MaxCloudCover) {
		return false
	}
	if !s.Acquired.IsZero() && (s.Acquired.Before(q.Start) || !s.Acquired.Before(q.End)) {
		return false
	}
	return true
}

// SceneMetadata identifies an image of the collection
type SceneMetadata struct {
	ID            string // Asset id (e.g. LANDSAT/LC09/C02/T1/LC09_218074_20220615)
	Acquired      time.Time
	CloudCover    float64
	Bands         []string
	Constellation common.Constellation
	Properties    map[string]interface{}
}

// HasBand returns true if the band is available (or if the available bands are unknown)
func (s SceneMetadata) HasBand(band string) bool {
	if len(s.Bands) == 0 {
		return true
	}
	for _, b := range s.Bands {
		if b == band {
			return true
		}
	}
	return false
}

// Less is the total order used to select a scene:
// cloud cover ascending, then acquisition date ascending, then ID
func (s SceneMetadata) Less(o SceneMetadata) bool {
	if s.CloudCover != o.CloudCover {
		return s.CloudCover < o.CloudCover
	}
	if !s.Acquired.Equal(o.Acquired) {
		return s.Acquired.Before(o.Acquired)
	}
	return s.ID < o.ID
}
