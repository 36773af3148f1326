package geometry

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"
	geomwkt "github.com/go-spatial/geom/encoding/wkt"
)

var crsCodeRe = regexp.MustCompile(`^[A-Z][A-Z0-9]*:[0-9]+$`)

// ValidCRSCode returns true if code is an authority code (e.g. EPSG:31983)
func ValidCRSCode(code string) bool {
	return crsCodeRe.MatchString(code)
}

// NewExtent creates the extent of the rectangle defined by two corners
func NewExtent(minX, minY, maxX, maxY float64) (geom.Extent, error) {
	ext := geom.Extent{minX, minY, maxX, maxY}
	if Degenerate(ext) {
		return ext, fmt.Errorf("NewExtent: degenerate rectangle [%v %v %v %v]", minX, minY, maxX, maxY)
	}
	return ext, nil
}

// Degenerate returns true if the extent has no area
func Degenerate(ext geom.Extent) bool {
	return !(ext[0] < ext[2]) || !(ext[1] < ext[3])
}

// Rectangle returns the closed polygon of the extent, counter-clockwise
func Rectangle(ext geom.Extent) geom.Polygon {
	return geom.Polygon{{
		{ext[0], ext[1]},
		{ext[2], ext[1]},
		{ext[2], ext[3]},
		{ext[0], ext[3]},
		{ext[0], ext[1]},
	}}
}

// Corners returns [[minx, miny], [maxx, maxy]]
func Corners(ext geom.Extent) [2][2]float64 {
	return [2][2]float64{{ext[0], ext[1]}, {ext[2], ext[3]}}
}

// WKT encodes the geometry
func WKT(g geom.Geometry) string {
	return geomwkt.MustEncode(g)
}

// GeoJSON encodes the geometry
func GeoJSON(g geom.Geometry) (json.RawMessage, error) {
	b, err := json.Marshal(geojson.Geometry{Geometry: g})
	if err != nil {
		return nil, fmt.Errorf("GeoJSON: %w", err)
	}
	return b, nil
}
