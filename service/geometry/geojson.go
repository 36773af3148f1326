package geometry

import (
	"fmt"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"
)

// UnmarshalGeometry decodes a geojson geometry, feature or featureCollection.
// FeatureCollections and geometryCollections are merged into a multipolygon.
func UnmarshalGeometry(data []byte) (geom.Geometry, error) {
	var g geojson.Geometry
	if err := g.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("UnmarshalGeometry: %w", err)
	}
	switch geo := g.Geometry.(type) {
	case geojson.FeatureCollection:
		var mp geom.MultiPolygon
		for _, f := range geo.Features {
			mergeMultiPolygons(f.Geometry.Geometry, &mp)
		}
		return mp, nil
	case geojson.Feature:
		return geo.Geometry.Geometry, nil
	default:
		return g.Geometry, nil
	}
}

func mergeMultiPolygons(g geom.Geometry, mp *geom.MultiPolygon) {
	switch g := g.(type) {
	case geom.MultiPolygon:
		*mp = append(*mp, g.Polygons()...)
	case geom.Polygon:
		*mp = append(*mp, g.LinearRings())
	case geom.Collection:
		for _, g := range g.Geometries() {
			mergeMultiPolygons(g, mp)
		}
	}
}

// BoundingBox returns the extent of the geojson geometry
func BoundingBox(data []byte) (geom.Extent, error) {
	g, err := UnmarshalGeometry(data)
	if err != nil {
		return geom.Extent{}, fmt.Errorf("BoundingBox.%w", err)
	}
	ext, err := geom.NewExtentFromGeometry(g)
	if err != nil {
		return geom.Extent{}, fmt.Errorf("BoundingBox: %w", err)
	}
	if Degenerate(*ext) {
		return *ext, fmt.Errorf("BoundingBox: degenerate geometry")
	}
	return *ext, nil
}
