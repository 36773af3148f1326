package processor

import (
	"context"
	"reflect"
	"testing"

	"github.com/airbusgeo/scene-exporter/catalog/entities"
	"github.com/airbusgeo/scene-exporter/common"
)

func testArea(t *testing.T) entities.AreaOfInterest {
	aoi, err := entities.NewAreaOfInterest(578524, 7774048, 609237, 7800187, "EPSG:31983", true)
	if err != nil {
		t.Fatal(err)
	}
	return aoi
}

var testScene = entities.SceneMetadata{
	ID:         "LANDSAT/LC09/C02/T1/LC09_218074_20220615",
	CloudCover: 3.2,
	Bands:      []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8", "B9", "B10", "B11", "QA_PIXEL"},
}

func TestTransformKeepsBandOrder(t *testing.T) {
	bands := []string{"B9", "B1", "B4"}
	img, err := Transform(context.Background(), testScene, bands, testArea(t), "EPSG:31983", 30, common.ResamplingNearest)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(img.Bands, bands) {
		t.Errorf("expecting %v, found %v", bands, img.Bands)
	}
	// Input is not aliased
	bands[0] = "B2"
	if img.Bands[0] != "B9" {
		t.Errorf("image bands modified by the caller")
	}
	if img.CRS != "EPSG:31983" || img.Scale != 30 || img.Clip.CRS != "EPSG:31983" {
		t.Errorf("unexpected image: %+v", img)
	}
}

func TestTransformErrors(t *testing.T) {
	area := testArea(t)
	tests := []struct {
		name  string
		bands []string
		crs   string
		scale float64
	}{
		{"no band", nil, "EPSG:31983", 30},
		{"missing band", []string{"B1", "B12"}, "EPSG:31983", 30},
		{"invalid crs", []string{"B1"}, "31983", 30},
		{"invalid scale", []string{"B1"}, "EPSG:31983", 0},
	}
	for _, tt := range tests {
		if _, err := Transform(context.Background(), testScene, tt.bands, area, tt.crs, tt.scale, common.ResamplingNearest); err == nil {
			t.Errorf("%s: expecting error", tt.name)
		}
	}
}

func TestTransformUnknownBands(t *testing.T) {
	scene := entities.SceneMetadata{ID: "LC09_218074_20220615"}
	if _, err := Transform(context.Background(), scene, []string{"B1"}, testArea(t), "EPSG:31983", 30, common.ResamplingNearest); err != nil {
		t.Errorf("unexpected error when the available bands are not listed: %v", err)
	}
}

func TestOperations(t *testing.T) {
	img, err := Transform(context.Background(), testScene, []string{"B1", "B2"}, testArea(t), "EPSG:32723", 30, common.ResamplingNearest)
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		"select(B1,B2)",
		"clip(EPSG:31983 [578524 7.774048e+06 609237 7.800187e+06])",
		"reproject(EPSG:32723, 30)",
	}
	if ops := img.Operations(); !reflect.DeepEqual(ops, expected) {
		t.Errorf("expecting %v, found %v", expected, ops)
	}

	img.Resampling = common.ResamplingBilinear
	if ops := img.Operations(); len(ops) != 4 || ops[2] != "resample(bilinear)" {
		t.Errorf("expecting resample before reproject, found %v", ops)
	}
}

func TestSelectBand(t *testing.T) {
	img, err := Transform(context.Background(), testScene, []string{"B1", "B2"}, testArea(t), "EPSG:31983", 30, common.ResamplingNearest)
	if err != nil {
		t.Fatal(err)
	}
	single, err := img.SelectBand("B2")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(single.Bands, []string{"B2"}) || len(img.Bands) != 2 {
		t.Errorf("unexpected bands: %v / %v", single.Bands, img.Bands)
	}
	if _, err := img.SelectBand("B3"); err == nil {
		t.Error("expecting error")
	}
}
