package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/airbusgeo/scene-exporter/catalog/entities"
	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/service/geometry"
	"github.com/airbusgeo/scene-exporter/service/log"
)

// Image describes a remote computation on a scene: its bands are selected (in order),
// clipped to an area, optionally resampled and reprojected.
// If Components is set, Bands are the names of the principal components of Components.Inputs.
// No pixel is ever fetched.
type Image struct {
	Scene      entities.SceneMetadata
	Bands      []string
	Clip       entities.AreaOfInterest
	CRS        string
	Scale      float64 // meters per pixel
	Resampling common.Resampling
	Components *Components
}

// Transform returns the image of the bands of the scene, clipped to the area and
// reprojected to crs at the given scale.
func Transform(ctx context.Context, scene entities.SceneMetadata, bands []string, area entities.AreaOfInterest, crs string, scale float64, resampling common.Resampling) (Image, error) {
	if len(bands) == 0 {
		return Image{}, fmt.Errorf("Transform: no band selected")
	}
	var missing []string
	for _, band := range bands {
		if !scene.HasBand(band) {
			missing = append(missing, band)
		}
	}
	if len(missing) > 0 {
		return Image{}, fmt.Errorf("Transform: bands [%s] not available in scene %s", strings.Join(missing, ","), scene.ID)
	}
	if !geometry.ValidCRSCode(crs) {
		return Image{}, fmt.Errorf("Transform: invalid crs code: %s", crs)
	}
	if scale <= 0 {
		return Image{}, fmt.Errorf("Transform: scale must be positive (got %v)", scale)
	}
	if !resampling.IsAResampling() {
		return Image{}, fmt.Errorf("Transform: unknown resampling %d", resampling)
	}

	img := Image{
		Scene:      scene,
		Bands:      append([]string(nil), bands...),
		Clip:       area,
		CRS:        crs,
		Scale:      scale,
		Resampling: resampling,
	}
	log.Logger(ctx).Sugar().Debugf("Transform %s: %s", scene.ID, strings.Join(img.Operations(), " > "))
	return img, nil
}

// SelectBand returns the single-band image of the given band
func (img Image) SelectBand(band string) (Image, error) {
	for _, b := range img.Bands {
		if b == band {
			single := img
			single.Bands = []string{band}
			return single, nil
		}
	}
	return Image{}, fmt.Errorf("SelectBand: band %s not in [%s]", band, strings.Join(img.Bands, ","))
}

// Operations lists the operations applied to the scene, in order
func (img Image) Operations() []string {
	bands := img.Bands
	if img.Components != nil {
		bands = img.Components.Inputs
	}
	ops := []string{
		"select(" + strings.Join(bands, ",") + ")",
		"clip(" + img.Clip.String() + ")",
	}
	if img.Resampling != common.ResamplingNearest {
		ops = append(ops, "resample("+img.Resampling.String()+")")
	}
	ops = append(ops, fmt.Sprintf("reproject(%s, %v)", img.CRS, img.Scale))
	if img.Components != nil {
		ops = append(ops, "project("+strings.Join(img.Bands, ",")+")")
	}
	return ops
}
