package earthengine

import (
	"context"
	"fmt"

	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/processor"
)

// DefaultMaxPixels is the maximum number of pixels reduced by RegionStatistics
const DefaultMaxPixels int64 = 1e13

// Computer evaluates an expression (implemented by Client)
type Computer interface {
	Compute(ctx context.Context, expr *Expression, v interface{}) error
}

// ImageNode returns the expression node computing the image:
// select > clip > resample (unless nearest) > reproject [> projection on the principal components]
func ImageNode(img processor.Image) (*Node, error) {
	if img.Components == nil {
		return bandsNode(img, img.Bands), nil
	}
	base := bandsNode(img, img.Components.Inputs)
	var node *Node
	for _, band := range img.Bands {
		i, ok := img.Components.Index(band)
		if !ok {
			return nil, fmt.Errorf("ImageNode: %s is not a principal component", band)
		}
		pc := ComponentNode(base, img.Components, i)
		if node == nil {
			node = pc
		} else {
			node = ImageAddBands(node, pc)
		}
	}
	return node, nil
}

func bandsNode(img processor.Image, bands []string) *Node {
	node := ImageLoad(img.Scene.ID)
	node = ImageSelect(node, bands)
	node = ImageClip(node, Rectangle(img.Clip))
	if img.Resampling != common.ResamplingNearest {
		node = ImageResample(node, img.Resampling.String())
	}
	return ImageReproject(node, img.CRS, img.Scale)
}

// ComponentNode returns the single-band image of the i-th component, computed from the image of its inputs
func ComponentNode(inputs *Node, c *processor.Components, i int) *Node {
	node := ImageBinary("Image.subtract", inputs, ImageConstant(c.Means))
	node = ImageBinary("Image.divide", node, ImageConstant(c.Scales))
	node = ImageBinary("Image.multiply", node, ImageConstant(c.Vectors[i]))
	node = ImageReduce(node, Reducer("Reducer.sum"))
	return ImageRename(node, []string{c.Names[i]})
}

// StatisticsExpression returns the expression of the means and the covariance of the bands
// of the image over its clip area, at its scale
func StatisticsExpression(img processor.Image, maxPixels int64) *Expression {
	base := bandsNode(img, img.Bands)
	region := Rectangle(img.Clip)
	return NewExpression(Dictionary(map[string]*Node{
		"mean":       ImageReduceRegion(base, Reducer("Reducer.mean"), region, img.Scale, maxPixels),
		"covariance": ImageReduceRegion(ImageToArray(base), Reducer("Reducer.centeredCovariance"), region, img.Scale, maxPixels),
	}))
}

type statisticsInfo struct {
	Mean       map[string]*float64 `json:"mean"`
	Covariance struct {
		Array [][]float64 `json:"array"`
	} `json:"covariance"`
}

// RegionStatistics implements processor.StatisticsComputer
type RegionStatistics struct {
	Client    Computer
	MaxPixels int64 // Default: DefaultMaxPixels
}

// Statistics implements processor.StatisticsComputer
func (r *RegionStatistics) Statistics(ctx context.Context, img processor.Image) (processor.Statistics, error) {
	if img.Components != nil {
		return processor.Statistics{}, fmt.Errorf("Statistics: image is already projected")
	}
	maxPixels := r.MaxPixels
	if maxPixels == 0 {
		maxPixels = DefaultMaxPixels
	}
	info := statisticsInfo{}
	if err := r.Client.Compute(ctx, StatisticsExpression(img, maxPixels), &info); err != nil {
		return processor.Statistics{}, fmt.Errorf("Statistics.%w", err)
	}

	stats := processor.Statistics{
		Bands:      append([]string(nil), img.Bands...),
		Covariance: info.Covariance.Array,
	}
	for _, band := range img.Bands {
		mean := info.Mean[band]
		if mean == nil {
			return processor.Statistics{}, fmt.Errorf("Statistics: no valid pixel of band %s in the area", band)
		}
		stats.Means = append(stats.Means, *mean)
	}
	if len(stats.Covariance) != len(img.Bands) {
		return processor.Statistics{}, fmt.Errorf("Statistics: no covariance computed over the area")
	}
	return stats, nil
}
