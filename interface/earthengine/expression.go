package earthengine

import (
	"time"

	"github.com/airbusgeo/scene-exporter/catalog/entities"
	"github.com/airbusgeo/scene-exporter/service/geometry"
)

// Node of an expression graph
type Node = ValueNode

// NewExpression returns the expression whose result is the given node
func NewExpression(result *Node) *Expression {
	return &Expression{
		Result: "0",
		Values: map[string]ValueNode{"0": *result},
	}
}

// Constant node (string, number, bool)
func Constant(v interface{}) *Node {
	return &Node{ConstantValue: v}
}

// Array node
func Array(values ...*Node) *Node {
	return &Node{ArrayValue: &ArrayValue{Values: values}}
}

// Strings returns an array of string constants
func Strings(s []string) *Node {
	values := make([]*Node, len(s))
	for i, v := range s {
		values[i] = Constant(v)
	}
	return Array(values...)
}

// Invoke returns a node calling the Earth Engine algorithm with the given arguments
func Invoke(function string, args map[string]*Node) *Node {
	return &Node{FunctionInvocationValue: &FunctionInvocation{
		FunctionName: function,
		Arguments:    values(args),
	}}
}

// Dictionary node
func Dictionary(entries map[string]*Node) *Node {
	return &Node{DictionaryValue: &DictionaryValue{Values: values(entries)}}
}

func values(nodes map[string]*Node) map[string]ValueNode {
	m := make(map[string]ValueNode, len(nodes))
	for k, v := range nodes {
		m[k] = *v
	}
	return m
}

// Numbers returns an array of number constants
func Numbers(f []float64) *Node {
	values := make([]*Node, len(f))
	for i, v := range f {
		values[i] = Constant(v)
	}
	return Array(values...)
}

// Date node (milliseconds since epoch)
func Date(t time.Time) *Node {
	return Invoke("Date", map[string]*Node{"value": Constant(t.UnixMilli())})
}

// Projection node
func Projection(crs string) *Node {
	return Invoke("Projection", map[string]*Node{"crs": Constant(crs)})
}

// Rectangle returns the geometry of the area of interest
func Rectangle(area entities.AreaOfInterest) *Node {
	corners := geometry.Corners(area.Extent)
	return Invoke("GeometryConstructors.Rectangle", map[string]*Node{
		"coordinates": Array(
			Array(Constant(corners[0][0]), Constant(corners[0][1])),
			Array(Constant(corners[1][0]), Constant(corners[1][1])),
		),
		"crs":      Projection(area.CRS),
		"geodesic": Constant(!area.Projected),
		"evenOdd":  Constant(true),
	})
}

// ImageCollectionLoad loads a collection by id
func ImageCollectionLoad(id string) *Node {
	return Invoke("ImageCollection.load", map[string]*Node{"id": Constant(id)})
}

// CollectionFilter applies the filter to the collection
func CollectionFilter(collection, filter *Node) *Node {
	return Invoke("Collection.filter", map[string]*Node{"collection": collection, "filter": filter})
}

// FilterDate keeps the images acquired in [start, end[
func FilterDate(start, end time.Time) *Node {
	return Invoke("Filter.dateRangeContains", map[string]*Node{
		"leftValue":  Invoke("DateRange", map[string]*Node{"start": Date(start), "end": Date(end)}),
		"rightField": Constant("system:time_start"),
	})
}

// FilterBounds keeps the images intersecting the geometry
func FilterBounds(geometry *Node) *Node {
	return Invoke("Filter.intersects", map[string]*Node{
		"leftField":  Constant(".all"),
		"rightValue": geometry,
	})
}

// FilterLessThan keeps the elements whose property is strictly less than the value
func FilterLessThan(property string, value float64) *Node {
	return Invoke("Filter.lessThan", map[string]*Node{
		"leftField":  Constant(property),
		"rightValue": Constant(value),
	})
}

// ImageLoad loads an image by asset id
func ImageLoad(id string) *Node {
	return Invoke("Image.load", map[string]*Node{"id": Constant(id)})
}

// ImageSelect keeps the bands, in the given order
func ImageSelect(image *Node, bands []string) *Node {
	return Invoke("Image.select", map[string]*Node{"input": image, "bandSelectors": Strings(bands)})
}

// ImageClip clips the image to the geometry
func ImageClip(image, geometry *Node) *Node {
	return Invoke("Image.clip", map[string]*Node{"input": image, "geometry": geometry})
}

// ImageResample sets the resampling mode (bilinear or bicubic)
func ImageResample(image *Node, mode string) *Node {
	return Invoke("Image.resample", map[string]*Node{"image": image, "mode": Constant(mode)})
}

// ImageReproject reprojects the image to the crs at the given scale
func ImageReproject(image *Node, crs string, scale float64) *Node {
	return Invoke("Image.reproject", map[string]*Node{
		"image": image,
		"crs":   Projection(crs),
		"scale": Constant(scale),
	})
}

// ImageClipToBoundsAndScale restricts the exported grid to the geometry at the given scale
func ImageClipToBoundsAndScale(image, geometry *Node, scale float64) *Node {
	return Invoke("Image.clipToBoundsAndScale", map[string]*Node{
		"input":    image,
		"geometry": geometry,
		"scale":    Constant(scale),
	})
}

// ImageConstant returns an image with one constant band per value
func ImageConstant(values []float64) *Node {
	return Invoke("Image.constant", map[string]*Node{"value": Numbers(values)})
}

// ImageBinary applies a band-wise operation (Image.add, Image.subtract, Image.multiply, Image.divide)
func ImageBinary(function string, image1, image2 *Node) *Node {
	return Invoke(function, map[string]*Node{"image1": image1, "image2": image2})
}

// ImageReduce reduces the bands of each pixel
func ImageReduce(image *Node, reducer *Node) *Node {
	return Invoke("Image.reduce", map[string]*Node{"image": image, "reducer": reducer})
}

// ImageRename renames the bands of the image
func ImageRename(image *Node, names []string) *Node {
	return Invoke("Image.rename", map[string]*Node{"input": image, "names": Strings(names)})
}

// ImageAddBands appends the bands of src to dst
func ImageAddBands(dst, src *Node) *Node {
	return Invoke("Image.addBands", map[string]*Node{"dstImg": dst, "srcImg": src})
}

// ImageToArray converts the bands of each pixel to a 1-D array
func ImageToArray(image *Node) *Node {
	return Invoke("Image.toArray", map[string]*Node{"image": image})
}

// Reducer returns the reducer with the given name (Reducer.mean, Reducer.sum...)
func Reducer(name string) *Node {
	return Invoke(name, nil)
}

// ImageReduceRegion applies the reducer to the pixels of the image in the geometry
func ImageReduceRegion(image, reducer, geometry *Node, scale float64, maxPixels int64) *Node {
	return Invoke("Image.reduceRegion", map[string]*Node{
		"image":     image,
		"reducer":   reducer,
		"geometry":  geometry,
		"scale":     Constant(scale),
		"maxPixels": Constant(maxPixels),
	})
}
