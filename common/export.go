package common

//go:generate go run github.com/dmarkham/enumer -json -text -type Resampling -trimprefix Resampling -transform lower
//go:generate go run github.com/dmarkham/enumer -json -text -type DestinationKind -trimprefix Destination -transform lower

// Resampling method used to reproject the bands
// Nearest is the default of Earth Engine
type Resampling int

const (
	ResamplingNearest Resampling = iota
	ResamplingBilinear
	ResamplingBicubic
)

// DestinationKind is the storage where the exported files are written
type DestinationKind int

const (
	DestinationDrive DestinationKind = iota
	DestinationGCS
)
