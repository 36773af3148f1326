package exporter

import (
	"context"
	"fmt"

	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/dispatcher"
	"github.com/airbusgeo/scene-exporter/interface/earthengine"
)

// DefaultFileFormat of the exported files
const DefaultFileFormat = "GEO_TIFF"

// ImageExporter submits export requests (implemented by earthengine.Client)
type ImageExporter interface {
	Export(ctx context.Context, req *earthengine.ExportImageRequest) (string, error)
}

// EarthEngine implements dispatcher.Exporter with the image:export endpoint
type EarthEngine struct {
	Client     ImageExporter
	FileFormat string // Default: GEO_TIFF
}

// ExportRequest returns the export request of the task. The exported grid is bounded by the region.
func (e *EarthEngine) ExportRequest(task dispatcher.ExportTask) (*earthengine.ExportImageRequest, error) {
	if err := task.Destination.Validate(); err != nil {
		return nil, fmt.Errorf("ExportRequest: %w", err)
	}
	format := e.FileFormat
	if format == "" {
		format = DefaultFileFormat
	}
	options := &earthengine.ImageFileExportOptions{FileFormat: format}
	switch task.Destination.Kind {
	case common.DestinationDrive:
		options.DriveDestination = &earthengine.DriveDestination{
			Folder:         task.Destination.Folder,
			FilenamePrefix: task.FileNamePrefix,
		}
	case common.DestinationGCS:
		options.GcsDestination = &earthengine.GcsDestination{
			Bucket:         task.Destination.Bucket,
			FilenamePrefix: task.FileNamePrefix,
		}
	}

	node, err := earthengine.ImageNode(task.Image)
	if err != nil {
		return nil, fmt.Errorf("ExportRequest.%w", err)
	}
	node = earthengine.ImageClipToBoundsAndScale(node, earthengine.Rectangle(task.Image.Clip), task.Scale)
	return &earthengine.ExportImageRequest{
		Description:       task.Description,
		Expression:        earthengine.NewExpression(node),
		FileExportOptions: options,
		Grid:              &earthengine.PixelGrid{CrsCode: task.CRS},
		MaxPixels:         task.MaxPixels,
		RequestID:         task.RequestID,
	}, nil
}

// Export implements dispatcher.Exporter
func (e *EarthEngine) Export(ctx context.Context, task dispatcher.ExportTask) (string, error) {
	req, err := e.ExportRequest(task)
	if err != nil {
		return "", fmt.Errorf("Export.%w", err)
	}
	return e.Client.Export(ctx, req)
}
