package common

import (
	"encoding/json"
	"fmt"
)

// Destination of an export
type Destination struct {
	Kind   DestinationKind `json:"kind" yaml:"kind" env:"KIND"`
	Folder string          `json:"folder,omitempty" yaml:"folder" env:"FOLDER"` // Drive folder
	Bucket string          `json:"bucket,omitempty" yaml:"bucket" env:"BUCKET"` // GCS bucket
}

// Validate checks that the destination defines the field required by its kind
func (d Destination) Validate() error {
	switch d.Kind {
	case DestinationDrive:
		if d.Folder == "" {
			return fmt.Errorf("drive destination requires a folder")
		}
	case DestinationGCS:
		if d.Bucket == "" {
			return fmt.Errorf("gcs destination requires a bucket")
		}
	default:
		return fmt.Errorf("unknown destination kind: %s", d.Kind)
	}
	return nil
}

func (d Destination) String() string {
	if d.Kind == DestinationGCS {
		return "gs://" + d.Bucket
	}
	return d.Kind.String() + ":" + d.Folder
}

// ExportTaskPayload is the message describing a submitted export (one per band)
type ExportTaskPayload struct {
	RunID       string          `json:"run_id"`
	SceneID     string          `json:"scene_id"`
	Band        string          `json:"band"`
	Name        string          `json:"name"`
	Date        string          `json:"date"`
	Destination Destination     `json:"destination"`
	Region      json.RawMessage `json:"region"` // GeoJSON in the region CRS
	RegionCRS   string          `json:"region_crs"`
	CRS         string          `json:"crs"`
	Scale       float64         `json:"scale"`
	MaxPixels   int64           `json:"max_pixels"`
	Operation   string          `json:"operation,omitempty"`
	Status      Status          `json:"status"`
	Message     string          `json:"message,omitempty"`
}
