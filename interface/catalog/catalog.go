package catalog

import (
	"context"

	"github.com/airbusgeo/scene-exporter/catalog/entities"
)

// ScenesProvider materializes a collection query
type ScenesProvider interface {
	// SearchScenes returns the metadata of the scenes matching the query, in no particular order.
	// An empty result is not an error.
	SearchScenes(ctx context.Context, query entities.ImageCollectionQuery) ([]entities.SceneMetadata, error)
}
