package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/airbusgeo/scene-exporter/catalog/entities"
	"github.com/airbusgeo/scene-exporter/interface/catalog"
	"github.com/airbusgeo/scene-exporter/service/log"
)

// ErrNoSceneFound is returned by SelectScene when no scene matches the query
var ErrNoSceneFound = errors.New("no scene found matching criteria")

// Catalog is the main class of this package
type Catalog struct {
	// Providers are queried in order until one succeeds
	Providers []catalog.ScenesProvider
}

// QueryConfig defines the collection and its filters
type QueryConfig struct {
	CollectionID  string
	Start         time.Time
	End           time.Time // exclusive
	MaxCloudCover float64   // strictly less than
}

// Query returns the lazy query over the collection. It never calls a remote API.
func (c *Catalog) Query(area entities.AreaOfInterest, cfg QueryConfig) (entities.ImageCollectionQuery, error) {
	if cfg.CollectionID == "" {
		return entities.ImageCollectionQuery{}, fmt.Errorf("Query: empty collection id")
	}
	if !cfg.Start.Before(cfg.End) {
		return entities.ImageCollectionQuery{}, fmt.Errorf("Query: empty date range [%s, %s[", cfg.Start.Format(time.RFC3339), cfg.End.Format(time.RFC3339))
	}
	return entities.ImageCollectionQuery{
		CollectionID:  cfg.CollectionID,
		Start:         cfg.Start,
		End:           cfg.End,
		Area:          area,
		MaxCloudCover: cfg.MaxCloudCover,
	}, nil
}

// SelectScene materializes the query and returns the scene with the lowest cloud cover.
// Returns ErrNoSceneFound if the filtered collection is empty.
func (c *Catalog) SelectScene(ctx context.Context, query entities.ImageCollectionQuery) (entities.SceneMetadata, error) {
	log.Logger(ctx).Sugar().Debugf("Search scenes of %s over %s from %s to %s with cloud cover < %v",
		query.CollectionID, query.Area, query.Start.Format("2006-01-02"), query.End.Format("2006-01-02"), query.MaxCloudCover)

	scenes, err := c.ScenesInventory(ctx, query)
	if err != nil {
		return entities.SceneMetadata{}, fmt.Errorf("SelectScene.%w", err)
	}
	log.Logger(ctx).Sugar().Debugf("%d scenes found", len(scenes))

	if len(scenes) == 0 {
		return entities.SceneMetadata{}, ErrNoSceneFound
	}
	return scenes[0], nil
}
