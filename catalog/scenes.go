package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/airbusgeo/scene-exporter/catalog/entities"
	"github.com/airbusgeo/scene-exporter/service"
	"github.com/airbusgeo/scene-exporter/service/log"
)

// ScenesInventory lists the scenes matching the query, sorted from the best to the worst
func (c *Catalog) ScenesInventory(ctx context.Context, query entities.ImageCollectionQuery) ([]entities.SceneMetadata, error) {
	if len(c.Providers) == 0 {
		return nil, fmt.Errorf("no catalog is configured")
	}

	var err, e error
	var scenes []entities.SceneMetadata
	for _, provider := range c.Providers {
		scenes, e = provider.SearchScenes(ctx, query)
		if err = service.MergeErrors(false, err, e); err == nil {
			break
		}
		log.Logger(ctx).Sugar().Debugf("ScenesInventory: %v", e)
	}
	if err != nil {
		return nil, fmt.Errorf("ScenesInventory.%w", err)
	}

	return refineInventory(query, scenes), nil
}

// refineInventory removes the scenes rejected by the query and sorts the remaining ones
func refineInventory(query entities.ImageCollectionQuery, scenes []entities.SceneMetadata) []entities.SceneMetadata {
	scenes = removeDoubleEntries(scenes)

	j := 0
	for _, scene := range scenes {
		if query.Accept(scene) {
			scenes[j] = scene
			j++
		}
	}
	scenes = scenes[0:j]

	sort.SliceStable(scenes, func(i, j int) bool { return scenes[i].Less(scenes[j]) })
	return scenes
}

// removeDoubleEntries keeps the first occurrence of each scene
func removeDoubleEntries(scenes []entities.SceneMetadata) []entities.SceneMetadata {
	identifiers := map[string]struct{}{}

	j := 0
	for _, scene := range scenes {
		if _, ok := identifiers[scene.ID]; !ok {
			scenes[j] = scene
			identifiers[scene.ID] = struct{}{}
			j++
		}
	}
	return scenes[0:j]
}
