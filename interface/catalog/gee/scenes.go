package gee

import (
	"context"
	"fmt"
	"time"

	"github.com/airbusgeo/scene-exporter/catalog/entities"
	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/interface/earthengine"
)

type imageCollectionInfo struct {
	Type     string      `json:"type"`
	ID       string      `json:"id"`
	Features []imageInfo `json:"features"`
}

type imageInfo struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Bands []struct {
		ID string `json:"id"`
	} `json:"bands"`
	Properties map[string]interface{} `json:"properties"`
}

// Provider implements catalog.ScenesProvider with Earth Engine
type Provider struct {
	Client earthengine.Computer
}

// QueryExpression returns the expression of the filtered collection
func QueryExpression(query entities.ImageCollectionQuery) *earthengine.Expression {
	collection := earthengine.ImageCollectionLoad(query.CollectionID)
	collection = earthengine.CollectionFilter(collection, earthengine.FilterDate(query.Start, query.End))
	collection = earthengine.CollectionFilter(collection, earthengine.FilterBounds(earthengine.Rectangle(query.Area)))
	collection = earthengine.CollectionFilter(collection, earthengine.FilterLessThan(common.PropertyCloudCover, query.MaxCloudCover))
	return earthengine.NewExpression(collection)
}

// SearchScenes implements catalog.ScenesProvider
func (p *Provider) SearchScenes(ctx context.Context, query entities.ImageCollectionQuery) ([]entities.SceneMetadata, error) {
	info := imageCollectionInfo{}
	if err := p.Client.Compute(ctx, QueryExpression(query), &info); err != nil {
		return nil, fmt.Errorf("SearchScenes(EarthEngine).%w", err)
	}
	if info.Type != "" && info.Type != "ImageCollection" {
		return nil, fmt.Errorf("SearchScenes(EarthEngine): unexpected type %s", info.Type)
	}

	scenes := make([]entities.SceneMetadata, 0, len(info.Features))
	for _, feature := range info.Features {
		scene, err := parseImageInfo(feature)
		if err != nil {
			return nil, fmt.Errorf("SearchScenes(EarthEngine).%w", err)
		}
		scenes = append(scenes, scene)
	}
	return scenes, nil
}

func parseImageInfo(info imageInfo) (entities.SceneMetadata, error) {
	scene := entities.SceneMetadata{
		ID:            info.ID,
		Properties:    info.Properties,
		Constellation: common.GetConstellationFromProductId(info.ID),
	}
	for _, b := range info.Bands {
		scene.Bands = append(scene.Bands, b.ID)
	}

	cloudCover, ok := info.Properties[common.PropertyCloudCover].(float64)
	if !ok {
		return scene, fmt.Errorf("parseImageInfo[%s]: missing %s", info.ID, common.PropertyCloudCover)
	}
	scene.CloudCover = cloudCover

	if timeStart, ok := info.Properties[common.PropertyTimeStart].(float64); ok {
		scene.Acquired = time.UnixMilli(int64(timeStart)).UTC()
	} else {
		date, err := common.GetDateFromProductId(info.ID)
		if err != nil {
			return scene, fmt.Errorf("parseImageInfo[%s]: missing %s: %w", info.ID, common.PropertyTimeStart, err)
		}
		scene.Acquired = date
	}
	return scene, nil
}
