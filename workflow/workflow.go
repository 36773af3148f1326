package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/airbusgeo/scene-exporter/catalog"
	"github.com/airbusgeo/scene-exporter/catalog/entities"
	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/dispatcher"
	"github.com/airbusgeo/scene-exporter/processor"
	"github.com/airbusgeo/scene-exporter/service"
	"github.com/airbusgeo/scene-exporter/service/log"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workflow runs the export pipeline: area > query > selection > transform [> principal components] > export
type Workflow struct {
	catalog    *catalog.Catalog
	statistics processor.StatisticsComputer
	exporter   dispatcher.Exporter
	notifier   dispatcher.Notifier
}

// Result of a run
type Result struct {
	RunID  string
	Scene  entities.SceneMetadata
	Image  processor.Image
	Report dispatcher.DispatchReport
}

// NewWorkflow creates a workflow.
// statistics is only required to export principal components. notifier is optional.
func NewWorkflow(catalog *catalog.Catalog, statistics processor.StatisticsComputer, exporter dispatcher.Exporter, notifier dispatcher.Notifier) *Workflow {
	return &Workflow{
		catalog:    catalog,
		statistics: statistics,
		exporter:   exporter,
		notifier:   notifier,
	}
}

// Run executes the pipeline once.
// It stops at the first failing step, except for the export step where every band is submitted.
// The returned error is a service.StepError (or a combination of StepErrors for the export step).
func (wf *Workflow) Run(ctx context.Context, cfg Config) (Result, error) {
	result := Result{RunID: uuid.New().String()}
	ctx = log.With(ctx, common.TagRunID, result.RunID)
	lg := log.Logger(ctx)

	// Area Definition
	area, err := cfg.Area()
	if err != nil {
		return result, service.NewStepError(service.StepArea, "", err)
	}
	lg.Debug("area defined", zap.String("aoi", area.String()), zap.String("wkt", area.WKT()))

	// Collection Query
	query, err := wf.catalog.Query(area, cfg.QueryConfig())
	if err != nil {
		return result, service.NewStepError(service.StepQuery, "", err)
	}

	// Scene Selection
	if result.Scene, err = wf.catalog.SelectScene(ctx, query); err != nil {
		if errors.Is(err, catalog.ErrNoSceneFound) {
			lg.Warn("no scene found", zap.String("collection", query.CollectionID), zap.Float64("maxCloudCover", query.MaxCloudCover))
		}
		return result, service.NewStepError(service.StepSelection, "", err)
	}
	ctx = log.With(ctx, common.TagSceneID, result.Scene.ID)
	lg = log.Logger(ctx)
	lg.Info("scene selected", zap.Float64("cloudCover", result.Scene.CloudCover), zap.Time("acquired", result.Scene.Acquired))

	// Band Transform
	if result.Image, err = processor.Transform(ctx, result.Scene, cfg.Bands, area, cfg.TargetCRS, cfg.Scale, cfg.Resampling); err != nil {
		return result, service.NewStepError(service.StepTransform, "", err)
	}
	if cfg.PCA {
		if result.Image, err = wf.principalComponents(ctx, result.Image, cfg.PCAConfig()); err != nil {
			return result, service.NewStepError(service.StepTransform, "", err)
		}
	}

	// Export Dispatch
	d := dispatcher.Dispatcher{
		Config:   cfg.DispatcherConfig(result.RunID),
		Exporter: wf.exporter,
		Notifier: wf.notifier,
	}
	result.Report, err = d.Dispatch(ctx, result.Image, result.Scene.Acquired)
	lg.Info("exports dispatched", zap.Int("submitted", len(result.Report.Submitted)), zap.Int("failed", len(result.Report.Failed)))
	return result, err
}

func (wf *Workflow) principalComponents(ctx context.Context, img processor.Image, cfg processor.PCAConfig) (processor.Image, error) {
	if wf.statistics == nil {
		return processor.Image{}, fmt.Errorf("principalComponents: no statistics computer")
	}
	stats, err := wf.statistics.Statistics(ctx, img)
	if err != nil {
		return processor.Image{}, fmt.Errorf("principalComponents.%w", err)
	}
	return processor.PrincipalComponents(ctx, img, stats, cfg)
}
