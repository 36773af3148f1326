package exporter

import (
	"context"
	"encoding/json"

	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/dispatcher"
	"github.com/airbusgeo/scene-exporter/service/log"
	"go.uber.org/zap"
)

// DryRun logs the export requests without submitting them
type DryRun struct {
	EarthEngine
}

// Export implements dispatcher.Exporter
func (d *DryRun) Export(ctx context.Context, task dispatcher.ExportTask) (string, error) {
	req, err := d.ExportRequest(task)
	if err != nil {
		return "", err
	}
	fields := []zap.Field{
		zap.String(common.TagExportName, task.Description),
		zap.String("destination", task.Destination.String()),
		zap.String("crs", task.CRS),
		zap.Float64("scale", task.Scale),
		zap.String("region", task.Image.Clip.WKT()),
	}
	if log.Logger(ctx).Core().Enabled(zap.DebugLevel) {
		if b, err := json.Marshal(req); err == nil {
			fields = append(fields, zap.ByteString("request", b))
		}
	}
	log.Logger(ctx).Info("dry-run: export not submitted", fields...)
	return "dry-run/" + task.RequestID, nil
}
