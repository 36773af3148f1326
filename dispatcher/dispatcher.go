package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/processor"
	"github.com/airbusgeo/scene-exporter/service"
	"github.com/airbusgeo/scene-exporter/service/log"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultMaxPixels is the maximum number of pixels of an export
const DefaultMaxPixels int64 = 1e13

// Exporter submits an export task. It returns as soon as the task is queued,
// with the identifier of the remote operation.
type Exporter interface {
	Export(ctx context.Context, task ExportTask) (string, error)
}

// Notifier is told about every submission (successful or not)
type Notifier interface {
	Notify(ctx context.Context, payload common.ExportTaskPayload) error
}

// ExportTask is a single-band export
type ExportTask struct {
	Image          processor.Image // Single-band image
	Band           string
	Description    string
	FileNamePrefix string
	Date           string // yyyyMMdd
	Destination    common.Destination
	CRS            string
	Scale          float64
	MaxPixels      int64
	RequestID      string
	RunID          string
}

// SubmittedTask is a task accepted by the exporter
type SubmittedTask struct {
	ExportTask
	Operation string
}

// BandError is a task whose submission failed
type BandError struct {
	ExportTask
	Err error
}

// Payload returns the FAILED message of the task
func (e BandError) Payload() (common.ExportTaskPayload, error) {
	return e.ExportTask.Payload(common.StatusFAILED, "", e.Err.Error())
}

// DispatchReport lists what was submitted and what failed, in band order
type DispatchReport struct {
	Submitted []SubmittedTask
	Failed    []BandError
}

// Config of the dispatcher
type Config struct {
	Sensor       string // Sensor tag. If empty, it is deduced from the scene.
	Location     string
	NameTemplate string // Default: common.DefaultExportNameTemplate
	Destination  common.Destination
	MaxPixels    int64 // Default: DefaultMaxPixels
	RunID        string
}

// Dispatcher submits one export per band
type Dispatcher struct {
	Config
	Exporter Exporter
	Notifier Notifier // Optional
}

// Payload returns the message describing the task
func (t ExportTask) Payload(status common.Status, operation, message string) (common.ExportTaskPayload, error) {
	region, err := t.Image.Clip.GeoJSON()
	if err != nil {
		return common.ExportTaskPayload{}, fmt.Errorf("Payload.%w", err)
	}
	return common.ExportTaskPayload{
		RunID:       t.RunID,
		SceneID:     t.Image.Scene.ID,
		Band:        t.Band,
		Name:        t.Description,
		Date:        t.Date,
		Destination: t.Destination,
		Region:      region,
		RegionCRS:   t.Image.Clip.CRS,
		CRS:         t.CRS,
		Scale:       t.Scale,
		MaxPixels:   t.MaxPixels,
		Operation:   operation,
		Status:      status,
		Message:     message,
	}, nil
}

// Tasks returns the export tasks of the image, one per band, in band order
func (d *Dispatcher) Tasks(image processor.Image, date time.Time) ([]ExportTask, error) {
	sensor := d.Sensor
	if sensor == "" {
		if sensor = image.Scene.Constellation.SensorTag(); sensor == "" {
			return nil, fmt.Errorf("Tasks: unknown sensor of scene %s", image.Scene.ID)
		}
	}
	template := d.NameTemplate
	if template == "" {
		template = common.DefaultExportNameTemplate
	}
	maxPixels := d.MaxPixels
	if maxPixels == 0 {
		maxPixels = DefaultMaxPixels
	}
	sdate := common.FormatDate(date)

	tasks := make([]ExportTask, 0, len(image.Bands))
	for _, band := range image.Bands {
		single, err := image.SelectBand(band)
		if err != nil {
			return nil, fmt.Errorf("Tasks.%w", err)
		}
		name := common.FormatExportName(template, sensor, band, d.Location, sdate)
		tasks = append(tasks, ExportTask{
			Image:          single,
			Band:           band,
			Description:    name,
			FileNamePrefix: name,
			Date:           sdate,
			Destination:    d.Destination,
			CRS:            image.CRS,
			Scale:          image.Scale,
			MaxPixels:      maxPixels,
			RequestID:      uuid.New().String(),
			RunID:          d.RunID,
		})
	}
	return tasks, nil
}

// Dispatch submits one export per band of the image, named after the acquisition date.
// A failed submission does not stop the others: the returned error combines the errors of all
// the failed bands (nil if every band was submitted).
func (d *Dispatcher) Dispatch(ctx context.Context, image processor.Image, date time.Time) (DispatchReport, error) {
	report := DispatchReport{}
	tasks, err := d.Tasks(image, date)
	if err != nil {
		return report, service.NewStepError(service.StepExport, "", err)
	}

	var errs error
	for _, task := range tasks {
		ctx := log.With(ctx, common.TagBand, task.Band)
		operation, err := d.Exporter.Export(ctx, task)
		if err != nil {
			err = service.NewStepError(service.StepExport, task.Band, err)
			log.Logger(ctx).Warn("export submission failed", zap.String(common.TagExportName, task.Description), zap.Bool("temporary", service.Temporary(err)), zap.Error(err))
			report.Failed = append(report.Failed, BandError{ExportTask: task, Err: err})
			errs = multierr.Append(errs, err)
			d.notify(ctx, task, common.StatusFAILED, "", err.Error())
			continue
		}
		log.Logger(ctx).Info("export submitted", zap.String(common.TagExportName, task.Description), zap.String(common.TagOperation, operation))
		report.Submitted = append(report.Submitted, SubmittedTask{ExportTask: task, Operation: operation})
		d.notify(ctx, task, common.StatusSUBMITTED, operation, "")
	}
	return report, errs
}

func (d *Dispatcher) notify(ctx context.Context, task ExportTask, status common.Status, operation, message string) {
	if d.Notifier == nil {
		return
	}
	payload, err := task.Payload(status, operation, message)
	if err == nil {
		err = d.Notifier.Notify(ctx, payload)
	}
	if err != nil {
		log.Logger(ctx).Warn("notification failed", zap.String(common.TagExportName, task.Description), zap.Error(err))
	}
}
