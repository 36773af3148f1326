package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/airbusgeo/scene-exporter/catalog"
	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/dispatcher"
	icatalog "github.com/airbusgeo/scene-exporter/interface/catalog"
	"github.com/airbusgeo/scene-exporter/interface/catalog/gee"
	"github.com/airbusgeo/scene-exporter/interface/earthengine"
	"github.com/airbusgeo/scene-exporter/interface/exporter"
	"github.com/airbusgeo/scene-exporter/service"
	"github.com/airbusgeo/scene-exporter/service/log"
	"github.com/airbusgeo/scene-exporter/workflow"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type config struct {
	Preset     string
	ConfigFile string
	EnvFile    string
	LogLevel   string
	LogFormat  string

	// Overrides of the workflow configuration (only applied if the flag is set)
	BBox          string
	AOIFile       string
	SourceCRS     string
	Geodesic      bool
	Collection    string
	StartDate     string
	EndDate       string
	MaxCloudCover float64
	Bands         string
	TargetCRS     string
	Scale         float64
	Resampling    string
	PCA           bool
	PCAThreshold  float64
	Standardize   bool
	Sensor        string
	Location      string
	NameTemplate  string
	Destination   string
	Folder        string
	Bucket        string
	MaxPixels     int64
	FileFormat    string
	Project       string
	Credentials   string
	PsProject     string
	PsTasksTopic  string
	PsEventsTopic string
	DryRun        bool
	Report        string
}

func newAppConfig(ctx context.Context) (*workflow.Config, *config, error) {
	config := config{}
	flag.StringVar(&config.Preset, "preset", workflow.DefaultPreset, "configuration preset ("+strings.Join(workflow.Presets(), ", ")+")")
	flag.StringVar(&config.ConfigFile, "config", "", "yaml configuration file (local or gs://bucket/object) (optional)")
	flag.StringVar(&config.EnvFile, "env-file", "", "file of environment variables "+workflow.EnvPrefix+"* (default: .env, if exists)")
	flag.StringVar(&config.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.StringVar(&config.LogFormat, "log-format", "json", "log format (json, console)")

	// Area
	flag.StringVar(&config.BBox, "bbox", "", "area of interest: minX,minY,maxX,maxY")
	flag.StringVar(&config.AOIFile, "aoi-file", "", "geojson file (local or gs://) whose bounding box is the area of interest (in source-crs)")
	flag.StringVar(&config.SourceCRS, "source-crs", "", "crs of the area of interest (e.g. EPSG:31983)")
	flag.BoolVar(&config.Geodesic, "geodesic", false, "the coordinates of the area are geodesic (not projected)")

	// Query
	flag.StringVar(&config.Collection, "collection", "", "image collection (e.g. LANDSAT/LC09/C02/T1)")
	flag.StringVar(&config.StartDate, "start", "", "start date (inclusive)")
	flag.StringVar(&config.EndDate, "end", "", "end date (exclusive)")
	flag.Float64Var(&config.MaxCloudCover, "max-cloud-cover", 0, "scenes with a cloud cover greater or equal are ignored")

	// Transform
	flag.StringVar(&config.Bands, "bands", "", "comma-separated list of bands to export")
	flag.StringVar(&config.TargetCRS, "crs", "", "crs of the exported images")
	flag.Float64Var(&config.Scale, "scale", 0, "resolution of the exported images (meters)")
	flag.StringVar(&config.Resampling, "resampling", "", "resampling ("+strings.Join(resamplingNames(), ", ")+")")
	flag.BoolVar(&config.PCA, "pca", false, "export the principal components of the bands instead of the bands")
	flag.Float64Var(&config.PCAThreshold, "pca-threshold", 0, "cumulative ratio of variance explained by the exported components (default: 0.99)")
	flag.BoolVar(&config.Standardize, "pca-standardize", false, "divide the centered bands by their standard deviation before the analysis")

	// Export
	flag.StringVar(&config.Sensor, "sensor", "", "sensor tag of the export names (e.g. L9)")
	flag.StringVar(&config.Location, "location", "", "location tag of the export names (e.g. Ibirite)")
	flag.StringVar(&config.NameTemplate, "name-template", "", "export name template ("+common.DefaultExportNameTemplate+")")
	flag.StringVar(&config.Destination, "destination", "", "export destination (drive, gcs)")
	flag.StringVar(&config.Folder, "folder", "", "drive folder")
	flag.StringVar(&config.Bucket, "bucket", "", "gcs bucket")
	flag.Int64Var(&config.MaxPixels, "max-pixels", 0, "maximum number of pixels of an export")
	flag.StringVar(&config.FileFormat, "file-format", "", "file format of the exports (default: "+exporter.DefaultFileFormat+")")

	// Services
	flag.StringVar(&config.Project, "project", "", "Earth Engine cloud project")
	flag.StringVar(&config.Credentials, "credentials", "", "service account key file (local or gs://). Application default credentials if empty")
	flag.StringVar(&config.PsProject, "ps-project", "", "pubsub project (default: Earth Engine project)")
	flag.StringVar(&config.PsTasksTopic, "ps-tasks-topic", "", "publish the export tasks on this pubsub topic instead of submitting them to Earth Engine (optional)")
	flag.StringVar(&config.PsEventsTopic, "ps-events-topic", "", "pubsub topic notified of every export submission (optional)")
	flag.BoolVar(&config.DryRun, "dry-run", false, "log the export requests without submitting them")
	flag.StringVar(&config.Report, "report", "", "write the submitted tasks as json (local or gs://) (optional)")
	flag.Parse()

	if err := log.Setup(config.LogLevel, config.LogFormat); err != nil {
		return nil, nil, err
	}

	// Environment file
	if config.EnvFile != "" {
		if err := godotenv.Load(config.EnvFile); err != nil {
			return nil, nil, fmt.Errorf("godotenv.Load: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("godotenv.Load: %w", err)
	}

	// Preset < file < env < flags
	cfg, err := workflow.PresetConfig(config.Preset)
	if err != nil {
		return nil, nil, err
	}
	if config.ConfigFile != "" {
		if err := cfg.LoadFile(ctx, config.ConfigFile); err != nil {
			return nil, nil, err
		}
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, nil, err
	}
	if err := config.apply(&cfg); err != nil {
		return nil, nil, err
	}
	if err := cfg.LoadAOIFile(ctx); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, &config, nil
}

func resamplingNames() []string {
	var names []string
	for _, r := range common.ResamplingValues() {
		names = append(names, r.String())
	}
	return names
}

func splitList(s string) []string {
	var l []string
	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			l = append(l, e)
		}
	}
	return l
}

// apply overrides the workflow configuration with the flags set on the command line
func (config *config) apply(cfg *workflow.Config) error {
	var err error
	flag.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "bbox":
			cfg.BBox = nil
			for _, s := range splitList(config.BBox) {
				v, e := strconv.ParseFloat(s, 64)
				if e != nil {
					err = fmt.Errorf("invalid bbox flag: %w", e)
					return
				}
				cfg.BBox = append(cfg.BBox, v)
			}
		case "aoi-file":
			cfg.AOIFile = config.AOIFile
		case "source-crs":
			cfg.SourceCRS = config.SourceCRS
		case "geodesic":
			cfg.Projected = !config.Geodesic
		case "collection":
			cfg.CollectionID = config.Collection
		case "start":
			cfg.StartDate, err = workflow.ParseDate(config.StartDate)
		case "end":
			cfg.EndDate, err = workflow.ParseDate(config.EndDate)
		case "max-cloud-cover":
			cfg.MaxCloudCover = config.MaxCloudCover
		case "bands":
			cfg.Bands = splitList(config.Bands)
		case "crs":
			cfg.TargetCRS = config.TargetCRS
		case "scale":
			cfg.Scale = config.Scale
		case "resampling":
			cfg.Resampling, err = common.ResamplingString(config.Resampling)
		case "pca":
			cfg.PCA = config.PCA
		case "pca-threshold":
			cfg.PCAThreshold = config.PCAThreshold
		case "pca-standardize":
			cfg.PCAStandardize = config.Standardize
		case "sensor":
			cfg.Sensor = config.Sensor
		case "location":
			cfg.Location = config.Location
		case "name-template":
			cfg.NameTemplate = config.NameTemplate
		case "destination":
			cfg.Destination.Kind, err = common.DestinationKindString(config.Destination)
		case "folder":
			cfg.Destination.Folder = config.Folder
		case "bucket":
			cfg.Destination.Bucket = config.Bucket
		case "max-pixels":
			cfg.MaxPixels = config.MaxPixels
		case "file-format":
			cfg.FileFormat = config.FileFormat
		case "project":
			cfg.Project = config.Project
		case "credentials":
			cfg.Credentials = config.Credentials
		case "ps-project":
			cfg.PubSubProject = config.PsProject
		case "ps-tasks-topic":
			cfg.PubSubTasksTopic = config.PsTasksTopic
		case "ps-events-topic":
			cfg.PubSubEventsTopic = config.PsEventsTopic
		case "dry-run":
			cfg.DryRun = config.DryRun
		}
	})
	return err
}

func main() {
	ctx := context.Background()
	err := run(ctx)
	log.Sync()
	if err != nil {
		log.Fatal("error", zap.Error(err))
	}
}

func run(ctx context.Context) error {
	cfg, appConfig, err := newAppConfig(ctx)
	if err != nil {
		return err
	}

	// Earth Engine client
	creds, err := earthengine.Credentials(ctx, cfg.Credentials)
	if err != nil {
		return err
	}
	client, err := earthengine.NewClient(ctx, cfg.Project, creds)
	if err != nil {
		return err
	}

	// Exporter & notifier
	eeExporter := exporter.EarthEngine{Client: client, FileFormat: cfg.FileFormat}
	var exp dispatcher.Exporter = &eeExporter
	var notifier dispatcher.Notifier
	target := "exporting to " + cfg.Destination.String()
	if cfg.DryRun {
		exp = &exporter.DryRun{EarthEngine: eeExporter}
		target = "dry-run"
	} else {
		if cfg.PubSubTasksTopic != "" {
			ps, err := exporter.NewPubSub(ctx, cfg.PubSubProjectID(), cfg.PubSubTasksTopic)
			if err != nil {
				return fmt.Errorf("pubsub.tasks: %w", err)
			}
			defer ps.Stop()
			exp = ps
			target = fmt.Sprintf("publishing tasks on %s/%s", cfg.PubSubProjectID(), cfg.PubSubTasksTopic)
		}
		if cfg.PubSubEventsTopic != "" {
			ps, err := exporter.NewPubSub(ctx, cfg.PubSubProjectID(), cfg.PubSubEventsTopic)
			if err != nil {
				return fmt.Errorf("pubsub.events: %w", err)
			}
			defer ps.Stop()
			notifier = ps
			target = fmt.Sprintf("%s, notifying %s/%s", target, cfg.PubSubProjectID(), cfg.PubSubEventsTopic)
		}
	}
	log.Logger(ctx).Sugar().Infof("scene-export %s: %s", cfg.Project, target)

	c := &catalog.Catalog{Providers: []icatalog.ScenesProvider{&gee.Provider{Client: client}}}
	wf := workflow.NewWorkflow(c, &earthengine.RegionStatistics{Client: client, MaxPixels: cfg.MaxPixels}, exp, notifier)
	result, err := wf.Run(ctx, *cfg)
	for _, failed := range result.Report.Failed {
		log.Logger(ctx).Error("export failed", zap.String(common.TagBand, failed.Band), zap.String(common.TagExportName, failed.Description), zap.Bool("temporary", service.Temporary(failed.Err)), zap.Error(failed.Err))
	}
	if appConfig.Report != "" && result.Image.Scene.ID != "" {
		if e := writeReport(ctx, appConfig.Report, result); e != nil {
			log.Logger(ctx).Warn("unable to write the report", zap.Error(e))
		}
	}
	if err != nil {
		return err
	}
	for _, task := range result.Report.Submitted {
		fmt.Println(task.Description, task.Operation)
	}
	return nil
}

func writeReport(ctx context.Context, uri string, result workflow.Result) error {
	var payloads []common.ExportTaskPayload
	for _, task := range result.Report.Submitted {
		payload, err := task.Payload(common.StatusSUBMITTED, task.Operation, "")
		if err != nil {
			return err
		}
		payloads = append(payloads, payload)
	}
	for _, failed := range result.Report.Failed {
		payload, err := failed.Payload()
		if err != nil {
			return err
		}
		payloads = append(payloads, payload)
	}
	return service.WriteJSON(ctx, uri, payloads)
}
