package workflow

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/airbusgeo/scene-exporter/catalog"
	"github.com/airbusgeo/scene-exporter/catalog/entities"
	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/dispatcher"
	"github.com/airbusgeo/scene-exporter/processor"
	"github.com/airbusgeo/scene-exporter/service"
	"github.com/airbusgeo/scene-exporter/service/geometry"
	"github.com/araddon/dateparse"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix of the environment variables overriding the configuration
const EnvPrefix = "SCENE_EXPORT_"

// DefaultPreset is the Landsat-9 Level-1 export over Ibirité
const DefaultPreset = "landsat9-l1"

// Date accepts most common layouts (2022-01-01, 2022/01/01, 20220101, RFC3339...). Dates without timezone are UTC.
type Date struct {
	time.Time
}

// ParseDate parses a date in any common layout
func ParseDate(s string) (Date, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("ParseDate: %w", err)
	}
	return Date{t}, nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Date) UnmarshalText(text []byte) error {
	date, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = date
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.Format("2006-01-02")), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Config of an export run
type Config struct {
	// Area
	BBox      []float64 `yaml:"bbox" env:"BBOX"`         // minX, minY, maxX, maxY
	AOIFile   string    `yaml:"aoi_file" env:"AOI_FILE"` // GeoJSON file (in SourceCRS) replacing BBox by its bounding box
	SourceCRS string    `yaml:"source_crs" env:"SOURCE_CRS"`
	Projected bool      `yaml:"projected" env:"PROJECTED"`

	// Query
	CollectionID  string  `yaml:"collection" env:"COLLECTION"`
	StartDate     Date    `yaml:"start_date" env:"START_DATE"`
	EndDate       Date    `yaml:"end_date" env:"END_DATE"` // exclusive
	MaxCloudCover float64 `yaml:"max_cloud_cover" env:"MAX_CLOUD_COVER"`

	// Transform
	Bands      []string          `yaml:"bands" env:"BANDS"`
	TargetCRS  string            `yaml:"target_crs" env:"TARGET_CRS"`
	Scale      float64           `yaml:"scale" env:"SCALE"`
	Resampling common.Resampling `yaml:"resampling" env:"RESAMPLING"`

	// Principal components
	PCA            bool    `yaml:"pca" env:"PCA"`                     // Export the principal components of the bands instead of the bands
	PCAThreshold   float64 `yaml:"pca_threshold" env:"PCA_THRESHOLD"` // Cumulative ratio of variance explained by the exported components
	PCAStandardize bool    `yaml:"pca_standardize" env:"PCA_STANDARDIZE"`

	// Export
	Sensor       string             `yaml:"sensor" env:"SENSOR"`
	Location     string             `yaml:"location" env:"LOCATION"`
	NameTemplate string             `yaml:"name_template" env:"NAME_TEMPLATE"`
	Destination  common.Destination `yaml:"destination" envPrefix:"DESTINATION_"`
	MaxPixels    int64              `yaml:"max_pixels" env:"MAX_PIXELS"`
	FileFormat   string             `yaml:"file_format" env:"FILE_FORMAT"`

	// Services
	Project           string `yaml:"project" env:"PROJECT"`         // Earth Engine cloud project
	Credentials       string `yaml:"credentials" env:"CREDENTIALS"` // Service account key file (local or gs://). Default credentials if empty
	PubSubProject     string `yaml:"pubsub_project" env:"PUBSUB_PROJECT"`
	PubSubTasksTopic  string `yaml:"pubsub_tasks_topic" env:"PUBSUB_TASKS_TOPIC"`   // Publish the tasks on this topic instead of submitting them to Earth Engine
	PubSubEventsTopic string `yaml:"pubsub_events_topic" env:"PUBSUB_EVENTS_TOPIC"` // Topic notified of every submission (optional)
	DryRun            bool   `yaml:"dry_run" env:"DRY_RUN"`
}

func mustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DefaultConfig returns the configuration of the Landsat-9 Level-1 export over Ibirité
func DefaultConfig() Config {
	return Config{
		BBox:          []float64{578524, 7774048, 609237, 7800187},
		SourceCRS:     "EPSG:31983",
		Projected:     true,
		CollectionID:  "LANDSAT/LC09/C02/T1",
		StartDate:     mustDate("2022-01-01"),
		EndDate:       mustDate("2022-12-31"),
		MaxCloudCover: 10,
		Bands:         []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B9"},
		TargetCRS:     "EPSG:31983",
		Scale:         30,
		Resampling:    common.ResamplingNearest,
		PCAThreshold:  processor.DefaultVarianceThreshold,
		Sensor:        "L9",
		Location:      "Ibirite",
		NameTemplate:  common.DefaultExportNameTemplate,
		Destination:   common.Destination{Kind: common.DestinationDrive, Folder: "GEE_Exports"},
		MaxPixels:     dispatcher.DefaultMaxPixels,
	}
}

var presets = map[string]func(*Config){
	DefaultPreset: func(*Config) {},
	"landsat5-l2": func(c *Config) {
		c.CollectionID = "LANDSAT/LT05/C02/T1_L2"
		c.StartDate = mustDate("1990-01-01")
		c.EndDate = mustDate("1990-05-04")
		c.Bands = []string{"B1", "B2", "B3", "B4", "B5", "B7"}
		c.Sensor = "L5"
	},
}

// Presets returns the names of the available presets
func Presets() []string {
	var names []string
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetConfig returns the default configuration modified by the preset
func PresetConfig(name string) (Config, error) {
	if name == "" {
		name = DefaultPreset
	}
	preset, ok := presets[strings.ToLower(name)]
	if !ok {
		return Config{}, fmt.Errorf("PresetConfig: unknown preset %s (available: %s)", name, strings.Join(Presets(), ", "))
	}
	c := DefaultConfig()
	preset(&c)
	return c, nil
}

// LoadFile overrides the configuration with the yaml (or json) file located at uri (local or gs://)
func (c *Config) LoadFile(ctx context.Context, uri string) error {
	data, err := service.ReadFile(ctx, uri)
	if err != nil {
		return fmt.Errorf("LoadFile.%w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("LoadFile[%s]: %w", uri, err)
	}
	return nil
}

// LoadEnv overrides the configuration with the SCENE_EXPORT_* environment variables
func (c *Config) LoadEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("LoadEnv: %w", err)
	}
	return nil
}

// LoadAOIFile replaces the bbox by the bounding box of the geometry of AOIFile (if any)
func (c *Config) LoadAOIFile(ctx context.Context) error {
	if c.AOIFile == "" {
		return nil
	}
	data, err := service.ReadFile(ctx, c.AOIFile)
	if err != nil {
		return fmt.Errorf("LoadAOIFile.%w", err)
	}
	ext, err := geometry.BoundingBox(data)
	if err != nil {
		return fmt.Errorf("LoadAOIFile[%s].%w", c.AOIFile, err)
	}
	c.BBox = []float64{ext.MinX(), ext.MinY(), ext.MaxX(), ext.MaxY()}
	return nil
}

// Validate checks the consistency of the configuration
func (c Config) Validate() error {
	if _, err := c.Area(); err != nil {
		return fmt.Errorf("Validate.%w", err)
	}
	if c.CollectionID == "" {
		return fmt.Errorf("Validate: missing collection")
	}
	if !c.StartDate.Before(c.EndDate.Time) {
		return fmt.Errorf("Validate: start date (%s) must be before end date (%s)", c.StartDate.Format("2006-01-02"), c.EndDate.Format("2006-01-02"))
	}
	if len(c.Bands) == 0 {
		return fmt.Errorf("Validate: no band selected")
	}
	if dups := service.Duplicates(c.Bands); len(dups) > 0 {
		return fmt.Errorf("Validate: duplicated bands: %s", strings.Join(dups, ","))
	}
	if c.Scale <= 0 {
		return fmt.Errorf("Validate: scale must be positive")
	}
	if c.Location == "" {
		return fmt.Errorf("Validate: missing location")
	}
	if err := c.Destination.Validate(); err != nil {
		return fmt.Errorf("Validate: %w", err)
	}
	if c.Project == "" {
		return fmt.Errorf("Validate: missing Earth Engine project")
	}
	if c.PCA {
		if len(c.Bands) < 2 {
			return fmt.Errorf("Validate: principal components require at least two bands")
		}
		if c.PCAThreshold <= 0 || c.PCAThreshold > 1 {
			return fmt.Errorf("Validate: pca threshold must be in ]0, 1] (got %v)", c.PCAThreshold)
		}
	}
	if c.PubSubTasksTopic != "" && c.PubSubTasksTopic == c.PubSubEventsTopic {
		return fmt.Errorf("Validate: pubsub tasks and events topics must differ")
	}
	return nil
}

// Area returns the area of interest
func (c Config) Area() (entities.AreaOfInterest, error) {
	if len(c.BBox) != 4 {
		return entities.AreaOfInterest{}, fmt.Errorf("Area: bbox must be [minX, minY, maxX, maxY] (got %v)", c.BBox)
	}
	return entities.NewAreaOfInterest(c.BBox[0], c.BBox[1], c.BBox[2], c.BBox[3], c.SourceCRS, c.Projected)
}

// QueryConfig returns the configuration of the collection query
func (c Config) QueryConfig() catalog.QueryConfig {
	return catalog.QueryConfig{
		CollectionID:  c.CollectionID,
		Start:         c.StartDate.Time,
		End:           c.EndDate.Time,
		MaxCloudCover: c.MaxCloudCover,
	}
}

// DispatcherConfig returns the configuration of the export dispatcher
func (c Config) DispatcherConfig(runID string) dispatcher.Config {
	return dispatcher.Config{
		Sensor:       c.Sensor,
		Location:     c.Location,
		NameTemplate: c.NameTemplate,
		Destination:  c.Destination,
		MaxPixels:    c.MaxPixels,
		RunID:        runID,
	}
}

// PCAConfig returns the configuration of the principal component analysis
func (c Config) PCAConfig() processor.PCAConfig {
	return processor.PCAConfig{
		Threshold:   c.PCAThreshold,
		Standardize: c.PCAStandardize,
	}
}

// PubSubProjectID returns the pubsub project (default: the Earth Engine project)
func (c Config) PubSubProjectID() string {
	if c.PubSubProject != "" {
		return c.PubSubProject
	}
	return c.Project
}
