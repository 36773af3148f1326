package workflow_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/processor"
	"github.com/airbusgeo/scene-exporter/workflow"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	var cfg workflow.Config

	BeforeEach(func() {
		cfg = workflow.DefaultConfig()
		cfg.Project = "ibirite-gis"
	})

	It("should default to the Landsat-9 export over Ibirite", func() {
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.BBox).To(Equal([]float64{578524, 7774048, 609237, 7800187}))
		Expect(cfg.CollectionID).To(Equal("LANDSAT/LC09/C02/T1"))
		Expect(cfg.StartDate.Time).To(Equal(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)))
		Expect(cfg.EndDate.Time).To(Equal(time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)))
		Expect(cfg.Bands).To(Equal([]string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B9"}))
		Expect(cfg.MaxPixels).To(Equal(int64(1e13)))
		Expect(cfg.Destination.Folder).To(Equal("GEE_Exports"))

		area, err := cfg.Area()
		Expect(err).NotTo(HaveOccurred())
		Expect(area.CRS).To(Equal("EPSG:31983"))
		Expect(area.Projected).To(BeTrue())
	})

	It("should load the presets", func() {
		l5, err := workflow.PresetConfig("landsat5-l2")
		Expect(err).NotTo(HaveOccurred())
		Expect(l5.CollectionID).To(Equal("LANDSAT/LT05/C02/T1_L2"))
		Expect(l5.Bands).To(Equal([]string{"B1", "B2", "B3", "B4", "B5", "B7"}))
		Expect(l5.Sensor).To(Equal("L5"))
		Expect(l5.EndDate.Time).To(Equal(time.Date(1990, 5, 4, 0, 0, 0, 0, time.UTC)))

		l9, err := workflow.PresetConfig("")
		Expect(err).NotTo(HaveOccurred())
		Expect(l9.CollectionID).To(Equal(workflow.DefaultConfig().CollectionID))

		_, err = workflow.PresetConfig("sentinel2")
		Expect(err).To(HaveOccurred())
		Expect(workflow.Presets()).To(Equal([]string{"landsat5-l2", "landsat9-l1"}))
	})

	It("should load a yaml file over the defaults", func() {
		dir, err := os.MkdirTemp("", "scene-export")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)
		file := filepath.Join(dir, "config.yaml")
		Expect(os.WriteFile(file, []byte(`
start_date: 2022/03/01
end_date: "2022-09-30"
max_cloud_cover: 20
bands: [B4, B3, B2]
resampling: bilinear
destination:
  kind: gcs
  bucket: ibirite-exports
`), 0644)).To(Succeed())

		Expect(cfg.LoadFile(ctx, file)).To(Succeed())
		Expect(cfg.StartDate.Time).To(Equal(time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)))
		Expect(cfg.EndDate.Time).To(Equal(time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC)))
		Expect(cfg.MaxCloudCover).To(Equal(20.0))
		Expect(cfg.Bands).To(Equal([]string{"B4", "B3", "B2"}))
		Expect(cfg.Resampling).To(Equal(common.ResamplingBilinear))
		Expect(cfg.Destination).To(Equal(common.Destination{Kind: common.DestinationGCS, Folder: "GEE_Exports", Bucket: "ibirite-exports"}))
		Expect(cfg.CollectionID).To(Equal("LANDSAT/LC09/C02/T1"))
		Expect(cfg.Validate()).To(Succeed())
	})

	It("should load the area from a geojson file", func() {
		dir, err := os.MkdirTemp("", "scene-export")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)
		cfg.AOIFile = filepath.Join(dir, "ibirite.geojson")
		Expect(os.WriteFile(cfg.AOIFile, []byte(`{"type": "Feature", "properties": {"name": "Ibirite"}, "geometry": {"type": "Polygon",
			"coordinates": [[[580000, 7775000], [605000, 7776000], [607000, 7799000], [581000, 7798000], [580000, 7775000]]]}}`), 0644)).To(Succeed())

		Expect(cfg.LoadAOIFile(ctx)).To(Succeed())
		Expect(cfg.BBox).To(Equal([]float64{580000, 7775000, 607000, 7799000}))
	})

	It("should reject unknown fields", func() {
		dir, err := os.MkdirTemp("", "scene-export")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)
		file := filepath.Join(dir, "config.yaml")
		Expect(os.WriteFile(file, []byte("max_clouds: 20\n"), 0644)).To(Succeed())
		Expect(cfg.LoadFile(ctx, file)).NotTo(Succeed())
	})

	It("should load the environment", func() {
		vars := map[string]string{
			"SCENE_EXPORT_BANDS":              "B5,B6",
			"SCENE_EXPORT_SCALE":              "60",
			"SCENE_EXPORT_START_DATE":         "2022-02-01",
			"SCENE_EXPORT_DESTINATION_FOLDER": "Exports",
			"SCENE_EXPORT_RESAMPLING":         "bicubic",
			"SCENE_EXPORT_PCA":                "true",
			"SCENE_EXPORT_PCA_STANDARDIZE":    "true",
		}
		for k, v := range vars {
			Expect(os.Setenv(k, v)).To(Succeed())
		}
		defer func() {
			for k := range vars {
				os.Unsetenv(k)
			}
		}()

		Expect(cfg.LoadEnv()).To(Succeed())
		Expect(cfg.Bands).To(Equal([]string{"B5", "B6"}))
		Expect(cfg.Scale).To(Equal(60.0))
		Expect(cfg.StartDate.Time).To(Equal(time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC)))
		Expect(cfg.Destination.Folder).To(Equal("Exports"))
		Expect(cfg.Destination.Kind).To(Equal(common.DestinationDrive))
		Expect(cfg.Resampling).To(Equal(common.ResamplingBicubic))
		Expect(cfg.Location).To(Equal("Ibirite"))
		Expect(cfg.PCA).To(BeTrue())
		Expect(cfg.PCAConfig()).To(Equal(processor.PCAConfig{Threshold: 0.99, Standardize: true}))
	})

	It("should validate the configuration", func() {
		invalid := []func(c *workflow.Config){
			func(c *workflow.Config) { c.BBox = []float64{1, 2, 3} },
			func(c *workflow.Config) { c.SourceCRS = "31983" },
			func(c *workflow.Config) { c.CollectionID = "" },
			func(c *workflow.Config) { c.EndDate = c.StartDate },
			func(c *workflow.Config) { c.Bands = nil },
			func(c *workflow.Config) { c.Bands = []string{"B1", "B2", "B1"} },
			func(c *workflow.Config) { c.Scale = 0 },
			func(c *workflow.Config) { c.Destination = common.Destination{Kind: common.DestinationGCS} },
			func(c *workflow.Config) { c.Project = "" },
			func(c *workflow.Config) { c.PubSubTasksTopic, c.PubSubEventsTopic = "scene-export", "scene-export" },
			func(c *workflow.Config) { c.PCA, c.Bands = true, []string{"B4"} },
			func(c *workflow.Config) { c.PCA, c.PCAThreshold = true, 1.2 },
		}
		for i, modify := range invalid {
			c := workflow.DefaultConfig()
			c.Project = "ibirite-gis"
			modify(&c)
			Expect(c.Validate()).NotTo(Succeed(), "case %d", i)
		}

		cfg.PubSubTasksTopic = "scene-export-tasks"
		cfg.PubSubEventsTopic = "scene-export-events"
		cfg.PCA = true
		Expect(cfg.Validate()).To(Succeed())
		Expect(cfg.PubSubProjectID()).To(Equal("ibirite-gis"))
		Expect(cfg.PCAConfig().Threshold).To(Equal(0.99))
	})

	It("should parse dates in common layouts", func() {
		for _, s := range []string{"2022-06-15", "2022/06/15", "20220615", "2022-06-15T00:00:00Z"} {
			d, err := workflow.ParseDate(s)
			Expect(err).NotTo(HaveOccurred(), s)
			Expect(common.FormatDate(d.Time)).To(Equal("20220615"), s)
		}
	})
})
