package workflow_test

import (
	"encoding/json"
	"errors"

	"github.com/airbusgeo/scene-exporter/catalog"
	"github.com/airbusgeo/scene-exporter/common"
	"github.com/airbusgeo/scene-exporter/service"
	"github.com/airbusgeo/scene-exporter/workflow"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"go.uber.org/multierr"
)

const singleSceneCollection = `{
	"type": "ImageCollection",
	"id": "LANDSAT/LC09/C02/T1",
	"features": [{
		"type": "Image",
		"id": "LANDSAT/LC09/C02/T1/LC09_218074_20220615",
		"bands": [{"id": "B1"}, {"id": "B2"}, {"id": "B3"}, {"id": "B4"}, {"id": "B5"}, {"id": "B6"}, {"id": "B7"}, {"id": "B8"}, {"id": "B9"}],
		"properties": {"CLOUD_COVER": 3.2, "system:time_start": 1655297670000}
	}]}`

const threeScenesCollection = `{
	"type": "ImageCollection",
	"features": [
		{"type": "Image", "id": "LANDSAT/LC09/C02/T1/LC09_218074_20220803", "properties": {"CLOUD_COVER": 5.1, "system:time_start": 1659531270000}},
		{"type": "Image", "id": "LANDSAT/LC09/C02/T1/LC09_218074_20220410", "properties": {"CLOUD_COVER": 1.4, "system:time_start": 1649595270000}},
		{"type": "Image", "id": "LANDSAT/LC09/C02/T1/LC09_218074_20221022", "properties": {"CLOUD_COVER": 10, "system:time_start": 1666443270000}}
	]}`

func invocation(node interface{}) map[string]interface{} {
	b, err := json.Marshal(node)
	Expect(err).NotTo(HaveOccurred())
	m := map[string]interface{}{}
	Expect(json.Unmarshal(b, &m)).To(Succeed())
	return m["functionInvocationValue"].(map[string]interface{})
}

var _ = Describe("Workflow", func() {
	var cfg workflow.Config
	var result workflow.Result
	var err error

	BeforeEach(func() {
		cfg = workflow.DefaultConfig()
		cfg.Project = "ibirite-gis"
		earthEngine.exports = nil
		earthEngine.failing = nil
		earthEngine.statistics = ""
		notifier.payloads = nil
	})

	Context("with a single matching scene", func() {
		BeforeEach(func() {
			earthEngine.collection = singleSceneCollection
			cfg.Bands = []string{"B1", "B2"}
			result, err = wf.Run(ctx, cfg)
		})

		It("should select the scene", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Scene.ID).To(Equal("LANDSAT/LC09/C02/T1/LC09_218074_20220615"))
			Expect(result.Scene.CloudCover).To(Equal(3.2))
			Expect(result.RunID).NotTo(BeEmpty())
		})

		It("should submit one single-band export per band", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(earthEngine.exports).To(HaveLen(2))
			for i, name := range []string{"L9_B1_Ibirite_20220615", "L9_B2_Ibirite_20220615"} {
				req := earthEngine.exports[i]
				Expect(req.Description).To(Equal(name))
				Expect(req.FileExportOptions.DriveDestination.FilenamePrefix).To(Equal(name))
				Expect(req.FileExportOptions.DriveDestination.Folder).To(Equal("GEE_Exports"))
				Expect(req.MaxPixels).To(Equal(int64(1e13)))
				Expect(req.Grid.CrsCode).To(Equal("EPSG:31983"))

				root := req.Expression.Values[req.Expression.Result]
				bounds := invocation(root)
				Expect(bounds["functionName"]).To(Equal("Image.clipToBoundsAndScale"))
				Expect(bounds["arguments"]).To(HaveKeyWithValue("scale", map[string]interface{}{"constantValue": 30.0}))

				reproject := bounds["arguments"].(map[string]interface{})["input"].(map[string]interface{})["functionInvocationValue"].(map[string]interface{})
				Expect(reproject["functionName"]).To(Equal("Image.reproject"))
				b, _ := json.Marshal(reproject["arguments"])
				Expect(string(b)).To(ContainSubstring(`"EPSG:31983"`))

				clip := reproject["arguments"].(map[string]interface{})["image"].(map[string]interface{})["functionInvocationValue"].(map[string]interface{})
				Expect(clip["functionName"]).To(Equal("Image.clip"))
				b, _ = json.Marshal(clip["arguments"])
				Expect(string(b)).To(ContainSubstring("GeometryConstructors.Rectangle"))
				Expect(string(b)).To(ContainSubstring(`"constantValue":578524`))
				Expect(string(b)).To(ContainSubstring(`"constantValue":7800187`))

				selection := clip["arguments"].(map[string]interface{})["input"].(map[string]interface{})["functionInvocationValue"].(map[string]interface{})
				Expect(selection["functionName"]).To(Equal("Image.select"))
				b, _ = json.Marshal(selection["arguments"].(map[string]interface{})["bandSelectors"])
				Expect(string(b)).To(MatchJSON(`{"arrayValue": {"values": [{"constantValue": "` + cfg.Bands[i] + `"}]}}`))
			}
		})

		It("should report and notify every submission", func() {
			Expect(result.Report.Submitted).To(HaveLen(2))
			Expect(result.Report.Failed).To(BeEmpty())
			Expect(result.Report.Submitted[0].Operation).To(Equal("projects/ibirite-gis/operations/L9_B1_Ibirite_20220615"))
			Expect(notifier.payloads).To(HaveLen(2))
			Expect(notifier.payloads[1].Name).To(Equal("L9_B2_Ibirite_20220615"))
			Expect(notifier.payloads[1].Status).To(Equal(common.StatusSUBMITTED))
			Expect(notifier.payloads[1].RunID).To(Equal(result.RunID))
		})
	})

	Context("with several matching scenes", func() {
		BeforeEach(func() {
			earthEngine.collection = threeScenesCollection
			cfg.Bands = []string{"B4"}
			result, err = wf.Run(ctx, cfg)
		})

		It("should select the scene with the lowest cloud cover", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Scene.ID).To(Equal("LANDSAT/LC09/C02/T1/LC09_218074_20220410"))
			Expect(earthEngine.exports).To(HaveLen(1))
			Expect(earthEngine.exports[0].Description).To(Equal("L9_B4_Ibirite_20220410"))
		})
	})

	Context("with an empty collection", func() {
		BeforeEach(func() {
			earthEngine.collection = `{"type": "ImageCollection", "features": []}`
			result, err = wf.Run(ctx, cfg)
		})

		It("should fail explicitly", func() {
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, catalog.ErrNoSceneFound)).To(BeTrue())
			step, _, ok := service.FailedStep(err)
			Expect(ok).To(BeTrue())
			Expect(step).To(Equal(service.StepSelection))
			Expect(earthEngine.exports).To(BeEmpty())
		})
	})

	Context("when the cloud cover equals the threshold", func() {
		BeforeEach(func() {
			earthEngine.collection = `{"type": "ImageCollection", "features": [
				{"type": "Image", "id": "LANDSAT/LC09/C02/T1/LC09_218074_20221022", "properties": {"CLOUD_COVER": 10, "system:time_start": 1666443270000}}]}`
			result, err = wf.Run(ctx, cfg)
		})

		It("should not select the scene", func() {
			Expect(errors.Is(err, catalog.ErrNoSceneFound)).To(BeTrue())
		})
	})

	Context("when a band is not available", func() {
		BeforeEach(func() {
			earthEngine.collection = singleSceneCollection
			cfg.Bands = []string{"B1", "B12"}
			result, err = wf.Run(ctx, cfg)
		})

		It("should fail at the transform step", func() {
			step, _, ok := service.FailedStep(err)
			Expect(ok).To(BeTrue())
			Expect(step).To(Equal(service.StepTransform))
			Expect(earthEngine.exports).To(BeEmpty())
		})
	})

	Context("when an export is rejected", func() {
		BeforeEach(func() {
			earthEngine.collection = singleSceneCollection
			earthEngine.failing = map[string]bool{"L9_B2_Ibirite_20220615": true}
			cfg.Bands = []string{"B1", "B2", "B3"}
			result, err = wf.Run(ctx, cfg)
		})

		It("should submit the other bands", func() {
			Expect(err).To(HaveOccurred())
			Expect(earthEngine.exports).To(HaveLen(2))
			Expect(earthEngine.exports[0].Description).To(Equal("L9_B1_Ibirite_20220615"))
			Expect(earthEngine.exports[1].Description).To(Equal("L9_B3_Ibirite_20220615"))
			Expect(result.Report.Submitted).To(HaveLen(2))
			Expect(result.Report.Failed).To(HaveLen(1))
			Expect(result.Report.Failed[0].Band).To(Equal("B2"))
		})

		It("should return a temporary export error for the band", func() {
			errs := multierr.Errors(err)
			Expect(errs).To(HaveLen(1))
			step, band, ok := service.FailedStep(errs[0])
			Expect(ok).To(BeTrue())
			Expect(step).To(Equal(service.StepExport))
			Expect(band).To(Equal("B2"))
			Expect(service.Temporary(errs[0])).To(BeTrue())
		})

		It("should notify the failure", func() {
			Expect(notifier.payloads).To(HaveLen(3))
			Expect(notifier.payloads[1].Status).To(Equal(common.StatusFAILED))
			Expect(notifier.payloads[1].Message).To(ContainSubstring("export[B2]"))
		})
	})

	Context("with an invalid area", func() {
		BeforeEach(func() {
			earthEngine.collection = singleSceneCollection
			cfg.BBox = []float64{609237, 7774048, 578524, 7800187}
			result, err = wf.Run(ctx, cfg)
		})

		It("should fail at the area step", func() {
			step, _, ok := service.FailedStep(err)
			Expect(ok).To(BeTrue())
			Expect(step).To(Equal(service.StepArea))
		})
	})

	Context("with principal components", func() {
		BeforeEach(func() {
			earthEngine.collection = singleSceneCollection
			earthEngine.statistics = `{
				"mean": {"B4": 0.1, "B3": 0.08, "B2": 0.07},
				"covariance": {"array": [[4, 0, 0], [0, 1, 0], [0, 0, 0.05]]}}`
			cfg.Bands = []string{"B4", "B3", "B2"}
			cfg.PCA = true
			result, err = wf.Run(ctx, cfg)
		})

		It("should export the components explaining 99% of the variance", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Image.Bands).To(Equal([]string{"PC1", "PC2"}))
			Expect(result.Image.Components.Inputs).To(Equal([]string{"B4", "B3", "B2"}))
			Expect(earthEngine.exports).To(HaveLen(2))
			Expect(earthEngine.exports[0].Description).To(Equal("L9_PC1_Ibirite_20220615"))
			Expect(earthEngine.exports[1].Description).To(Equal("L9_PC2_Ibirite_20220615"))
			Expect(earthEngine.exports[1].FileExportOptions.DriveDestination.FilenamePrefix).To(Equal("L9_PC2_Ibirite_20220615"))
		})

		It("should project the selected bands", func() {
			req := earthEngine.exports[0]
			rename := invocation(invocation(req.Expression.Values[req.Expression.Result])["arguments"].(map[string]interface{})["input"])
			Expect(rename["functionName"]).To(Equal("Image.rename"))
			b, _ := json.Marshal(req.Expression)
			Expect(string(b)).To(ContainSubstring(`"bandSelectors":{"arrayValue":{"values":[{"constantValue":"B4"},{"constantValue":"B3"},{"constantValue":"B2"}]}}`))
			Expect(string(b)).To(ContainSubstring(`"functionName":"Reducer.sum"`))
		})
	})

	Context("with principal components over an empty area", func() {
		BeforeEach(func() {
			earthEngine.collection = singleSceneCollection
			earthEngine.statistics = `{"mean": {"B4": null, "B3": null}, "covariance": {"array": null}}`
			cfg.Bands = []string{"B4", "B3"}
			cfg.PCA = true
			result, err = wf.Run(ctx, cfg)
		})

		It("should fail at the transform step", func() {
			step, _, ok := service.FailedStep(err)
			Expect(ok).To(BeTrue())
			Expect(step).To(Equal(service.StepTransform))
			Expect(earthEngine.exports).To(BeEmpty())
		})
	})
})
