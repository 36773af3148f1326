package common

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// Constellation defines the kind of satellites
type Constellation int

const (
	Unknown  Constellation = iota
	Landsat5               // LT05_PPPRRR_YYYYMMDD or LT05_LLLL_PPPRRR_YYYYMMDD_yyyymmdd_CX_TX
	Landsat7               // LE07_...
	Landsat8               // LC08_...
	Landsat9               // LC09_...
)

// DateLayout is the layout of the acquisition date in product ids and export names
const DateLayout = "20060102"

// DefaultExportNameTemplate is the naming scheme of the exported files, e.g. L9_B1_Ibirite_20220615
const DefaultExportNameTemplate = "{SENSOR}_{BAND}_{LOCATION}_{DATE}"

var landsatProductIdRe = regexp.MustCompile("^L[COTEM]0[5789]_")

// GetConstellationFromString returns the constellation from the user input
func GetConstellationFromString(input string) Constellation {
	switch strings.ToLower(input) {
	case "landsat5", "landsat-5", "l5":
		return Landsat5
	case "landsat7", "landsat-7", "l7":
		return Landsat7
	case "landsat8", "landsat-8", "l8":
		return Landsat8
	case "landsat9", "landsat-9", "l9":
		return Landsat9
	}
	return GetConstellationFromProductId(input)
}

// GetConstellationFromProductId accepts a product id or an Earth Engine asset id
// (LANDSAT/LC09/C02/T1/LC09_218074_20220615)
func GetConstellationFromProductId(sceneName string) Constellation {
	sceneName = path.Base(sceneName)
	if !landsatProductIdRe.MatchString(sceneName) {
		return Unknown
	}
	switch sceneName[3] {
	case '5':
		return Landsat5
	case '7':
		return Landsat7
	case '8':
		return Landsat8
	case '9':
		return Landsat9
	}
	return Unknown
}

// SensorTag returns the short name of the constellation used in export names (L9...)
func (c Constellation) SensorTag() string {
	switch c {
	case Landsat5:
		return "L5"
	case Landsat7:
		return "L7"
	case Landsat8:
		return "L8"
	case Landsat9:
		return "L9"
	}
	return ""
}

// GetDateFromProductId returns the acquisition date encoded in the product id
func GetDateFromProductId(sceneName string) (time.Time, error) {
	format, err := Info(sceneName)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(DateLayout, format["DATE"])
}

// Info returns the fields encoded in a Landsat product id
func Info(sceneName string) (map[string]string, error) {
	sceneName = path.Base(sceneName)
	if GetConstellationFromProductId(sceneName) == Unknown {
		return nil, fmt.Errorf("Info: constellation not supported: %s", sceneName)
	}
	sensorCollection := "oli-tirs"
	switch sceneName[1:2] {
	case "O":
		sensorCollection = "oli"
	case "T":
		sensorCollection = "tm"
		if sceneName[3] == '8' || sceneName[3] == '9' {
			sensorCollection = "tirs"
		}
	case "E":
		sensorCollection = "etm"
	case "M":
		sensorCollection = "mss"
	}

	// LC09_L1TP_218074_20220615_20220616_02_T1
	if len(sceneName) >= len("LXSS_LLLL_PPPRRR_YYYYMMDD_yyyymmdd_CX_TX") && sceneName[9] == '_' {
		return map[string]string{
			"SCENE":            sceneName,
			"MISSION_ID":       sceneName[0:1] + sceneName[2:4],
			"PROCESSING_LEVEL": sceneName[5:9],
			"PATH":             sceneName[10:13],
			"ROW":              sceneName[13:16],
			"DATE":             sceneName[17:25],
			"YEAR":             sceneName[17:21],
			"MONTH":            sceneName[21:23],
			"DAY":              sceneName[23:25],
			"COLLECTION":       sensorCollection,
		}, nil
	}
	// LC09_218074_20220615 (Earth Engine system:index)
	if len(sceneName) >= len("LXSS_PPPRRR_YYYYMMDD") && sceneName[11] == '_' {
		return map[string]string{
			"SCENE":      sceneName,
			"MISSION_ID": sceneName[0:1] + sceneName[2:4],
			"PATH":       sceneName[5:8],
			"ROW":        sceneName[8:11],
			"DATE":       sceneName[12:20],
			"YEAR":       sceneName[12:16],
			"MONTH":      sceneName[16:18],
			"DAY":        sceneName[18:20],
			"COLLECTION": sensorCollection,
		}, nil
	}
	return nil, fmt.Errorf("invalid Landsat file name: %s", sceneName)
}

/**
 * FormatBrackets replaces in <str> all {keys} of <info> by the corresponding value
 */
func FormatBrackets(str string, infos ...map[string]string) string {
	for _, info := range infos {
		for k, v := range info {
			str = strings.ReplaceAll(str, "{"+k+"}", v)
		}
	}
	return str
}

// FormatDate formats the acquisition date (UTC) as yyyyMMdd
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ExportName returns <sensor>_<band>_<location>_<date>
func ExportName(sensor, band, location, date string) string {
	return FormatExportName(DefaultExportNameTemplate, sensor, band, location, date)
}

// FormatExportName fills the template with SENSOR, BAND, LOCATION and DATE
func FormatExportName(template, sensor, band, location, date string) string {
	return FormatBrackets(template, map[string]string{
		"SENSOR":   sensor,
		"BAND":     band,
		"LOCATION": location,
		"DATE":     date,
	})
}
