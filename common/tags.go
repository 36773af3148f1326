package common

// Image properties
const (
	PropertyCloudCover     = "CLOUD_COVER"
	PropertyCloudCoverLand = "CLOUD_COVER_LAND"
	PropertyTimeStart      = "system:time_start"
	PropertyIndex          = "system:index"
	PropertySpacecraftID   = "SPACECRAFT_ID"
	PropertyProductID      = "LANDSAT_PRODUCT_ID"
	PropertyWRSPath        = "WRS_PATH"
	PropertyWRSRow         = "WRS_ROW"
	PropertySunAzimuth     = "SUN_AZIMUTH"
	PropertySunElevation   = "SUN_ELEVATION"
)

// Log & message tags
const (
	TagSceneID    = "sceneID"
	TagBand       = "band"
	TagExportName = "exportName"
	TagOperation  = "operation"
	TagRunID      = "runID"
)
