package earthengine

// Resources of the Earth Engine REST API (v1) used by the client.
// Only the fields sent or read by this package are declared.

// Expression is a graph of values, the result being the node named Result
type Expression struct {
	Result string               `json:"result"`
	Values map[string]ValueNode `json:"values"`
}

// ValueNode is a node of an expression. Exactly one of its fields is set.
type ValueNode struct {
	ConstantValue           interface{}         `json:"constantValue,omitempty"`
	ArrayValue              *ArrayValue         `json:"arrayValue,omitempty"`
	DictionaryValue         *DictionaryValue    `json:"dictionaryValue,omitempty"`
	FunctionInvocationValue *FunctionInvocation `json:"functionInvocationValue,omitempty"`
	ValueReference          string              `json:"valueReference,omitempty"`
}

// ArrayValue is a list of nodes
type ArrayValue struct {
	Values []*ValueNode `json:"values"`
}

// DictionaryValue maps names to nodes
type DictionaryValue struct {
	Values map[string]ValueNode `json:"values"`
}

// FunctionInvocation calls an Earth Engine algorithm
type FunctionInvocation struct {
	FunctionName string               `json:"functionName"`
	Arguments    map[string]ValueNode `json:"arguments,omitempty"`
}

// ComputeValueRequest is the body of value:compute
type ComputeValueRequest struct {
	Expression *Expression `json:"expression"`
}

type computeValueResponse struct {
	Result interface{} `json:"result"`
}

// ExportImageRequest is the body of image:export
type ExportImageRequest struct {
	Description       string                  `json:"description,omitempty"`
	Expression        *Expression             `json:"expression,omitempty"`
	FileExportOptions *ImageFileExportOptions `json:"fileExportOptions,omitempty"`
	Grid              *PixelGrid              `json:"grid,omitempty"`
	MaxPixels         int64                   `json:"maxPixels,omitempty,string"`
	RequestID         string                  `json:"requestId,omitempty"`
}

// ImageFileExportOptions sets the format and the destination of an export
type ImageFileExportOptions struct {
	FileFormat       string            `json:"fileFormat,omitempty"`
	DriveDestination *DriveDestination `json:"driveDestination,omitempty"`
	GcsDestination   *GcsDestination   `json:"gcsDestination,omitempty"`
}

// DriveDestination is a folder of the Google Drive of the caller
type DriveDestination struct {
	Folder         string `json:"folder,omitempty"`
	FilenamePrefix string `json:"filenamePrefix,omitempty"`
}

// GcsDestination is a Cloud Storage bucket
type GcsDestination struct {
	Bucket         string `json:"bucket,omitempty"`
	FilenamePrefix string `json:"filenamePrefix,omitempty"`
}

// PixelGrid of the exported image
type PixelGrid struct {
	CrsCode string `json:"crsCode,omitempty"`
}

// Operation is a long-running operation (only its name is used)
type Operation struct {
	Name string `json:"name"`
	Done bool   `json:"done,omitempty"`
}
