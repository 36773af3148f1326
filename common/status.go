package common

//go:generate go run github.com/dmarkham/enumer -json -type Status -trimprefix Status

// Status of an export submission
type Status int

const (
	StatusSUBMITTED Status = iota
	StatusFAILED
)
