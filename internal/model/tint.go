package model

// Tint records which traffic direction dominated a network sample.
type Tint int

const (
	TintBoth Tint = iota
	TintDownload
	TintUpload
)

// TintOf classifies a pair of rates. Equal rates, zero included, are Both.
func TintOf(down, up uint64) Tint {
	switch {
	case down > up:
		return TintDownload
	case up > down:
		return TintUpload
	default:
		return TintBoth
	}
}

// Color returns the bar color used for the tint.
func (t Tint) Color() string {
	switch t {
	case TintDownload:
		return DownloadColor
	case TintUpload:
		return UploadColor
	case TintBoth:
		return BothColor
	}
	return BothColor
}

func (t Tint) String() string {
	switch t {
	case TintDownload:
		return "download"
	case TintUpload:
		return "upload"
	case TintBoth:
		return "both"
	}
	return "unknown"
}
