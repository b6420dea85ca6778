package model

// RawLog is the intermediate type produced by decoding an uploaded file and
// consumed by the pipeline: the file contents as an ordered list of text lines.
type RawLog struct {
	Source string   // originating file name (informational)
	Lines  []string // decoded file contents, one entry per line
}
