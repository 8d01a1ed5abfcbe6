package processor

import "thumbnailer/internal/files"

type Status int

const (
	StatusSucceeded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stage names the pipeline step an outcome was decided in
type Stage string

const (
	StageFilter    Stage = "filter"
	StageDownload  Stage = "download"
	StageTransform Stage = "transform"
	StageUpload    Stage = "upload"
	StageDone      Stage = "done"
)

// Outcome is the result of processing one notification. A failed outcome
// ends that object only; the rest of the batch carries on.
type Outcome struct {
	Source    files.S3Object
	Thumbnail files.S3Object
	Status    Status
	Stage     Stage
	Reason    string
	Err       error
}

func (o Outcome) Succeeded() bool { return o.Status == StatusSucceeded }
func (o Outcome) Skipped() bool   { return o.Status == StatusSkipped }
func (o Outcome) Failed() bool    { return o.Status == StatusFailed }

func succeeded(source, thumbnail files.S3Object) Outcome {
	return Outcome{Source: source, Thumbnail: thumbnail, Status: StatusSucceeded, Stage: StageDone}
}

func skipped(source files.S3Object, reason string) Outcome {
	return Outcome{Source: source, Status: StatusSkipped, Stage: StageFilter, Reason: reason}
}

func failed(source files.S3Object, stage Stage, err error) Outcome {
	return Outcome{Source: source, Status: StatusFailed, Stage: stage, Err: err}
}
