package model

// RunState is the state of a single upload batch run
type RunState int

const (
	RunStateIdle RunState = iota
	RunStateRunning
	RunStateCompleted
	RunStateAborted
)

func (s RunState) String() string {
	switch s {
	case RunStateIdle:
		return "idle"
	case RunStateRunning:
		return "running"
	case RunStateCompleted:
		return "completed"
	case RunStateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

type UploadStatus int

const (
	UploadStatusUploaded UploadStatus = iota
	UploadStatusFailed
)

func (s UploadStatus) String() string {
	if s == UploadStatusUploaded {
		return "uploaded"
	}
	return "failed"
}

// UploadRecord is what the journal keeps per local file
type UploadRecord struct {
	Size       int64        `json:"size"`
	RemoteName string       `json:"remote"`
	Status     UploadStatus `json:"status"`
	Error      string       `json:"error,omitempty"`
	UploadedAt int64        `json:"at"`
}

// UploadSummary describes the outcome of one batch run
type UploadSummary struct {
	Succeeded int
	Total     int
	Uploaded  []string // full paths, in upload order
	Failed    string   // full path of the file that aborted the run
	State     RunState
}
