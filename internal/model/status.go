package model

type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusError
	StatusWarning
)

type StatusMessage struct {
	Kind StatusKind
	Text string
}

// ResultStatus picks the banner kind for a backend action result.
func ResultStatus(success bool, message string) StatusMessage {
	if success {
		return StatusMessage{Kind: StatusSuccess, Text: message}
	}
	return StatusMessage{Kind: StatusError, Text: message}
}
