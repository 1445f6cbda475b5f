package gateway

import (
	"strings"

	"github.com/skyhook-labs/cloudgate/pkg/runner"
)

// Status is the terminal outcome of a gateway call.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// EmptyResultText marks a command that ran cleanly and produced no output,
// so callers can tell "found nothing" apart from a transport failure.
const EmptyResultText = "no results"

// TimeoutText is returned when the child process hit the wall-clock limit.
const TimeoutText = "command timed out"

// Response is the uniform shape returned to callers across providers.
type Response struct {
	Status Status `json:"status"`
	Text   string `json:"text"`
}

// BuildResponse maps a raw execution result onto the caller-facing shape.
// Deterministic and pure: calling it twice on the same Result yields the
// same Response.
func BuildResponse(res runner.Result) Response {
	if res.TimedOut {
		return Response{Status: StatusError, Text: TimeoutText}
	}

	if res.ExitCode == 0 {
		// Exit 0 is success even with stderr chatter; some CLIs write
		// warnings there on clean runs.
		text := strings.TrimRight(res.Stdout, "\n")
		if text == "" {
			text = EmptyResultText
		}
		return Response{Status: StatusSuccess, Text: text}
	}

	text := strings.TrimRight(res.Stderr, "\n")
	if text == "" {
		text = strings.TrimRight(res.Stdout, "\n")
	}
	return Response{Status: StatusError, Text: text}
}
