package common

import "github.com/oklog/ulid/v2"

// NewSessionID returns an opaque, process-unique session identifier such as
// "session_01J9Z3K6Q8M2V4X7T1R5N0B8CD". ULIDs sort by creation time.
func NewSessionID() string {
	return "session_" + ulid.Make().String()
}
