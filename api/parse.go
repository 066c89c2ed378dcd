package api

import (
	"strings"
	"time"
)

// TimestampLayout matches the offset format the API uses for all of its
// timestamps, e.g. "2020-01-02T23:51:47+0000".
const TimestampLayout = "2006-01-02T15:04:05-0700"

// ParseTimestamp converts an API timestamp string into an absolute instant.
// Empty or unparsable values yield the zero time: payloads legitimately
// omit timestamps in their public views.
func ParseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(TimestampLayout, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

// ReferenceGUID extracts the resource GUID from a reference URL such as
// "https://api-ssl.bitly.com/v4/groups/Bk1jH2kLmNo". Returns an empty
// string when the reference is absent.
func ReferenceGUID(reference string) string {
	if reference == "" {
		return ""
	}
	trimmed := strings.TrimRight(reference, "/")
	return trimmed[strings.LastIndex(trimmed, "/")+1:]
}
