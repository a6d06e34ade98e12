package topictree

import (
	"strings"

	"github.com/purposeinplay/go-observer/errors"
)

// Separator separates the segments of a topic.
const Separator = "."

// Split returns the segments of topic. The root topic "" has no segments.
func Split(topic string) []string {
	if topic == "" {
		return nil
	}

	return strings.Split(topic, Separator)
}

// Join joins segments into a topic.
func Join(segments ...string) string {
	return strings.Join(segments, Separator)
}

// Validate returns an invalid-argument error when topic contains an empty
// segment, as in ".a", "a." or "a..b". The root topic "" is valid.
func Validate(topic string) error {
	for _, seg := range Split(topic) {
		if seg == "" {
			return errors.New(
				errors.ErrorTypeInvalid,
				CodeEmptySegment,
				"topic %q has an empty segment",
				topic,
			)
		}
	}

	return nil
}

// Fields splits a whitespace separated topic list. A blank list stands for
// the root topic alone. Runs of whitespace count as one separator, so
// "a  b" is the two topics "a" and "b" and never adds the root topic.
func Fields(topics string) []string {
	fields := strings.Fields(topics)
	if len(fields) == 0 {
		return []string{""}
	}

	return fields
}
