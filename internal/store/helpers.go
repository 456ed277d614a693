package store

import (
	"strings"
	"time"
)

// now returns the current UTC time formatted with millisecond precision.
func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
