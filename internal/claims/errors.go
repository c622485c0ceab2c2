package claims

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound: the referenced claim or document does not exist, or its backing
// file is gone from storage.
var ErrNotFound = errors.New("record not found")

// ValidationError carries per-field messages for a rejected submission. No
// record is persisted when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
