package sqlite

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
)

// storeErr classifies a failed store operation. Driver-level failures
// (closed connection, locked or corrupt database file) surface as
// EUNAVAILABLE; application errors pass through unchanged.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *harvest.Error
	if errors.As(err, &e) {
		return err
	}
	return harvest.Errorf(harvest.EUNAVAILABLE, "%s: %v", op, err)
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
// Returns an error if parsing fails with a descriptive message including the field name.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// parseNullableRFC3339 parses an optional RFC3339 timestamp column.
// A nil input yields a nil time.
func parseNullableRFC3339(value *string, fieldName string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := parseRFC3339(*value, fieldName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// formatNullableRFC3339 formats an optional timestamp for storage.
func formatNullableRFC3339(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
