package postgres

import (
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// nullString maps the empty string to SQL NULL for optional columns.
func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func fromNull(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func marshalDetails(details map[string]any) []byte {
	if len(details) == 0 {
		return []byte("{}")
	}
	b, err := json.Marshal(details)
	if err != nil {
		return []byte("{}")
	}
	return b
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
