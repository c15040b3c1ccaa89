// Package ids mints sortable identifiers for objects that live outside Postgres sequences.
package ids

import "github.com/segmentio/ksuid"

func New() string {
	return ksuid.New().String()
}
