package storage

import "fmt"

// OutputKey addresses one exported worksheet CSV.
type OutputKey struct {
	Category string
	Year     string
	Month    string
	Stem     string
	Sheet    string // already sanitized
}

func (k OutputKey) Key() string {
	return fmt.Sprintf("%s/%s/%s/%s__%s.csv", k.Category, k.Year, k.Month, k.Stem, k.Sheet)
}

// ArchiveKey addresses the relocated original under the archive prefix.
type ArchiveKey struct {
	Category string
	Year     string
	Month    string
	Name     string // original filename
}

func (k ArchiveKey) Key() string {
	return fmt.Sprintf("_archive/%s/%s/%s/%s", k.Category, k.Year, k.Month, k.Name)
}
