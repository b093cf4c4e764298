// Package repository holds helpers shared by the storage engines.
package repository

import (
	"database/sql"
	"encoding/json"
)

// EncodeSkills serializes skills to the JSON text stored in the skills column.
// A nil slice is stored as "[]".
func EncodeSkills(skills []string) string {
	if skills == nil {
		skills = []string{}
	}
	b, err := json.Marshal(skills)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeSkills parses the skills column. NULL, empty or malformed values
// decode to an empty slice instead of an error.
func DecodeSkills(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return []string{}
	}
	var skills []string
	if err := json.Unmarshal([]byte(raw.String), &skills); err != nil || skills == nil {
		return []string{}
	}
	return skills
}

// NullableString maps an empty pointer target to SQL NULL.
func NullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr is the inverse of NullableString.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
