package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/lib/pq"
)

// TagSet is an ordered, case-insensitively de-duplicated list of labels such as skills or expertise areas.
// It is stored as a Postgres text[] column.
type TagSet []string

// NewTagSet normalises items: trims whitespace, drops empties and keeps the first spelling of duplicates.
func NewTagSet(items ...string) TagSet {
	seen := make(map[string]struct{}, len(items))
	set := make(TagSet, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		set = append(set, item)
	}
	return set
}

// ParseTagSet splits a comma separated string into a TagSet.
func ParseTagSet(raw string) TagSet {
	return NewTagSet(strings.Split(raw, ",")...)
}

// Contains reports membership ignoring case.
func (t TagSet) Contains(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, item := range t {
		if strings.EqualFold(item, tag) {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer.
func (t TagSet) Value() (driver.Value, error) {
	if t == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(t).Value()
}

// Scan implements sql.Scanner.
func (t *TagSet) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*t = NewTagSet(arr...)
	return nil
}

// UnmarshalJSON accepts either a JSON array or a comma separated string.
func (t *TagSet) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = NewTagSet(list...)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = ParseTagSet(raw)
	return nil
}
