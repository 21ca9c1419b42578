package httpapi

import (
	"encoding/json"
	"strings"

	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
)

// tagList accepts either a JSON array of strings or a single comma-joined
// string, the two shapes the client historically sends for card tags.
type tagList []string

func (t *tagList) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var joined string
		if err := json.Unmarshal(b, &joined); err != nil {
			return err
		}
		parts := strings.Split(joined, ",")
		*t = make(tagList, 0, len(parts))
		for _, p := range parts {
			*t = append(*t, strings.TrimSpace(p))
		}
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	*t = arr
	return nil
}

// optionalInt distinguishes an absent field from an explicit null in a
// PATCH body: set is true when the key was present, valid when a value was
// given.
type optionalInt struct {
	set   bool
	valid bool
	value int
}

func (o *optionalInt) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		return nil
	}
	if err := json.Unmarshal(b, &o.value); err != nil {
		return err
	}
	o.valid = true
	return nil
}

// optionalString is the string counterpart of optionalInt.
type optionalString struct {
	set   bool
	valid bool
	value string
}

func (o *optionalString) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		return nil
	}
	if err := json.Unmarshal(b, &o.value); err != nil {
		return err
	}
	o.valid = true
	return nil
}

// optionalCorrection tracks presence of the correction field; an explicit
// null or empty object clears the sub-record.
type optionalCorrection struct {
	set   bool
	value *model.Correction
}

func (o *optionalCorrection) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		o.value = nil
		return nil
	}
	var c model.Correction
	if err := json.Unmarshal(b, &c); err != nil {
		return err
	}
	o.value = c.Normalize()
	return nil
}
