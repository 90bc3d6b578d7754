package jsonlib

import (
	"encoding/json"
	"maps"

	"github.com/cockroachdb/errors"
)

// Flatten serializes Defined and Extra as one flat JSON object. Keys that
// Defined declares always win over the same key in Extra, and unknown keys
// read from JSON are kept in Extra so they survive a round trip.
// T should be a struct or map[string]
type Flatten[T any] struct {
	Defined T
	Extra   map[string]any
}

func (f Flatten[T]) MarshalJSON() ([]byte, error) {
	definedFields, err := StructToMap(f.Defined)
	if err != nil {
		return nil, errors.Wrap(err, "Could not convert defined fields into a map")
	}

	output := make(map[string]any, len(f.Extra)+len(definedFields))
	maps.Copy(output, f.Extra)
	maps.Copy(output, definedFields)

	return json.Marshal(output)
}

func (f *Flatten[T]) UnmarshalJSON(b []byte) error {
	var defined T
	if err := json.Unmarshal(b, &defined); err != nil {
		return errors.Wrap(err, "Could not unmarshal json data into defined fields")
	}

	definedFields, err := StructToMap(defined)
	if err != nil {
		return errors.Wrap(err, "Could not convert defined fields to a map")
	}

	everything := map[string]any{}
	if err := json.Unmarshal(b, &everything); err != nil {
		return errors.Wrap(err, "Could not unmarshal json data into a map")
	}

	maps.DeleteFunc(everything, func(key string, _ any) bool {
		_, isDefined := definedFields[key]
		return isDefined
	})

	f.Defined = defined
	f.Extra = everything
	return nil
}

func (f Flatten[T]) ToMap() (map[string]any, error) {
	return StructToMap(f)
}

func (f *Flatten[T]) FromMap(m map[string]any) error {
	converted, err := MapToStruct[Flatten[T]](m)
	if err != nil {
		return errors.Wrap(err, "Could not convert map to struct")
	}

	*f = converted
	return nil
}

// StructToMap round trips s through JSON, so the map keys follow s's json tags
func StructToMap(s any) (map[string]any, error) {
	jsonBytes, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "Could not marshal struct")
	}

	fields := map[string]any{}
	if err := json.Unmarshal(jsonBytes, &fields); err != nil {
		return nil, errors.Wrap(err, "Could not unmarshal struct into a map")
	}

	return fields, nil
}

func MapToStruct[T any](m map[string]any) (T, error) {
	var t T
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return t, errors.Wrap(err, "Could not marshal map")
	}

	if err := json.Unmarshal(jsonBytes, &t); err != nil {
		return t, errors.Wrap(err, "Could not unmarshal json map to object")
	}

	return t, nil
}
