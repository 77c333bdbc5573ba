package records

import (
	"reflect"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

// decode copies a loosely typed JSON value into out. Numbers become
// decimal strings and booleans become "true"/"false", so a record written
// as {"model break": true} reads the same as {"model break": "True"}.
func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncKind(boolAsWord),
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// boolAsWord replaces mapstructure's weak "1"/"0" rendering of booleans.
func boolAsWord(from, to reflect.Kind, data any) (any, error) {
	if from == reflect.Bool && to == reflect.String {
		return strconv.FormatBool(data.(bool)), nil
	}
	return data, nil
}

// objectList accepts either a single object or a list and returns the
// objects it contains. Non-object entries are dropped.
func objectList(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// decodeList decodes every object in v into a T. Entries that cannot be
// decoded are skipped. fill, when non-nil, runs after each successful
// decode with the source object.
func decodeList[T any](v any, fill func(src map[string]any, item *T)) []T {
	var out []T
	for _, m := range objectList(v) {
		var item T
		if err := decode(m, &item); err != nil {
			continue
		}
		if fill != nil {
			fill(m, &item)
		}
		out = append(out, item)
	}
	return out
}

// present reports whether key exists in m with a non-null value.
func present(m map[string]any, key string) bool {
	v, ok := m[key]
	return ok && v != nil
}
