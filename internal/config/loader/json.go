package loader

import (
	"errors"

	"github.com/tidwall/gjson"
)

// errInvalidJSON is wrapped by ParseError for malformed JSON documents.
var errInvalidJSON = errors.New("invalid JSON")

func decodeJSON(data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Message: "malformed document", Err: errInvalidJSON}
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, &ParseError{Message: "top level must be an object", Err: errInvalidJSON}
	}
	return jsonObject(doc), nil
}

// jsonObject walks a gjson object. Whole numbers become int64 to match the
// TOML loader.
func jsonObject(r gjson.Result) map[string]any {
	out := make(map[string]any)
	r.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = jsonValue(value)
		return true
	})
	return out
}

func jsonValue(r gjson.Result) any {
	switch {
	case r.IsObject():
		return jsonObject(r)
	case r.IsArray():
		items := r.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = jsonValue(item)
		}
		return out
	}
	switch r.Type {
	case gjson.Number:
		if f := r.Float(); f == float64(int64(f)) {
			return r.Int()
		}
		return r.Float()
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Null:
		return nil
	default:
		return r.String()
	}
}
