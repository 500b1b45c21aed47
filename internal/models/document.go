package models

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Stored documents may carry keys this service never reads, written by older
// clients or by hand. They are kept in an Extra map on each node and written
// back verbatim so whole-document rewrites do not lose them.

var knownKeysCache sync.Map // reflect.Type -> map[string]struct{}

// knownKeys lists the JSON keys a struct type declares through its tags.
func knownKeys(t reflect.Type) map[string]struct{} {
	if cached, ok := knownKeysCache.Load(t); ok {
		return cached.(map[string]struct{})
	}
	keys := map[string]struct{}{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" || !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		keys[name] = struct{}{}
	}
	knownKeysCache.Store(t, keys)
	return keys
}

// unmarshalWithExtra decodes data into doc, which must be a pointer to a
// method-free alias of the node type, and returns the keys doc does not
// declare.
func unmarshalWithExtra(data []byte, doc any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	known := knownKeys(reflect.TypeOf(doc).Elem())
	var extra map[string]json.RawMessage
	for k, raw := range all {
		if _, ok := known[k]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = raw
	}
	return extra, nil
}

// marshalWithExtra encodes doc and merges extra back in. Declared fields win
// over an extra key of the same name.
func marshalWithExtra(doc any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := all[k]; !ok {
			all[k] = raw
		}
	}
	return json.Marshal(all)
}

// decodeLoose decodes any JSON value keeping numbers as json.Number, so
// free-form values re-encode with their original text.
func decodeLoose(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
