package graphio

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonKind discriminates the generic JSON tree used by the decoder. A
// bespoke tree (instead of map[string]any) keeps object key order, which
// the graph decoder needs for stable vertex ordering, and carries numbers
// as json.Number so integers never pass through a float.
type jsonKind int

const (
	jNull jsonKind = iota
	jBool
	jNumber
	jString
	jArray
	jObject
)

type jsonValue struct {
	kind jsonKind
	b    bool
	num  json.Number
	str  string
	arr  []jsonValue
	obj  []jsonField
}

type jsonField struct {
	key string
	val jsonValue
}

// lookup finds an object field by key.
func (v jsonValue) lookup(key string) (jsonValue, bool) {
	for _, f := range v.obj {
		if f.key == key {
			return f.val, true
		}
	}
	return jsonValue{}, false
}

func parseJSON(r io.Reader) (jsonValue, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return jsonValue{}, err
	}
	if dec.More() {
		return jsonValue{}, fmt.Errorf("trailing data after document")
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (jsonValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return jsonValue{}, err
	}
	return parseFromToken(dec, tok)
}

func parseFromToken(dec *json.Decoder, tok json.Token) (jsonValue, error) {
	switch t := tok.(type) {
	case nil:
		return jsonValue{kind: jNull}, nil
	case bool:
		return jsonValue{kind: jBool, b: t}, nil
	case json.Number:
		return jsonValue{kind: jNumber, num: t}, nil
	case string:
		return jsonValue{kind: jString, str: t}, nil
	case json.Delim:
		switch t {
		case '{':
			var fields []jsonField
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return jsonValue{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return jsonValue{}, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				val, err := parseValue(dec)
				if err != nil {
					return jsonValue{}, err
				}
				fields = append(fields, jsonField{key: key, val: val})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return jsonValue{}, err
			}
			return jsonValue{kind: jObject, obj: fields}, nil
		case '[':
			var elems []jsonValue
			for dec.More() {
				val, err := parseValue(dec)
				if err != nil {
					return jsonValue{}, err
				}
				elems = append(elems, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return jsonValue{}, err
			}
			return jsonValue{kind: jArray, arr: elems}, nil
		}
	}
	return jsonValue{}, fmt.Errorf("unexpected token %v", tok)
}
