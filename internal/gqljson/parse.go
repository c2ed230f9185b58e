package gqljson

import (
	"bytes"
	"fmt"

	"github.com/buger/jsonparser"
)

// Parse decodes a JSON document into a Value. Anything but whitespace after the document is an error.
func Parse(data []byte) (Value, error) {
	raw, dataType, end, err := jsonparser.Get(data)
	if err != nil {
		return Value{}, fmt.Errorf("parse json: %w", err)
	}
	if rest := bytes.Trim(data[end:], " \t\r\n"); len(rest) > 0 {
		return Value{}, fmt.Errorf("parse json: unexpected data after offset %d", end)
	}
	return parseValue(raw, dataType)
}

// MustParse is Parse for literals known to be valid, it panics otherwise.
func MustParse(data string) Value {
	v, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return v
}

func parseValue(raw []byte, dataType jsonparser.ValueType) (Value, error) {
	switch dataType {
	case jsonparser.Null:
		return Value{kind: Null}, nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: Bool, boolean: b}, nil
	case jsonparser.Number:
		return Value{kind: Number, scalar: string(raw)}, nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: String, scalar: s}, nil
	case jsonparser.Array:
		return parseArray(raw)
	case jsonparser.Object:
		return parseObject(raw)
	default:
		return Value{}, fmt.Errorf("unsupported json value type %s", dataType)
	}
}

func parseArray(raw []byte) (Value, error) {
	out := Value{kind: Array, items: []Value{}}
	var innerErr error
	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if innerErr != nil {
			return
		}
		if err != nil {
			innerErr = err
			return
		}
		item, err := parseValue(value, dataType)
		if err != nil {
			innerErr = err
			return
		}
		out.items = append(out.items, item)
	})
	if err != nil {
		return Value{}, err
	}
	if innerErr != nil {
		return Value{}, innerErr
	}
	return out, nil
}

func parseObject(raw []byte) (Value, error) {
	out := Value{kind: Object, keys: []string{}, fields: map[string]Value{}}
	// ObjectEach hands over keys already unescaped
	err := jsonparser.ObjectEach(raw, func(rawKey []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		key := string(rawKey)
		field, err := parseValue(value, dataType)
		if err != nil {
			return err
		}
		// duplicate keys keep their first position and the last value, like encoding/json
		if _, exists := out.fields[key]; !exists {
			out.keys = append(out.keys, key)
		}
		out.fields[key] = field
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	return out, nil
}
