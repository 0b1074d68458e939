package domain

import "encoding/json"

// ValueKind tags the variant held by a SqlValue.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
	ValueBytes
	ValueJson
)

// SqlValue is a typed parameter value for query binding. Result cells are
// not SqlValues; drivers stringify them for uniform display.
type SqlValue struct {
	Kind  ValueKind       `json:"kind"`
	Bool  bool            `json:"bool,omitempty"`
	Int   int64           `json:"int,omitempty"`
	Float float64         `json:"float,omitempty"`
	Str   string          `json:"str,omitempty"`
	Bytes []byte          `json:"bytes,omitempty"`
	Json  json.RawMessage `json:"json,omitempty"`
}

func NullValue() SqlValue { return SqlValue{Kind: ValueNull} }

func BoolValue(b bool) SqlValue { return SqlValue{Kind: ValueBool, Bool: b} }

func IntValue(i int64) SqlValue { return SqlValue{Kind: ValueInt, Int: i} }

func FloatValue(f float64) SqlValue { return SqlValue{Kind: ValueFloat, Float: f} }

func StringValue(s string) SqlValue { return SqlValue{Kind: ValueString, Str: s} }

func BytesValue(b []byte) SqlValue { return SqlValue{Kind: ValueBytes, Bytes: b} }

func JsonValue(raw []byte) SqlValue { return SqlValue{Kind: ValueJson, Json: raw} }

// Arg converts the value to a database/sql driver argument.
func (v SqlValue) Arg() any {
	switch v.Kind {
	case ValueBool:
		return v.Bool
	case ValueInt:
		return v.Int
	case ValueFloat:
		return v.Float
	case ValueString:
		return v.Str
	case ValueBytes:
		return v.Bytes
	case ValueJson:
		return string(v.Json)
	default:
		return nil
	}
}

// BindArgs converts a parameter list to driver arguments.
func BindArgs(params []SqlValue) []any {
	if len(params) == 0 {
		return nil
	}
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p.Arg()
	}
	return args
}
