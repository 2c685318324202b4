package dxf

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind is the scalar type carried by a tag value.
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindFloat
	KindInt
	KindBool
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "str"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a typed tag value. The zero Value is the empty string.
// Values are comparable with ==.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	i    int64
}

// Str creates a string value.
func Str(v string) Value {
	return Value{kind: KindString, str: v}
}

// Float creates a float value.
func Float(v float64) Value {
	return Value{kind: KindFloat, num: v}
}

// Int creates an integer value.
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Bool creates a boolean value.
func Bool(v bool) Value {
	if v {
		return Value{kind: KindBool, i: 1}
	}
	return Value{kind: KindBool}
}

// Kind returns the value kind.
func (v Value) Kind() ValueKind {
	return v.kind
}

// AsString returns the string value, or the formatted scalar for other kinds.
func (v Value) AsString() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindFloat:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		if v.i != 0 {
			return "1"
		}
		return "0"
	default:
		return strconv.FormatInt(v.i, 10)
	}
}

// AsFloat returns the numeric value as float64. Strings yield 0.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindFloat:
		return v.num
	case KindInt, KindBool:
		return float64(v.i)
	default:
		return 0
	}
}

// AsInt returns the numeric value as int64. Floats are truncated, strings yield 0.
func (v Value) AsInt() int64 {
	switch v.kind {
	case KindInt, KindBool:
		return v.i
	case KindFloat:
		return int64(v.num)
	default:
		return 0
	}
}

// AsBool returns true for a non-zero numeric value.
func (v Value) AsBool() bool {
	return v.AsInt() != 0
}

// String returns a debug representation.
func (v Value) String() string {
	if v.kind == KindString {
		return strconv.Quote(v.str)
	}
	return v.AsString()
}

// Tag is a single (group code, value) pair.
type Tag struct {
	Code  int
	Value Value
}

// NoneTag marks the end of input. Its code is outside every valid range.
var NoneTag = Tag{Code: -1000000}

// NewTag creates a tag.
func NewTag(code int, value Value) Tag {
	return Tag{Code: code, Value: value}
}

// IsNone reports whether t is the end-of-input sentinel.
func (t Tag) IsNone() bool {
	return t == NoneTag
}

// String returns a debug representation of the tag.
func (t Tag) String() string {
	return fmt.Sprintf("(%d, %s)", t.Code, t.Value)
}

// Group codes with a fixed meaning.
const (
	CodeStructure  = 0
	CodeName       = 2
	CodeHandle     = 5
	CodeLayer      = 8
	CodeVariable   = 9
	CodeX          = 10
	CodeY          = 20
	CodeZ          = 30
	CodeStartWidth = 40
	CodeEndWidth   = 41
	CodeBulge      = 42
	CodeTangent    = 50
	CodeFlags      = 70
	CodeSplineType = 75
	CodeSubclass   = 100
	CodeAppData    = 102
	CodeXData      = 1001
)

type codeRange struct {
	lo, hi int
	kind   ValueKind
}

// codeTypes maps group code ranges to value kinds. Codes not covered are strings.
var codeTypes = [...]codeRange{
	{0, 9, KindString},
	{10, 59, KindFloat},
	{60, 99, KindInt},
	{100, 109, KindString},
	{110, 149, KindFloat},
	{160, 179, KindInt},
	{210, 239, KindFloat},
	{270, 289, KindInt},
	{290, 299, KindBool},
	{300, 369, KindString},
	{370, 389, KindInt},
	{390, 399, KindString},
	{400, 409, KindInt},
	{410, 419, KindString},
	{420, 429, KindInt},
	{430, 439, KindString},
	{440, 459, KindInt},
	{460, 469, KindFloat},
	{470, 481, KindString},
	{999, 999, KindString},
	{1000, 1009, KindString},
	{1010, 1059, KindFloat},
	{1060, 1071, KindInt},
}

// TypeOf returns the value kind for a group code.
func TypeOf(code int) ValueKind {
	for _, r := range codeTypes {
		if code >= r.lo && code <= r.hi {
			return r.kind
		}
	}
	return KindString
}

// ParseTag converts a raw value string to a tag typed by its group code.
// Numeric values are trimmed; string values are kept as given.
func ParseTag(code int, raw string) (Tag, error) {
	switch TypeOf(code) {
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return NoneTag, fmt.Errorf("group code %d: invalid float %q", code, raw)
		}
		return Tag{Code: code, Value: Float(f)}, nil
	case KindInt:
		i, err := parseInt(raw)
		if err != nil {
			return NoneTag, fmt.Errorf("group code %d: invalid integer %q", code, raw)
		}
		return Tag{Code: code, Value: Int(i)}, nil
	case KindBool:
		i, err := parseInt(raw)
		if err != nil {
			return NoneTag, fmt.Errorf("group code %d: invalid bool %q", code, raw)
		}
		return Tag{Code: code, Value: Bool(i != 0)}, nil
	default:
		return Tag{Code: code, Value: Str(raw)}, nil
	}
}

// parseInt accepts integers written as floats ("1.0"), which some writers emit.
func parseInt(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// Tags is an ordered tag sequence.
type Tags []Tag

// Find returns the first tag with the given code.
func (ts Tags) Find(code int) (Tag, bool) {
	for _, t := range ts {
		if t.Code == code {
			return t, true
		}
	}
	return NoneTag, false
}

// Has reports whether any tag has the given code.
func (ts Tags) Has(code int) bool {
	_, ok := ts.Find(code)
	return ok
}

// GetFloat returns the value of the first tag with code, or def.
func (ts Tags) GetFloat(code int, def float64) float64 {
	if t, ok := ts.Find(code); ok {
		return t.Value.AsFloat()
	}
	return def
}

// GetInt returns the value of the first tag with code, or def.
func (ts Tags) GetInt(code int, def int64) int64 {
	if t, ok := ts.Find(code); ok {
		return t.Value.AsInt()
	}
	return def
}

// GetString returns the value of the first tag with code, or def.
func (ts Tags) GetString(code int, def string) string {
	if t, ok := ts.Find(code); ok {
		return t.Value.AsString()
	}
	return def
}

// Name returns the value of the first tag, which names subclass, appdata
// and xdata groups. Empty groups have no name.
func (ts Tags) Name() string {
	if len(ts) == 0 {
		return ""
	}
	return ts[0].Value.AsString()
}
