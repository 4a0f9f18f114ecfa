package capability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidArgument = errors.New("invalid argument")

type Argument struct {
	Key   string
	Value string
}

// Arguments is an ordered key/value list. Values stay strings until read
// through a typed accessor; a value wrapped in parentheses is itself an
// argument list (see Sub).
type Arguments struct {
	items []Argument
}

func NewArguments(items ...Argument) Arguments {
	return Arguments{items: append([]Argument(nil), items...)}
}

// ParseArguments reads the compact "key=value,key2=(nested,list),flag" form.
func ParseArguments(text string) (Arguments, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Arguments{}, nil
	}
	tokens, err := splitTopLevel(text)
	if err != nil {
		return Arguments{}, err
	}
	var args Arguments
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		key, value, _ := strings.Cut(token, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return Arguments{}, fmt.Errorf("%w: empty key in %q", ErrInvalidArgument, text)
		}
		args.items = append(args.items, Argument{Key: key, Value: unwrap(strings.TrimSpace(value))})
	}
	return args, nil
}

func MustParseArguments(text string) Arguments {
	args, err := ParseArguments(text)
	if err != nil {
		panic(err)
	}
	return args
}

func splitTopLevel(text string) ([]string, error) {
	var tokens []string
	depth := 0
	start := 0
	for i, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidArgument, text)
			}
		case ',':
			if depth == 0 {
				tokens = append(tokens, text[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidArgument, text)
	}
	return append(tokens, text[start:]), nil
}

func unwrap(value string) string {
	if len(value) >= 2 && value[0] == '(' && value[len(value)-1] == ')' {
		if _, err := splitTopLevel(value[1 : len(value)-1]); err == nil {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func (a Arguments) Len() int {
	return len(a.items)
}

func (a Arguments) At(i int) Argument {
	return a.items[i]
}

func (a Arguments) Keys() []string {
	keys := make([]string, len(a.items))
	for i, item := range a.items {
		keys[i] = item.Key
	}
	return keys
}

func (a Arguments) index(key string) int {
	for i, item := range a.items {
		if strings.EqualFold(item.Key, key) {
			return i
		}
	}
	return -1
}

func (a Arguments) Defined(key string) bool {
	return a.index(key) >= 0
}

// With returns a copy with key set, replacing an existing value in place so
// declaration order is kept.
func (a Arguments) With(key, value string) Arguments {
	out := NewArguments(a.items...)
	if i := out.index(key); i >= 0 {
		out.items[i].Value = value
		return out
	}
	out.items = append(out.items, Argument{Key: key, Value: value})
	return out
}

func (a Arguments) String(key, def string) string {
	if i := a.index(key); i >= 0 {
		return a.items[i].Value
	}
	return def
}

func (a Arguments) Int(key string, def int) (int, error) {
	i := a.index(key)
	if i < 0 {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(a.items[i].Value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidArgument, key, a.items[i].Value)
	}
	return v, nil
}

func (a Arguments) Float(key string, def float64) (float64, error) {
	i := a.index(key)
	if i < 0 {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(a.items[i].Value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidArgument, key, a.items[i].Value)
	}
	return v, nil
}

// Floats reads a parenthesised list such as weights=(0.5,-1,2).
func (a Arguments) Floats(key string) ([]float64, error) {
	i := a.index(key)
	if i < 0 || strings.TrimSpace(a.items[i].Value) == "" {
		return nil, nil
	}
	fields := strings.Split(a.items[i].Value, ",")
	out := make([]float64, len(fields))
	for j, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]=%q is not a number", ErrInvalidArgument, key, j, field)
		}
		out[j] = v
	}
	return out, nil
}

// Flag is true when key is present bare or with a truthy value.
func (a Arguments) Flag(key string) bool {
	i := a.index(key)
	if i < 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(a.items[i].Value)) {
	case "", "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func (a Arguments) Sub(key string) (Arguments, error) {
	i := a.index(key)
	if i < 0 {
		return Arguments{}, nil
	}
	return ParseArguments(a.items[i].Value)
}

func (a Arguments) Encode() string {
	parts := make([]string, len(a.items))
	for i, item := range a.items {
		switch {
		case item.Value == "":
			parts[i] = item.Key
		case strings.ContainsAny(item.Value, ",="):
			parts[i] = item.Key + "=(" + item.Value + ")"
		default:
			parts[i] = item.Key + "=" + item.Value
		}
	}
	return strings.Join(parts, ",")
}
