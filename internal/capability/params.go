package capability

// Param describes one constructor parameter. accept reports whether a
// supplied argument is assignable to the parameter and returns the value the
// factory should see.
type Param struct {
	Name   string
	accept func(v any) (any, bool)
}

func (p Param) Accepts(v any) bool {
	_, ok := p.accept(v)
	return ok
}

// Of matches any argument assignable to T. For interface types this is
// interface satisfaction.
func Of[T any](name string) Param {
	return Param{Name: name, accept: func(v any) (any, bool) {
		typed, ok := v.(T)
		if !ok {
			return nil, false
		}
		return typed, true
	}}
}

// primitive matches T itself or a non-nil *T, the boxed form.
func primitive[T any](name string) Param {
	return Param{Name: name, accept: func(v any) (any, bool) {
		switch typed := v.(type) {
		case T:
			return typed, true
		case *T:
			if typed == nil {
				return nil, false
			}
			return *typed, true
		default:
			return nil, false
		}
	}}
}

func Int(name string) Param     { return primitive[int](name) }
func Int64(name string) Param   { return primitive[int64](name) }
func Float(name string) Param   { return primitive[float64](name) }
func Bool(name string) Param    { return primitive[bool](name) }
func Rune(name string) Param    { return primitive[rune](name) }
func String(name string) Param  { return primitive[string](name) }
func Args(name string) Param    { return Of[Arguments](name) }
func Byte(name string) Param    { return primitive[byte](name) }
func Float32(name string) Param { return primitive[float32](name) }
