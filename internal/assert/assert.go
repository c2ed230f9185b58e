// Package assert holds checks for programmer errors, they panic instead of returning errors.
package assert

import (
	"fmt"
	"reflect"
)

// NotNil panics when value is nil, including nil pointers, maps and funcs wrapped in an interface.
func NotNil(value any) {
	if value == nil {
		panic("assert: nil value")
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		if v.IsNil() {
			panic(fmt.Sprintf("assert: nil %T", value))
		}
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("assert: empty string")
	}
}
