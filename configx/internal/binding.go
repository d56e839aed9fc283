package internal

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.eggybyte.com/argconf/core/errors"
	"go.eggybyte.com/argconf/core/value"
)

var durationType = reflect.TypeOf(time.Duration(0))

// BindToStruct binds configuration values to struct fields using config tags.
//
// A field tagged `config:"name"` reads the key "name". A nested struct tagged
// `config:"db"` prefixes its fields with "db."; an untagged nested struct
// shares its parent's prefix. A `default:"..."` tag applies when the key is
// absent; for []string fields the default is split on commas.
func BindToStruct(snapshot value.Map, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return errors.Build(errors.CodeInvalidArgument).
			WithOp("configx.Bind").
			WithMsgf("target must be a non-nil pointer to struct, got %T", target).
			Err()
	}
	return bindStructFields(snapshot, rv.Elem(), "")
}

// bindStructFields recursively binds configuration values to struct fields.
func bindStructFields(snapshot value.Map, structValue reflect.Value, prefix string) error {
	structType := structValue.Type()

	for i := 0; i < structValue.NumField(); i++ {
		field := structValue.Field(i)
		fieldType := structType.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		tag := fieldType.Tag.Get("config")
		if tag == "-" {
			continue
		}

		if field.Kind() == reflect.Struct {
			nested := prefix
			if tag != "" {
				nested = prefix + tag + "."
			}
			if err := bindStructFields(snapshot, field, nested); err != nil {
				return err
			}
			continue
		}

		if tag == "" {
			continue
		}

		key := prefix + tag
		v, ok := snapshot[key]
		if !ok {
			def, hasDefault := fieldType.Tag.Lookup("default")
			if !hasDefault {
				continue
			}
			v = defaultValue(field, def)
		}

		if err := setFieldValue(field, v); err != nil {
			code := errors.CodeTypeMismatch
			if errors.IsCode(err, errors.CodeInvalidArgument) {
				code = errors.CodeInvalidArgument
			}
			return errors.Build(code).
				WithOp("configx.Bind").
				WithKey(key).
				WithMsgf("field %s", fieldType.Name).
				WithErr(err).
				Err()
		}
	}

	return nil
}

func defaultValue(field reflect.Value, def string) value.Value {
	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String {
		if def == "" {
			return value.NewStrings("default", nil)
		}
		parts := strings.Split(def, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return value.NewStrings("default", parts)
	}
	return value.NewString("default", def)
}

// setFieldValue converts v to the field's type and stores it.
// Nil values leave the field untouched.
func setFieldValue(field reflect.Value, v value.Value) error {
	if v.IsNil() {
		return nil
	}

	if field.Type() == durationType {
		s, err := v.AsString()
		if err != nil {
			return err
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		s, err := v.AsString()
		if err != nil {
			return err
		}
		field.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := v.AsInt()
		if err != nil {
			return err
		}
		if field.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, field.Type())
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := v.AsInt()
		if err != nil {
			return err
		}
		if n < 0 || field.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d overflows %s", n, field.Type())
		}
		field.SetUint(uint64(n))
	case reflect.Bool:
		b, err := v.AsBool()
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := v.AsFloat()
		if err != nil {
			return err
		}
		if field.OverflowFloat(f) {
			return fmt.Errorf("%g overflows %s", f, field.Type())
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return errors.New(errors.CodeInvalidArgument, "unsupported field type: "+field.Type().String())
		}
		ss, err := v.AsStrings()
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(ss).Convert(field.Type()))
	default:
		return errors.New(errors.CodeInvalidArgument, "unsupported field type: "+field.Type().String())
	}

	return nil
}
