package framework

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// IsIdentifier checks the ASN.1 identifier rules: a leading letter, then
// letters, digits and single hyphens, not ending in a hyphen.
func IsIdentifier(s string) error {
	if len(s) == 0 {
		return fmt.Errorf("empty identifier")
	}
	if len(s) > 128 {
		return fmt.Errorf("identifier too long")
	}
	for i, c := range s {
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if i == 0 && !isLetter {
			return fmt.Errorf("identifier %q must start with a letter", s)
		}
		if !isLetter && !(c >= '0' && c <= '9') && c != '-' {
			return fmt.Errorf("invalid character %c in identifier %q", c, s)
		}
	}
	if strings.HasSuffix(s, "-") || strings.Contains(s, "--") {
		return fmt.Errorf("misplaced hyphen in identifier %q", s)
	}
	return nil
}

// Config is an untyped YAML mapping that is consumed field by field.
type Config map[string]any

// Variations lists the spellings accepted for each field: singular and
// plural forms.
func Variations(fields ...string) []string {
	var fieldsToTry []string

	for _, field := range fields {
		fieldsToTry = append(fieldsToTry, field)
		switch {
		case strings.HasSuffix(field, "ies"):
			fieldsToTry = append(fieldsToTry, field[:len(field)-3]+"y")
		case strings.HasSuffix(field, "s"):
			fieldsToTry = append(fieldsToTry, field[:len(field)-1])
		case strings.HasSuffix(field, "y"):
			fieldsToTry = append(fieldsToTry, field[:len(field)-1]+"ies")
		default:
			fieldsToTry = append(fieldsToTry, field+"s")
		}
	}
	return fieldsToTry
}

// CheckFields fails if args holds any field not named in fields.
func CheckFields(args Config, fields ...string) error {
	fieldVariations := Variations(fields...)
	unexpectedfields := make([]string, 0)
	for k := range args {
		if !slices.Contains(fieldVariations, k) {
			unexpectedfields = append(unexpectedfields, fmt.Sprintf("%q", k))
		}
	}
	if len(unexpectedfields) > 0 {
		sort.Strings(unexpectedfields)
		return fmt.Errorf("unexpected fields: %s", strings.Join(unexpectedfields, ", "))
	}
	return nil
}

// HasArg reports whether any spelling of field is present.
func HasArg(cfg Config, field string) bool {
	for _, fieldToTry := range Variations(field) {
		if _, ok := cfg[fieldToTry]; ok {
			return true
		}
	}
	return false
}

// also removes the field from the cfg
func consumeOptionalArg[T any](cfg Config, field string, defaultValue *T) (*T, error) {
	for _, fieldToTry := range Variations(field) {
		v, ok := cfg[fieldToTry]
		if !ok {
			continue
		}
		if tv, ok := v.(T); ok {
			delete(cfg, fieldToTry)
			return &tv, nil
		}

		requiredType := reflect.TypeFor[T]()
		gotType := reflect.TypeOf(v)
		if gotType == nil {
			return defaultValue, fmt.Errorf("missing value for field %q, expected %s", fieldToTry, requiredType)
		}

		switch requiredType.Kind() {
		case reflect.Slice, reflect.Array:
			elemType := requiredType.Elem()
			if gotType.ConvertibleTo(elemType) && gotType.Kind() != reflect.Slice {
				newArray := reflect.MakeSlice(reflect.SliceOf(elemType), 1, 1)
				newArray.Index(0).Set(reflect.ValueOf(v).Convert(elemType))
				arrayImpl := newArray.Interface().(T)
				delete(cfg, fieldToTry)
				return &arrayImpl, nil
			}
			if gotType.Kind() == reflect.Slice || gotType.Kind() == reflect.Array {
				count := reflect.ValueOf(v).Len()
				newArray := reflect.MakeSlice(reflect.SliceOf(elemType), count, count)
				for i := 0; i < count; i++ {
					elem := reflect.ValueOf(v).Index(i)
					if elem.Kind() == reflect.Interface && elem.NumMethod() == 0 {
						elem = elem.Elem()
					}
					if !elem.IsValid() || !elem.CanConvert(elemType) {
						return defaultValue, fmt.Errorf("invalid entry %d in list for field %q, expected %s", i, fieldToTry, elemType)
					}
					newArray.Index(i).Set(elem.Convert(elemType))
				}
				arrayImpl := newArray.Interface().(T)
				delete(cfg, fieldToTry)
				return &arrayImpl, nil
			}
		case reflect.Int, reflect.Int64, reflect.Float64:
			// yaml yields int for whole numbers; widen without accepting strings
			value := reflect.ValueOf(v)
			if value.CanInt() || value.CanFloat() {
				converted := value.Convert(requiredType).Interface().(T)
				delete(cfg, fieldToTry)
				return &converted, nil
			}
		}
		return defaultValue, fmt.Errorf("invalid type %s for field %q, expected %s", gotType, fieldToTry, requiredType)
	}

	return defaultValue, nil
}

func ConsumeOptionalArg[T any](cfg Config, field string, defaultValue T) (T, error) {
	tp, err := consumeOptionalArg(cfg, field, &defaultValue)
	if err != nil {
		return defaultValue, err
	}
	if tp == nil {
		return defaultValue, nil
	}
	return *tp, nil
}

func ConsumeArg[T any](cfg Config, field string) (T, error) {
	tp, err := consumeOptionalArg[T](cfg, field, nil)
	if err != nil {
		var null T
		return null, err
	}
	if tp == nil {
		var null T
		return null, fmt.Errorf("missing required field %q", field)
	}

	return *tp, nil
}
