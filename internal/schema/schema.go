// Package schema validates raw JSON payloads against typed record structs.
//
// A Schema is built once per record type by reflecting over its struct tags:
// `json` names the field, the Go type gives its JSON shape and `validate`
// carries the value rules understood by go-playground/validator. Validation is
// exhaustive: every failing field is reported, not just the first.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldType is the JSON shape a field accepts.
type FieldType string

const (
	TypeString     FieldType = "string"
	TypeStringList FieldType = "string_list"
	TypeStringMap  FieldType = "string_map"
)

// Format is a value rule layered on top of the JSON shape. For list fields it
// applies to every item.
type Format string

const (
	FormatNone  Format = ""
	FormatEmail Format = "email"
	FormatURL   Format = "url"
)

// Field is one row of a schema table.
type Field struct {
	Name     string
	Type     FieldType
	Nullable bool
	Required bool
	Format   Format
	Enum     []string
}

// Schema is the field table of one record type.
type Schema struct {
	name   string
	typ    reflect.Type
	fields []Field
	index  map[string]int
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// New builds the schema table for T, which must be a struct whose exported
// fields are string, *string, []string or map[string]string. It panics on
// anything else since schemas are declared at init time.
func New[T any](name string) *Schema {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("schema %s: %s is not a struct", name, t))
	}
	s := &Schema{name: name, typ: t, index: map[string]int{}}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fieldName := jsonName(sf)
		if fieldName == "" {
			continue
		}
		f := Field{Name: fieldName}
		ft := sf.Type
		if ft.Kind() == reflect.Pointer {
			f.Nullable = true
			ft = ft.Elem()
		}
		switch {
		case ft.Kind() == reflect.String:
			f.Type = TypeString
		case ft.Kind() == reflect.Slice && ft.Elem().Kind() == reflect.String:
			f.Type = TypeStringList
		case ft.Kind() == reflect.Map && ft.Key().Kind() == reflect.String && ft.Elem().Kind() == reflect.String:
			f.Type = TypeStringMap
		default:
			panic(fmt.Sprintf("schema %s: field %s has unsupported type %s", name, sf.Name, sf.Type))
		}
		applyRules(&f, sf.Tag.Get("validate"))
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

var oneofParam = regexp.MustCompile(`'[^']*'|\S+`)

func applyRules(f *Field, tag string) {
	if tag == "" {
		return
	}
	for _, rule := range strings.Split(tag, ",") {
		name, param, _ := strings.Cut(rule, "=")
		switch name {
		case "required":
			f.Required = true
		case "email":
			f.Format = FormatEmail
		case "http_url":
			f.Format = FormatURL
		case "oneof":
			for _, v := range oneofParam.FindAllString(param, -1) {
				f.Enum = append(f.Enum, strings.Trim(v, "'"))
			}
		}
	}
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns a copy of the schema table in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Decode validates body against the schema and, on success, fills dst (a
// pointer to the schema's struct type) with the normalized record. Validation
// failures are returned as *ValidationError; any other error means dst has the
// wrong type.
func (s *Schema) Decode(body []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != s.typ {
		return fmt.Errorf("schema %s: cannot decode into %T", s.name, dst)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return &ValidationError{Schema: s.name, Fields: []FieldError{{Field: "body", Message: "must be a JSON object"}}}
	}

	verr := &ValidationError{Schema: s.name}
	reported := map[string]bool{}
	clean := make(map[string]json.RawMessage, len(raw))
	for _, f := range s.fields {
		msg, ok := raw[f.Name]
		if !ok {
			if f.Required {
				verr.add(f.Name, "is required")
				reported[f.Name] = true
			}
			continue
		}
		if problem := f.checkType(msg); problem != "" {
			verr.add(f.Name, problem)
			reported[f.Name] = true
			continue
		}
		clean[f.Name] = msg
	}

	b, err := json.Marshal(clean)
	if err != nil {
		return fmt.Errorf("schema %s: %w", s.name, err)
	}
	rv.Elem().Set(reflect.Zero(s.typ))
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("schema %s: %w", s.name, err)
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("schema %s: %w", s.name, err)
		}
		for _, fe := range fieldErrs {
			base := baseField(fe.Field())
			if reported[base] {
				continue
			}
			verr.add(fe.Field(), s.message(base, fe))
		}
	}

	if len(verr.Fields) > 0 {
		s.sort(verr)
		return verr
	}
	Normalize(dst)
	return nil
}

func (f Field) checkType(msg json.RawMessage) string {
	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return "is not valid JSON"
	}
	if v == nil {
		if f.Nullable {
			return ""
		}
		return "must not be null"
	}
	switch f.Type {
	case TypeString:
		if _, ok := v.(string); !ok {
			return "must be a string"
		}
	case TypeStringList:
		items, ok := v.([]any)
		if !ok {
			return "must be a list of strings"
		}
		for _, it := range items {
			if _, ok := it.(string); !ok {
				return "must be a list of strings"
			}
		}
	case TypeStringMap:
		m, ok := v.(map[string]any)
		if !ok {
			return "must be an object with string values"
		}
		for _, it := range m {
			if _, ok := it.(string); !ok {
				return "must be an object with string values"
			}
		}
	}
	return ""
}

func (s *Schema) message(base string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "email":
		return "must be a valid email address"
	case "http_url":
		return "must be a valid http or https URL"
	case "oneof":
		if i, ok := s.index[base]; ok {
			return "must be one of: " + strings.Join(s.fields[i].Enum, ", ")
		}
		return "must be one of: " + fe.Param()
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// baseField strips a list index: "process_images[2]" -> "process_images".
func baseField(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

func (s *Schema) sort(verr *ValidationError) {
	sort.SliceStable(verr.Fields, func(i, j int) bool {
		return s.index[baseField(verr.Fields[i].Field)] < s.index[baseField(verr.Fields[j].Field)]
	})
}

// Normalize replaces nil slices and maps in the struct pointed to by v with
// empty ones, so defaulted list/map fields encode as [] and {} instead of null.
func Normalize(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.Slice:
			if f.IsNil() {
				f.Set(reflect.MakeSlice(f.Type(), 0, 0))
			}
		case reflect.Map:
			if f.IsNil() {
				f.Set(reflect.MakeMap(f.Type()))
			}
		}
	}
}
