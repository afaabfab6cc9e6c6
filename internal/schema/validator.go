package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jeanpaul/registrar/internal/record"
)

// textField rejects the separator and line breaks, which the data file
// format cannot carry.
var textField = map[string]any{
	"type":    "string",
	"pattern": "^[^,\\r\\n]*$",
}

// StudentSchema describes the fields accepted for a new student.
var StudentSchema = map[string]any{
	"type":     "object",
	"required": []string{"name", "id", "class", "grades"},
	"properties": map[string]any{
		"name":  textField,
		"id":    map[string]any{"type": "integer"},
		"class": textField,
		"grades": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "integer"},
			"minItems": record.GradeCount,
			"maxItems": record.GradeCount,
		},
	},
}

// TeacherSchema describes the fields accepted for a new teacher.
var TeacherSchema = map[string]any{
	"type":     "object",
	"required": []string{"name", "id", "subject", "grade"},
	"properties": map[string]any{
		"name":    textField,
		"id":      map[string]any{"type": "integer"},
		"subject": textField,
		// The grade is the last field on its line, so commas are allowed.
		"grade": map[string]any{"type": "string", "pattern": "^[^\\r\\n]*$"},
	},
}

// StudentFields is the raw input for a student.
type StudentFields struct {
	Name   string `json:"name"`
	ID     int    `json:"id"`
	Class  string `json:"class"`
	Grades []int  `json:"grades"`
}

// TeacherFields is the raw input for a teacher.
type TeacherFields struct {
	Name    string `json:"name"`
	ID      int    `json:"id"`
	Subject string `json:"subject"`
	Grade   string `json:"grade"`
}

// Validator checks record fields against JSON schemas.
// It caches compiled schemas.
type Validator struct {
	cache sync.Map // map[string]*gojsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{}
}

// Student validates the fields of a new student.
func (v *Validator) Student(f StudentFields) error {
	return v.fields("student", StudentSchema, f)
}

// Teacher validates the fields of a new teacher.
func (v *Validator) Teacher(f TeacherFields) error {
	return v.fields("teacher", TeacherSchema, f)
}

func (v *Validator) fields(kind string, schemaData any, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s fields: %w", kind, err)
	}
	problems, err := v.Validate(schemaData, string(data))
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		return &record.ValidationError{Kind: kind, Problems: problems}
	}
	return nil
}

// Validate checks a JSON document against the schema and returns one line per
// violation. The error is only set when validation could not run.
func (v *Validator) Validate(schemaData any, docJSON string) ([]string, error) {
	schema, err := v.compile(schemaData)
	if err != nil {
		return nil, fmt.Errorf("invalid schema definition: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(docJSON))
	if err != nil {
		return nil, fmt.Errorf("validation execution failed: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return problems, nil
}

func (v *Validator) compile(schemaData any) (*gojsonschema.Schema, error) {
	jsonBytes, err := json.Marshal(schemaData)
	if err != nil {
		return nil, err
	}
	key := string(jsonBytes)

	if val, ok := v.cache.Load(key); ok {
		return val.(*gojsonschema.Schema), nil
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonBytes))
	if err != nil {
		return nil, err
	}
	v.cache.Store(key, schema)
	return schema, nil
}
