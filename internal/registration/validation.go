// internal/registration/validation.go
package registration

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// registerSchema validates the full submission. Required sections and
// required fields inside them produce per-field messages; QQ and the
// personal extras mirror the form's optional fields.
var registerSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"studentId", "name", "basicInfo", "contact", "personalInfo", "account"},
	"properties": map[string]interface{}{
		"studentId": map[string]interface{}{"type": "string", "minLength": 1},
		"name":      map[string]interface{}{"type": "string", "minLength": 1},
		"basicInfo": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"year", "gender", "college", "major", "techGroup"},
			"properties": map[string]interface{}{
				"year":      map[string]interface{}{"type": "string", "minLength": 1},
				"gender":    map[string]interface{}{"type": "string", "minLength": 1},
				"college":   map[string]interface{}{"type": "string", "minLength": 1},
				"major":     map[string]interface{}{"type": "string", "minLength": 1},
				"techGroup": map[string]interface{}{"type": "string", "minLength": 1},
			},
		},
		"contact": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"phone", "email"},
			"properties": map[string]interface{}{
				"phone": map[string]interface{}{"type": "string", "minLength": 1},
				"email": map[string]interface{}{"type": "string", "minLength": 1, "format": "email"},
				"qq":    map[string]interface{}{"type": "string"},
			},
		},
		"personalInfo": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"idCard", "birthday", "hometown", "ethnicity", "highSchool"},
			"properties": map[string]interface{}{
				"idCard":              map[string]interface{}{"type": "string", "minLength": 1},
				"birthday":            map[string]interface{}{"type": "string", "minLength": 1},
				"hometown":            map[string]interface{}{"type": "string", "minLength": 1},
				"currentResidence":    map[string]interface{}{"type": "string"},
				"ethnicity":           map[string]interface{}{"type": "string", "minLength": 1},
				"dietaryRestrictions": map[string]interface{}{"type": "string"},
				"highSchool":          map[string]interface{}{"type": "string", "minLength": 1},
			},
		},
		"account": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"username", "password"},
			"properties": map[string]interface{}{
				"username": map[string]interface{}{"type": "string", "minLength": 1},
				"password": map[string]interface{}{"type": "string", "minLength": 8},
			},
		},
	},
}

var compiledRegisterSchema = mustCompileSchema(registerSchema)

func mustCompileSchema(schema map[string]interface{}) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid registration schema: %v", err))
	}
	return compiled
}

// validateRegisterRequest checks the submission against the schema and
// returns a field path to message map, empty when valid.
func validateRegisterRequest(req *RegisterRequest) (map[string]string, error) {
	result, err := compiledRegisterSchema.Validate(gojsonschema.NewGoLoader(req))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	fields := make(map[string]string, len(result.Errors()))
	for _, e := range result.Errors() {
		fields[fieldPath(e)] = e.Description()
	}
	return fields, nil
}

// fieldPath names the offending field. Required-property errors report the
// parent object, so the missing property name is appended.
func fieldPath(e gojsonschema.ResultError) string {
	path := e.Field()
	if e.Type() == "required" {
		if prop, ok := e.Details()["property"].(string); ok {
			if path == "(root)" {
				return prop
			}
			return path + "." + prop
		}
	}
	return path
}
