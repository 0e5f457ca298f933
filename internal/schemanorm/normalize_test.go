package schemanorm

import "testing"

func TestNormalize_StripsMetaKeywords(t *testing.T) {
	input := map[string]interface{}{
		"type":    "object",
		"title":   "X",
		"$schema": "http://json-schema.org/draft-07/schema#",
		"properties": map[string]interface{}{
			"age": map[string]interface{}{
				"type":     "integer",
				"default":  0,
				"examples": []interface{}{1},
			},
		},
	}

	out := Normalize(input, Options{})

	if _, ok := out["title"]; ok {
		t.Error("expected title to be stripped")
	}
	if _, ok := out["$schema"]; ok {
		t.Error("expected $schema to be stripped")
	}
	if out["type"] != "object" {
		t.Errorf("expected type=object preserved, got %v", out["type"])
	}

	props, ok := out["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected properties to survive, got %v", out["properties"])
	}
	age, ok := props["age"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected properties.age to survive, got %v", props["age"])
	}
	if age["type"] != "integer" {
		t.Errorf("expected properties.age.type=integer preserved, got %v", age["type"])
	}
	if _, ok := age["default"]; ok {
		t.Error("expected properties.age.default to be stripped")
	}
	if _, ok := age["examples"]; ok {
		t.Error("expected properties.age.examples to be stripped")
	}
}

func TestNormalize_ConstToEnum(t *testing.T) {
	input := map[string]interface{}{"const": "fixed-value"}
	out := Normalize(input, Options{})
	enum, ok := out["enum"].([]interface{})
	if !ok || len(enum) != 1 || enum[0] != "fixed-value" {
		t.Errorf("expected enum:[fixed-value], got %v", out["enum"])
	}
	if _, ok := out["const"]; ok {
		t.Error("expected const to be removed")
	}
}

func TestNormalize_RefInlining(t *testing.T) {
	input := map[string]interface{}{
		"$defs": map[string]interface{}{
			"Address": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"city": map[string]interface{}{"type": "string"},
				},
			},
		},
		"type": "object",
		"properties": map[string]interface{}{
			"home": map[string]interface{}{"$ref": "#/$defs/Address"},
		},
	}

	out := Normalize(input, Options{})
	if _, ok := out["$defs"]; ok {
		t.Error("expected $defs to be dropped after inlining")
	}
	props := out["properties"].(map[string]interface{})
	home := props["home"].(map[string]interface{})
	if home["type"] != "object" {
		t.Errorf("expected inlined $ref to carry type=object, got %v", home["type"])
	}
}

func TestNormalize_EmptySchemaPlaceholder(t *testing.T) {
	out := Normalize(map[string]interface{}{}, Options{})
	if out["type"] != "object" {
		t.Errorf("expected {} to become {type: object}, got %v", out)
	}
}

func TestNormalize_GeminiAnyOfRename(t *testing.T) {
	input := map[string]interface{}{
		"anyOf": []interface{}{
			map[string]interface{}{"type": "string"},
			map[string]interface{}{"type": "integer"},
		},
	}
	out := Normalize(input, Options{GeminiAnyOf: true})
	if _, ok := out["anyOf"]; ok {
		t.Error("expected anyOf renamed for gemini")
	}
	if _, ok := out["any_of"]; !ok {
		t.Error("expected any_of present for gemini")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	input := map[string]interface{}{
		"type":    "object",
		"$schema": "http://json-schema.org/draft-07/schema#",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{"type": "string", "default": "x"},
		},
	}
	once := Normalize(input, Options{})
	twice := Normalize(once, Options{})

	onceName := once["properties"].(map[string]interface{})["name"].(map[string]interface{})
	twiceName := twice["properties"].(map[string]interface{})["name"].(map[string]interface{})
	if len(onceName) != len(twiceName) || onceName["type"] != twiceName["type"] {
		t.Errorf("normalize is not idempotent: once=%v twice=%v", once, twice)
	}
}
