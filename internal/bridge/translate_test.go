package bridge

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTranslate_NoParams(t *testing.T) {
	tool := Translate(statusSpec())

	if tool.Name != "get_status" {
		t.Errorf("expected name 'get_status', got %q", tool.Name)
	}
	if tool.Description != "Get service status." {
		t.Errorf("unexpected description: %q", tool.Description)
	}
}

func TestTranslate_StringParam(t *testing.T) {
	tool := Translate(itemSpec())

	if _, exists := tool.InputSchema.Properties["id"]; !exists {
		t.Error("expected 'id' in tool schema properties")
	}
}

func TestTranslate_RequiredParam(t *testing.T) {
	tool := Translate(itemSpec())

	found := false
	for _, r := range tool.InputSchema.Required {
		if r == "id" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected 'id' in required list")
	}
}

func TestTranslate_OptionalParamNotRequired(t *testing.T) {
	tool := Translate(bookingSpec())

	for _, r := range tool.InputSchema.Required {
		if r == "number_of_people" || r == "confirm" {
			t.Errorf("expected %q to NOT be in required list", r)
		}
	}
}

func TestTranslate_ParamTypes(t *testing.T) {
	tool := Translate(bookingSpec())

	expected := map[string]string{
		"tool_ids":         "array",
		"date":             "string",
		"number_of_people": "number",
		"confirm":          "boolean",
	}
	for name, wantType := range expected {
		prop, exists := tool.InputSchema.Properties[name]
		if !exists {
			t.Errorf("expected %q in tool schema properties", name)
			continue
		}
		propMap, ok := prop.(map[string]interface{})
		if !ok {
			t.Errorf("expected map for %q property, got %T", name, prop)
			continue
		}
		if propMap["type"] != wantType {
			t.Errorf("expected %q type %q, got %v", name, wantType, propMap["type"])
		}
	}
}

func TestTranslate_IntegerBecomesNumber(t *testing.T) {
	spec := EndpointSpec{
		Name: "count_things", Description: "Count.", Method: "GET", Path: "/things",
		Params: []ParamSpec{
			{Name: "limit", Type: "integer", In: "query"},
		},
	}
	tool := Translate(spec)

	prop := tool.InputSchema.Properties["limit"].(map[string]interface{})
	if prop["type"] != "number" {
		t.Errorf("expected integer param to translate to number, got %v", prop["type"])
	}
}

func TestTranslate_UnknownTypeBecomesString(t *testing.T) {
	spec := EndpointSpec{
		Name: "upload_file", Description: "Upload.", Method: "POST", Path: "/files",
		Params: []ParamSpec{
			{Name: "payload", Type: "binary", Description: "File contents.", In: "body"},
		},
	}
	tool := Translate(spec)

	prop, ok := tool.InputSchema.Properties["payload"].(map[string]interface{})
	if !ok {
		t.Fatal("expected 'payload' property in schema")
	}
	if prop["type"] != "string" {
		t.Errorf("expected unknown type to degrade to string, got %v", prop["type"])
	}
	desc, _ := prop["description"].(string)
	if !strings.Contains(desc, "passed as string") {
		t.Errorf("expected degradation note in description, got %q", desc)
	}
}

func TestTranslate_Deterministic(t *testing.T) {
	spec := bookingSpec()

	first, err := json.Marshal(Translate(spec))
	if err != nil {
		t.Fatalf("failed to marshal tool: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(Translate(spec))
		if err != nil {
			t.Fatalf("failed to marshal tool: %v", err)
		}
		if string(first) != string(again) {
			t.Fatalf("translation not deterministic:\nfirst: %s\nagain: %s", first, again)
		}
	}
}
