package validate

import (
	"strings"
	"testing"
)

type item struct {
	URL string `json:"target_url" validate:"required,http_url"`
}

type batch struct {
	Items []*item `json:"items" validate:"required,min=1,dive"`
}

func TestStruct_FieldNames(t *testing.T) {
	err := Struct(&batch{Items: []*item{{URL: "https://example.com"}, {URL: "bad"}}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "items[1].target_url http_url") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestStruct_NotStruct(t *testing.T) {
	if err := Struct("text"); err == nil {
		t.Error("expected error for non struct")
	}
	if err := Struct(nil); err == nil {
		t.Error("expected error for nil")
	}
}

func TestVar(t *testing.T) {
	if err := Var("https://example.com", "required,http_url"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := Var("", "required"); err == nil || !strings.Contains(err.Error(), "required") {
		t.Errorf("expected required error, got %v", err)
	}
}
