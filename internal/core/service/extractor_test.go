package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/rl1809/parts-inventory/internal/core/domain"
)

func TestExtractChanges_PreservesFields(t *testing.T) {
	raw := `{"changes":[
		{"manufacturer":"Toyota","part":"bremžu disks","model":"Corolla","quantity":2,"action":"add"},
		{"manufacturer":"BMW","part":"фара","model":"E46","quantity":1,"action":"remove"}
	]}`

	batch, err := ExtractChanges(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.ChangeBatch{
		{Manufacturer: "Toyota", Part: "bremžu disks", Model: "Corolla", Quantity: 2, Action: domain.ActionAdd},
		{Manufacturer: "BMW", Part: "фара", Model: "E46", Quantity: 1, Action: domain.ActionRemove},
	}
	if len(batch) != len(want) {
		t.Fatalf("expected %d changes, got %d", len(want), len(batch))
	}
	for i := range want {
		if batch[i] != want[i] {
			t.Errorf("change %d: expected %+v, got %+v", i, want[i], batch[i])
		}
	}
}

func TestExtractChanges_Defaults(t *testing.T) {
	batch, err := ExtractChanges(`{"changes":[{"manufacturer":"Audi","part":"spogulis","model":"A4"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if batch[0].Quantity != 1 {
		t.Errorf("expected default quantity 1, got %d", batch[0].Quantity)
	}
	if batch[0].Action != domain.ActionAdd {
		t.Errorf("expected default action add, got %q", batch[0].Action)
	}
}

func TestExtractChanges_LooseValues(t *testing.T) {
	batch, err := ExtractChanges(`  {"changes":[
		{"manufacturer":"Audi","part":"spogulis","model":"A4","quantity":"3","action":"Remove"},
		{"manufacturer":"Audi","part":"spogulis","model":"A4","quantity":-1,"action":"sell"},
		{"manufacturer":"Audi","part":"spogulis","model":"A4","quantity":0}
	]}
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if batch[0].Quantity != 3 || batch[0].Action != domain.ActionRemove {
		t.Errorf("expected quantity 3 remove, got %+v", batch[0])
	}
	if batch[1].Quantity != -1 || batch[1].Action != domain.Action("sell") {
		t.Errorf("expected values passed through, got %+v", batch[1])
	}
	if batch[2].Quantity != 0 {
		t.Errorf("expected explicit zero kept, got %d", batch[2].Quantity)
	}
}

func TestExtractChanges_EmptyList(t *testing.T) {
	batch, err := ExtractChanges(`{"changes":[]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 0 {
		t.Errorf("expected empty batch, got %d", len(batch))
	}
}

func TestExtractChanges_NotJSON(t *testing.T) {
	raw := "Sure! Here are the changes: Toyota Corolla"

	_, err := ExtractChanges(raw)

	var parseErr *ResponseParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ResponseParseError, got %v", err)
	}
	if parseErr.Raw != raw {
		t.Errorf("expected raw text to be kept, got %q", parseErr.Raw)
	}
}

func TestExtractChanges_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"top-level array", `[{"manufacturer":"Toyota"}]`},
		{"missing changes", `{"items":[]}`},
		{"changes not array", `{"changes":"add Toyota"}`},
		{"changes null", `{"changes":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractChanges(tt.raw)

			var schemaErr *SchemaViolationError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaViolationError, got %v", err)
			}
			if schemaErr.Raw != tt.raw {
				t.Errorf("expected raw text to be kept")
			}
		})
	}
}

func TestExtractChanges_WholeNumberQuantities(t *testing.T) {
	batch, err := ExtractChanges(`{"changes":[
		{"manufacturer":"Audi","part":"spogulis","model":"A4","quantity":2.0},
		{"manufacturer":"Audi","part":"spogulis","model":"A4","quantity":"4"},
		{"manufacturer":"Audi","part":"spogulis","model":"A4","quantity":2147483647}
	]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{2, 4, 2147483647}
	for i, w := range want {
		if batch[i].Invalid != "" {
			t.Errorf("change %d: unexpected problem %q", i, batch[i].Invalid)
		}
		if batch[i].Quantity != w {
			t.Errorf("change %d: expected quantity %d, got %d", i, w, batch[i].Quantity)
		}
	}
}

func TestExtractChanges_RejectedQuantities(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		reason   string
	}{
		{"fraction", `2.7`, "not a whole number"},
		{"half", `0.5`, "not a whole number"},
		{"exponent overflow", `1e20`, "out of range"},
		{"above column range", `2147483648`, "out of range"},
		{"word", `"two"`, "not a number"},
		{"boolean", `true`, "not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ExtractChanges(`{"changes":[{"manufacturer":"Toyota","part":"bremžu disks","model":"Corolla","quantity":` + tt.quantity + `}]}`)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(batch) != 1 {
				t.Fatalf("expected the change to stay in the batch, got %d", len(batch))
			}
			if !strings.Contains(batch[0].Invalid, tt.reason) {
				t.Errorf("expected problem mentioning %q, got %q", tt.reason, batch[0].Invalid)
			}
			if batch[0].Manufacturer != "Toyota" {
				t.Errorf("expected other fields kept, got %+v", batch[0])
			}
		})
	}
}

func TestExtractChanges_MalformedElementsKeepSiblings(t *testing.T) {
	batch, err := ExtractChanges(`{"changes":[
		{"manufacturer":"Toyota","part":"bremžu disks","model":"Corolla","quantity":2,"action":"add"},
		{"manufacturer":"Toyota","part":"bremžu disks","model":"Corolla","quantity":"two"},
		{"manufacturer":{"name":"Toyota"},"part":"bremžu disks","model":"Corolla"},
		1,
		{"manufacturer":"BMW","part":"фара","model":"E46"}
	]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 5 {
		t.Fatalf("expected 5 changes, got %d", len(batch))
	}

	for _, i := range []int{0, 4} {
		if batch[i].Invalid != "" {
			t.Errorf("change %d: unexpected problem %q", i, batch[i].Invalid)
		}
	}
	for _, i := range []int{1, 2, 3} {
		if batch[i].Invalid == "" {
			t.Errorf("change %d: expected a problem to be recorded", i)
		}
	}
	if !strings.Contains(batch[3].Invalid, "expected object, got number") {
		t.Errorf("unexpected problem for non-object element: %q", batch[3].Invalid)
	}
	if batch[0].Quantity != 2 || batch[4].Quantity != 1 {
		t.Errorf("unexpected quantities %d and %d", batch[0].Quantity, batch[4].Quantity)
	}
}

func TestExtractChanges_TrailingData(t *testing.T) {
	_, err := ExtractChanges(`{"changes":[]} {"changes":[]}`)

	var parseErr *ResponseParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ResponseParseError, got %v", err)
	}
}
