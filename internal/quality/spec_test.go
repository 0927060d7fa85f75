package quality

import (
	"strings"
	"testing"
)

const validSpecYAML = `
schema: lakeline.quality.rule.v1
checks:
  - id: size
    type: object_size_bytes
    min_bytes: 1
  - id: suffix
    type: filename_suffix_in
    allowed: [".csv", ".parquet"]
  - id: header
    type: csv_header_has_columns
    columns: [vendor_id, pickup_datetime]
  - id: rows
    type: csv_min_rows
    min_rows: 1
`

func TestParseRuleSpec(t *testing.T) {
	spec, err := ParseRuleSpec([]byte(validSpecYAML))
	if err != nil {
		t.Fatalf("parse rule spec: %v", err)
	}
	if len(spec.Checks) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(spec.Checks))
	}
	if spec.Checks[0].MinBytes == nil || *spec.Checks[0].MinBytes != 1 {
		t.Fatalf("unexpected min_bytes %v", spec.Checks[0].MinBytes)
	}
}

func TestParseRuleSpecRejectsBadYAML(t *testing.T) {
	if _, err := ParseRuleSpec([]byte(":\nnot yaml")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRuleSpecValidate(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"wrong schema", strings.Replace(validSpecYAML, "lakeline.quality.rule.v1", "v2", 1)},
		{"no checks", "schema: lakeline.quality.rule.v1\nchecks: []\n"},
		{"missing id", "schema: lakeline.quality.rule.v1\nchecks:\n  - type: csv_min_rows\n    min_rows: 1\n"},
		{"duplicate id", "schema: lakeline.quality.rule.v1\nchecks:\n  - id: a\n    type: csv_min_rows\n    min_rows: 1\n  - id: a\n    type: csv_min_rows\n    min_rows: 2\n"},
		{"unknown type", "schema: lakeline.quality.rule.v1\nchecks:\n  - id: a\n    type: row_count_between\n"},
		{"size without bounds", "schema: lakeline.quality.rule.v1\nchecks:\n  - id: a\n    type: object_size_bytes\n"},
		{"size min above max", "schema: lakeline.quality.rule.v1\nchecks:\n  - id: a\n    type: object_size_bytes\n    min_bytes: 10\n    max_bytes: 5\n"},
		{"suffix without allowed", "schema: lakeline.quality.rule.v1\nchecks:\n  - id: a\n    type: filename_suffix_in\n"},
		{"header without columns", "schema: lakeline.quality.rule.v1\nchecks:\n  - id: a\n    type: csv_header_has_columns\n"},
		{"multi-char delimiter", "schema: lakeline.quality.rule.v1\nchecks:\n  - id: a\n    type: csv_header_has_columns\n    columns: [x]\n    delimiter: '||'\n"},
		{"rows without min", "schema: lakeline.quality.rule.v1\nchecks:\n  - id: a\n    type: csv_min_rows\n"},
	}
	for _, tc := range cases {
		if _, err := ParseRuleSpec([]byte(tc.yaml)); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
