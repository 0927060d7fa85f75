package quality

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ruleSpecSchemaV1 = "lakeline.quality.rule.v1"

	checkObjectSizeBytes     = "object_size_bytes"
	checkFilenameSuffixIn    = "filename_suffix_in"
	checkCSVHeaderHasColumns = "csv_header_has_columns"
	checkCSVMinRows          = "csv_min_rows"
)

// RuleSpec is a declarative set of checks applied to each landed object.
type RuleSpec struct {
	Schema string      `yaml:"schema" json:"schema"`
	Checks []CheckSpec `yaml:"checks" json:"checks"`
}

type CheckSpec struct {
	ID   string `yaml:"id" json:"id"`
	Type string `yaml:"type" json:"type"`

	MinBytes *int64 `yaml:"min_bytes,omitempty" json:"min_bytes,omitempty"`
	MaxBytes *int64 `yaml:"max_bytes,omitempty" json:"max_bytes,omitempty"`

	Allowed []string `yaml:"allowed,omitempty" json:"allowed,omitempty"`

	Columns   []string `yaml:"columns,omitempty" json:"columns,omitempty"`
	Delimiter string   `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`

	MinRows *int64 `yaml:"min_rows,omitempty" json:"min_rows,omitempty"`
}

// ParseRuleSpec decodes and validates a yaml rule spec document.
func ParseRuleSpec(raw []byte) (RuleSpec, error) {
	var spec RuleSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return RuleSpec{}, fmt.Errorf("parse rule spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return RuleSpec{}, err
	}
	return spec, nil
}

func (s RuleSpec) Validate() error {
	if strings.TrimSpace(s.Schema) != ruleSpecSchemaV1 {
		return fmt.Errorf("spec.schema must be %q", ruleSpecSchemaV1)
	}
	if len(s.Checks) == 0 {
		return errors.New("spec.checks must be non-empty")
	}

	seen := make(map[string]struct{}, len(s.Checks))
	for i, check := range s.Checks {
		id := strings.TrimSpace(check.ID)
		if id == "" {
			return fmt.Errorf("spec.checks[%d].id is required", i)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("spec.checks[%d].id must be unique (duplicate %q)", i, id)
		}
		seen[id] = struct{}{}

		kind := strings.ToLower(strings.TrimSpace(check.Type))
		switch kind {
		case checkObjectSizeBytes:
			if check.MinBytes == nil && check.MaxBytes == nil {
				return fmt.Errorf("spec.checks[%d] requires min_bytes or max_bytes", i)
			}
			if check.MinBytes != nil && *check.MinBytes < 0 {
				return fmt.Errorf("spec.checks[%d].min_bytes must be >= 0", i)
			}
			if check.MaxBytes != nil && *check.MaxBytes < 0 {
				return fmt.Errorf("spec.checks[%d].max_bytes must be >= 0", i)
			}
			if check.MinBytes != nil && check.MaxBytes != nil && *check.MinBytes > *check.MaxBytes {
				return fmt.Errorf("spec.checks[%d].min_bytes must be <= max_bytes", i)
			}
		case checkFilenameSuffixIn:
			if len(check.Allowed) == 0 {
				return fmt.Errorf("spec.checks[%d] requires allowed suffixes", i)
			}
		case checkCSVHeaderHasColumns:
			if len(check.Columns) == 0 {
				return fmt.Errorf("spec.checks[%d] requires columns", i)
			}
			if len(check.Delimiter) > 1 {
				return fmt.Errorf("spec.checks[%d].delimiter must be a single character", i)
			}
		case checkCSVMinRows:
			if check.MinRows == nil || *check.MinRows < 0 {
				return fmt.Errorf("spec.checks[%d] requires min_rows >= 0", i)
			}
		default:
			return fmt.Errorf("spec.checks[%d].type %q is not supported", i, check.Type)
		}
	}
	return nil
}
