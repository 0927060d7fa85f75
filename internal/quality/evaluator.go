package quality

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"
)

// Report describes the outcome of evaluating one landed object against a
// rule spec.
type Report struct {
	ObjectKey   string        `json:"object_key"`
	Status      string        `json:"status"`
	EvaluatedAt time.Time     `json:"evaluated_at"`
	Summary     Summary       `json:"summary"`
	Checks      []CheckResult `json:"checks"`
}

type Summary struct {
	ChecksTotal int      `json:"checks_total"`
	ChecksPass  int      `json:"checks_pass"`
	ChecksFail  int      `json:"checks_fail"`
	ChecksError int      `json:"checks_error"`
	Failing     []string `json:"failing_check_ids,omitempty"`
}

type CheckResult struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Observed map[string]any `json:"observed,omitempty"`
	Expected map[string]any `json:"expected,omitempty"`
}

// ObjectInput is the landed object under evaluation.
type ObjectInput struct {
	Key       string
	Filename  string
	SizeBytes int64
}

type objectOpener func(ctx context.Context) (io.ReadCloser, error)

const (
	checkPass  = "pass"
	checkFail  = "fail"
	checkError = "error"
)

func evaluate(ctx context.Context, now time.Time, spec RuleSpec, in ObjectInput, openObject objectOpener) Report {
	report := Report{
		ObjectKey:   in.Key,
		EvaluatedAt: now.UTC(),
	}

	checks := make([]CheckResult, 0, len(spec.Checks))
	var passCount, failCount, errorCount int
	var failingIDs []string

	for _, check := range spec.Checks {
		result := evaluateCheck(ctx, check, in, openObject)
		checks = append(checks, result)

		switch result.Status {
		case checkPass:
			passCount++
		case checkFail:
			failCount++
			failingIDs = append(failingIDs, check.ID)
		default:
			errorCount++
			failingIDs = append(failingIDs, check.ID)
		}
	}

	report.Checks = checks
	report.Summary = Summary{
		ChecksTotal: len(checks),
		ChecksPass:  passCount,
		ChecksFail:  failCount,
		ChecksError: errorCount,
		Failing:     failingIDs,
	}

	switch {
	case errorCount > 0:
		report.Status = checkError
	case failCount > 0:
		report.Status = checkFail
	default:
		report.Status = checkPass
	}

	return report
}

func evaluateCheck(ctx context.Context, check CheckSpec, in ObjectInput, openObject objectOpener) CheckResult {
	kind := strings.ToLower(strings.TrimSpace(check.Type))
	result := CheckResult{
		ID:   strings.TrimSpace(check.ID),
		Type: kind,
	}

	switch kind {
	case checkObjectSizeBytes:
		min := int64(-1)
		max := int64(-1)
		if check.MinBytes != nil {
			min = *check.MinBytes
		}
		if check.MaxBytes != nil {
			max = *check.MaxBytes
		}
		size := in.SizeBytes

		result.Observed = map[string]any{"size_bytes": size}
		result.Expected = map[string]any{}
		if min >= 0 {
			result.Expected["min_bytes"] = min
		}
		if max >= 0 {
			result.Expected["max_bytes"] = max
		}

		if min >= 0 && size < min {
			result.Status = checkFail
			result.Message = "size below minimum"
			return result
		}
		if max >= 0 && size > max {
			result.Status = checkFail
			result.Message = "size above maximum"
			return result
		}
		result.Status = checkPass
		return result

	case checkFilenameSuffixIn:
		allowed := trimNonEmpty(check.Allowed)
		filename := strings.TrimSpace(in.Filename)
		result.Observed = map[string]any{"filename": filename}
		result.Expected = map[string]any{"allowed": allowed}
		for _, item := range allowed {
			if strings.HasSuffix(strings.ToLower(filename), strings.ToLower(strings.TrimSpace(item))) {
				result.Status = checkPass
				return result
			}
		}
		result.Status = checkFail
		result.Message = "filename suffix not allowed"
		return result

	case checkCSVHeaderHasColumns:
		cols := trimNonEmpty(check.Columns)
		delimiter := strings.TrimSpace(check.Delimiter)
		if delimiter == "" {
			delimiter = ","
		}

		reader, err := openObject(ctx)
		if err != nil {
			result.Status = checkError
			result.Message = "object read failed"
			return result
		}
		defer reader.Close()

		header, err := readCSVHeader(reader, rune(delimiter[0]))
		if err != nil {
			result.Status = checkError
			result.Message = "csv header parse failed"
			result.Observed = map[string]any{"error": err.Error()}
			return result
		}

		missing := make([]string, 0)
		for _, required := range cols {
			if !containsString(header, required) {
				missing = append(missing, required)
			}
		}
		result.Expected = map[string]any{"required_columns": cols, "delimiter": delimiter}
		result.Observed = map[string]any{"header": header, "missing": missing}
		if len(missing) > 0 {
			result.Status = checkFail
			result.Message = "missing required csv columns"
			return result
		}
		result.Status = checkPass
		return result

	case checkCSVMinRows:
		minRows := int64(0)
		if check.MinRows != nil {
			minRows = *check.MinRows
		}

		reader, err := openObject(ctx)
		if err != nil {
			result.Status = checkError
			result.Message = "object read failed"
			return result
		}
		defer reader.Close()

		rows, err := countCSVDataRows(reader)
		if err != nil {
			result.Status = checkError
			result.Message = "csv row count failed"
			result.Observed = map[string]any{"error": err.Error()}
			return result
		}
		result.Observed = map[string]any{"data_rows": rows}
		result.Expected = map[string]any{"min_rows": minRows}
		if rows < minRows {
			result.Status = checkFail
			result.Message = "too few data rows"
			return result
		}
		result.Status = checkPass
		return result

	default:
		result.Status = checkError
		result.Message = "unsupported check type"
		return result
	}
}

func readCSVHeader(r io.Reader, delimiter rune) ([]string, error) {
	const maxHeaderBytes = 1 << 20
	br := bufio.NewReader(io.LimitReader(r, maxHeaderBytes))
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, errors.New("empty header")
	}

	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	fields, err := cr.Read()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		col := strings.TrimSpace(f)
		if col == "" {
			continue
		}
		key := strings.ToLower(col)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, col)
	}
	return out, nil
}

// countCSVDataRows counts non-empty lines after the header.
func countCSVDataRows(r io.Reader) (int64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	var rows int64
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return rows, nil
}

func containsString(in []string, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	for _, item := range in {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}

func trimNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
