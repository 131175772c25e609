// Package evalfile loads evaluation gold sets and writes evaluation reports.
//
// Gold sets are JSON lines or YAML, chosen by file extension. Reports are
// written as an indented JSON document and as a flat CSV table.
package evalfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// csvHeader is the column order of CSV reports.
var csvHeader = []string{
	"id", "verdict", "exact_match", "precision", "recall", "f1",
	"expected_uids", "predicted_uids", "question",
}

// ErrEmptyGoldSet is returned when a gold file holds no cases.
var ErrEmptyGoldSet = errors.New("gold set is empty")

// goldRow accepts ids and uids written as numbers or strings.
type goldRow struct {
	ID            any      `json:"id" yaml:"id"`
	Question      string   `json:"question" yaml:"question"`
	ExpectedUIDs  []any    `json:"expected_uids" yaml:"expected_uids"`
	AllowedCities []string `json:"allowed_cities" yaml:"allowed_cities"`
	FutureOnly    *bool    `json:"future_only" yaml:"future_only"`
}

func (r goldRow) toCase(fallbackID string) domain.EvalCase {
	id := scalarString(r.ID)
	if id == "" {
		id = fallbackID
	}
	uids := make([]string, 0, len(r.ExpectedUIDs))
	for _, u := range r.ExpectedUIDs {
		if s := scalarString(u); s != "" {
			uids = append(uids, s)
		}
	}
	return domain.EvalCase{
		ID:            id,
		Question:      r.Question,
		ExpectedUIDs:  uids,
		AllowedCities: r.AllowedCities,
		FutureOnly:    r.FutureOnly,
	}
}

// LoadCases reads a gold set. Files ending in .yaml or .yml are YAML
// (a list of cases, or a document with a "cases" key); anything else is
// read as JSON lines.
func LoadCases(path string) ([]domain.EvalCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gold set: %w", err)
	}
	defer f.Close()

	var cases []domain.EvalCase
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cases, err = decodeYAML(f)
	default:
		cases, err = decodeJSONL(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyGoldSet)
	}
	return cases, nil
}

func decodeJSONL(r io.Reader) ([]domain.EvalCase, error) {
	var cases []domain.EvalCase
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)

	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var row goldRow
		if err := json.Unmarshal(text, &row); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", line, err)
		}
		cases = append(cases, row.toCase("q"+strconv.Itoa(len(cases)+1)))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cases, nil
}

func decodeYAML(r io.Reader) ([]domain.EvalCase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rows []goldRow
	if err := yaml.Unmarshal(data, &rows); err != nil {
		var doc struct {
			Cases []goldRow `yaml:"cases"`
		}
		if err2 := yaml.Unmarshal(data, &doc); err2 != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		rows = doc.Cases
	}

	cases := make([]domain.EvalCase, 0, len(rows))
	for i, row := range rows {
		cases = append(cases, row.toCase("q"+strconv.Itoa(i+1)))
	}
	return cases, nil
}

// WriteJSON writes the report as {"summary": ..., "results": [...]}.
func WriteJSON(path string, report *domain.EvalReport) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	})
}

// WriteCSV writes one row per result. Uid lists are space separated.
func WriteCSV(path string, report *domain.EvalReport) error {
	return writeFile(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, r := range report.Results {
			if err := cw.Write([]string{
				r.ID,
				string(r.Verdict),
				strconv.FormatBool(r.ExactMatch),
				formatScore(r.Precision),
				formatScore(r.Recall),
				formatScore(r.F1),
				strings.Join(r.ExpectedUIDs, " "),
				strings.Join(r.PredictedUIDs, " "),
				r.Question,
			}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// scalarString renders a decoded JSON or YAML scalar.
func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
