package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"Foodgram/domain"

	"gopkg.in/yaml.v2"
)

const DefaultDelimiter = ';'

// LoadIngredients reads "name<delim>measurement_unit" rows and upserts them.
// A leading header row naming both columns is honoured; without one the first
// two columns are used.
func LoadIngredients(ctx context.Context, s CatalogService, r io.Reader, delimiter rune) (domain.LoadReport, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	nameCol, unitCol := 0, 1
	var (
		report domain.LoadReport
		items  []domain.IngredientRequest
		first  = true
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("read ingredient file: %w", err)
		}

		if first {
			first = false
			if n, u, ok := headerColumns(record); ok {
				nameCol, unitCol = n, u
				continue
			}
		}

		report.Read++
		if len(record) <= nameCol || len(record) <= unitCol {
			continue
		}
		name := strings.TrimSpace(record[nameCol])
		unit := strings.TrimSpace(record[unitCol])
		if name == "" || unit == "" {
			continue
		}
		items = append(items, domain.IngredientRequest{Name: name, MeasurementUnit: unit})
	}

	created, err := s.UpsertIngredients(ctx, items)
	if err != nil {
		return report, err
	}
	report.Created = created
	report.Skipped = report.Read - created
	return report, nil
}

func headerColumns(record []string) (int, int, bool) {
	nameCol, unitCol := -1, -1
	for i, col := range record {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "name":
			nameCol = i
		case "measurement_unit":
			unitCol = i
		}
	}
	return nameCol, unitCol, nameCol >= 0 && unitCol >= 0
}

// LoadTags reads a YAML list of {name, color, slug} entries and upserts them.
func LoadTags(ctx context.Context, s CatalogService, r io.Reader) (domain.LoadReport, error) {
	var report domain.LoadReport

	data, err := io.ReadAll(r)
	if err != nil {
		return report, fmt.Errorf("read tag file: %w", err)
	}
	var items []domain.TagRequest
	if err := yaml.Unmarshal(data, &items); err != nil {
		return report, fmt.Errorf("%w: %v", domain.ErrInvalidTag, err)
	}

	report.Read = len(items)
	created, err := s.UpsertTags(ctx, items)
	if err != nil {
		return report, err
	}
	report.Created = created
	report.Skipped = report.Read - created
	return report, nil
}
