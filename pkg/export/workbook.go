package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/schedule"
)

const (
	ShiftsSheet   = "Shifts"
	CoverageSheet = "Coverage"
)

var shiftHeader = []interface{}{"id", "name", "startHour", "endHour", "label", "order", "effectiveFrom", "effectiveUntil"}

// WriteSchedule writes the shift definitions and a coverage summary of
// the given day's schedule as an xlsx workbook.
func WriteSchedule(w io.Writer, defs []models.ShiftDefinition, today []models.ShiftDefinition) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ShiftsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ShiftsSheet, "A1", &shiftHeader); err != nil {
		return err
	}
	for i, def := range defs {
		until := ""
		if def.EffectiveUntil != nil {
			until = *def.EffectiveUntil
		}
		row := []interface{}{def.ID, def.EmployeeName, def.StartHour, def.EndHour, def.Label, def.Order, def.EffectiveFrom, until}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ShiftsSheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(CoverageSheet); err != nil {
		return err
	}
	cov := schedule.Validate(today)
	rows := [][]interface{}{{"kind", "startHour", "endHour", "names"}}
	for _, g := range cov.Gaps {
		rows = append(rows, []interface{}{"gap", g.StartHour, g.EndHour, ""})
	}
	for _, o := range cov.Overlaps {
		rows = append(rows, []interface{}{"overlap", o.StartHour, o.EndHour, strings.Join(o.Names, ", ")})
	}
	for _, issue := range cov.Invalid {
		rows = append(rows, []interface{}{"invalid", "", "", fmt.Sprintf("%s (#%d): %s", issue.Name, issue.ID, issue.Reason)})
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(CoverageSheet, cell, &rows[i]); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// ReadShifts parses shift definitions from the first sheet of an xlsx
// workbook. The first row is a header naming the columns; id is ignored.
func ReadShifts(r io.Reader) ([]models.ShiftDefinition, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, errors.New("sheet must contain a header and at least one row")
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"name", "startHour", "endHour"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var defs []models.ShiftDefinition
	for n, row := range rows[1:] {
		line := n + 2
		if cell(row, "name") == "" {
			continue
		}
		start, err := strconv.ParseFloat(cell(row, "startHour"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid startHour: %w", line, err)
		}
		end, err := strconv.ParseFloat(cell(row, "endHour"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid endHour: %w", line, err)
		}
		def := models.ShiftDefinition{
			EmployeeName:  cell(row, "name"),
			StartHour:     start,
			EndHour:       end,
			Label:         cell(row, "label"),
			EffectiveFrom: cell(row, "effectiveFrom"),
		}
		if v := cell(row, "order"); v != "" {
			order, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid order: %w", line, err)
			}
			def.Order = order
		} else {
			def.Order = len(defs)
		}
		if v := cell(row, "effectiveUntil"); v != "" {
			def.EffectiveUntil = &v
		}
		defs = append(defs, def)
	}
	return defs, nil
}
