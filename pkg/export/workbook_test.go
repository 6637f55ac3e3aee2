package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/schedule"
)

func TestWriteSchedule_ReadBack(t *testing.T) {
	until := "2026-12-31"
	defs := []models.ShiftDefinition{
		{ID: 1, EmployeeName: "SUHAIL", StartHour: 9, EndHour: 18, Label: "Day", Order: 0, EffectiveFrom: "2026-10-01", EffectiveUntil: &until},
		{ID: 2, EmployeeName: "AZEEZ", StartHour: 18, EndHour: 26.5, Label: "Night", Order: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSchedule(&buf, defs, defs))

	back, err := ReadShifts(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "SUHAIL", back[0].EmployeeName)
	assert.Equal(t, "2026-10-01", back[0].EffectiveFrom)
	require.NotNil(t, back[0].EffectiveUntil)
	assert.Equal(t, until, *back[0].EffectiveUntil)
	assert.Equal(t, 26.5, back[1].EndHour)
	assert.Nil(t, back[1].EffectiveUntil)
	assert.Equal(t, 1, back[1].Order)
}

func TestWriteSchedule_CoverageSheet(t *testing.T) {
	defs := []models.ShiftDefinition{{ID: 1, EmployeeName: "SUHAIL", StartHour: 9, EndHour: 18}}

	var buf bytes.Buffer
	require.NoError(t, WriteSchedule(&buf, defs, defs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err := f.GetRows(CoverageSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two gaps")
	assert.Equal(t, "gap", rows[1][0])
}

func TestWriteSchedule_DefaultsHaveNoCoverageRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchedule(&buf, schedule.DefaultShifts, schedule.DefaultShifts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err := f.GetRows(CoverageSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReadShifts_MissingColumn(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"name", "startHour"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"SUHAIL", 9}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := ReadShifts(&buf)
	assert.ErrorContains(t, err, "endHour")
}
