package spreadsheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/retail_api/internal/importer"
)

func workbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		row := row
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseXLSX(t *testing.T) {
	buf := workbook(t, ProductSheet, [][]interface{}{
		{"Nom *", "catégorie", "Prix détail *", "Unité", "Code barre", "Actif", "Date expiration", "Remarque"},
		{"Riz", "Céréales", 1250.5, "kg", "3017620422003", false, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), "ok"},
		{},
		{"Huile", "Épicerie", 900, "L", nil, true},
	})

	rows, err := ParseXLSX(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "Riz", first[importer.ColName])
	assert.Equal(t, "Céréales", first[importer.ColCategory])
	assert.Equal(t, "1250.5", first[importer.ColUnitPrice])
	assert.Equal(t, "3017620422003", first[importer.ColBarcode])
	assert.Equal(t, false, first[importer.ColActive])
	assert.Equal(t, "ok", first["Remarque"])

	// Dates arrive as Excel serials and are decoded by the normalizer.
	draft, err := importer.Normalize(first, "T1")
	require.NoError(t, err)
	require.NotNil(t, draft.ExpirationDate)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), *draft.ExpirationDate)
	assert.False(t, draft.IsActive)

	second := rows[1]
	assert.Equal(t, true, second[importer.ColActive])
	_, hasBarcode := second[importer.ColBarcode]
	assert.False(t, hasBarcode)
}

func TestParseXLSX_PrefersProductSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Autre"))
	_, err := f.NewSheet(ProductSheet)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(ProductSheet, "A1", "Nom"))
	require.NoError(t, f.SetCellValue(ProductSheet, "A2", "Riz"))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ParseXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Riz", rows[0][importer.ColName])
}

func TestParseXLSX_Invalid(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("not a workbook"))
	assert.Error(t, err)

	_, err = ParseXLSX(workbook(t, "Sheet1", nil))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestParseCSV(t *testing.T) {
	in := "\ufeffNom;Catégorie;Prix détail;Unité;Actif\n" +
		"Riz;Céréales;1 250,50;kg;false\n" +
		";;;;\n" +
		"Huile;Épicerie;900;L\n"

	rows, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Riz", rows[0][importer.ColName])
	assert.Equal(t, "1 250,50", rows[0][importer.ColUnitPrice])
	assert.Equal(t, "false", rows[0][importer.ColActive])
	_, hasActive := rows[1][importer.ColActive]
	assert.False(t, hasActive)

	draft, err := importer.Normalize(rows[0], "T1")
	require.NoError(t, err)
	assert.False(t, draft.IsActive)
}

func TestParseCSV_CommaSeparated(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("Nom,Prix détail\n\"Riz, long\",1000\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Riz, long", rows[0][importer.ColName])
}

func TestParse_KeepsFileLineNumbers(t *testing.T) {
	csvIn := "Nom;Prix détail\nRiz;1000\n\n;\nHuile;900\n"
	sheet, err := Parse(FormatCSV, strings.NewReader(csvIn))
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Huile", sheet.Rows[1][importer.ColName])
	assert.Equal(t, []int{2, 5}, sheet.Lines)

	buf := workbook(t, ProductSheet, [][]interface{}{
		{"Nom", "Prix détail"},
		{"Riz", 1000},
		nil,
		{"Huile", 900},
	})
	sheet, err = Parse(FormatXLSX, buf)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, []int{2, 4}, sheet.Lines)
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("Produits.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatOf("export.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatOf("produits.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestTemplates(t *testing.T) {
	var csvBuf bytes.Buffer
	require.NoError(t, WriteCSVTemplate(&csvBuf))
	header := strings.TrimSpace(csvBuf.String())
	assert.True(t, strings.HasPrefix(header, "Nom,Catégorie,Prix détail,Unité"))

	var xlsxBuf bytes.Buffer
	require.NoError(t, WriteXLSXTemplate(&xlsxBuf))

	f, err := excelize.OpenReader(&xlsxBuf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{ProductSheet, instructionsSheet}, f.GetSheetList())

	first, err := f.GetCellValue(ProductSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Nom *", first)

	// A filled-in template parses back to canonical labels.
	require.NoError(t, f.SetSheetRow(ProductSheet, "A2", &[]interface{}{"Riz", "Céréales", 1000, "kg"}))
	var filled bytes.Buffer
	require.NoError(t, f.Write(&filled))
	rows, err := ParseXLSX(&filled)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Riz", rows[0][importer.ColName])
	assert.Equal(t, "1000", rows[0][importer.ColUnitPrice])
}
