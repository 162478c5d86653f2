package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/retail_api/internal/importer"
)

const instructionsSheet = "Instructions"

// Content types and file names of the downloadable templates.
const (
	XLSXContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	CSVContentType   = "text/csv; charset=utf-8"
	TemplateBaseName = "modele_import_produits"
)

// WriteCSVTemplate writes the header line of the import file.
func WriteCSVTemplate(w io.Writer) error {
	cols := importer.Columns()
	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.Name
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSXTemplate writes a workbook with an empty product sheet, required
// columns highlighted, and an instructions sheet describing every column.
func WriteXLSXTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProductSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}
	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}

	cols := importer.Columns()
	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		label := col.Name
		style := headerStyle
		if col.Required {
			label += " *"
			style = requiredStyle
		}
		if err := f.SetCellValue(ProductSheet, cell, label); err != nil {
			return err
		}
		if err := f.SetCellStyle(ProductSheet, cell, cell, style); err != nil {
			return err
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(ProductSheet, colName, colName, 20); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(instructionsSheet); err != nil {
		return err
	}
	lines := [][]interface{}{
		{"Import de produits"},
		{},
		{"Les colonnes marquées * sont obligatoires."},
		{"Une catégorie inconnue est créée automatiquement."},
		{"Un produit dont le nom ou le code barre existe déjà est ignoré et signalé comme doublon."},
		{},
		{"Colonne", "Description", "Obligatoire", "Type", "Exemple"},
	}
	for _, col := range cols {
		required := "Non"
		if col.Required {
			required = "Oui"
		}
		lines = append(lines, []interface{}{col.Name, col.Description, required, col.Type, col.Example})
	}
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		if err := f.SetSheetRow(instructionsSheet, fmt.Sprintf("A%d", i+1), &line); err != nil {
			return err
		}
	}
	for col, width := range map[string]float64{"A": 25, "B": 60, "C": 15, "D": 15, "E": 30} {
		if err := f.SetColWidth(instructionsSheet, col, col, width); err != nil {
			return err
		}
	}

	idx, err := f.GetSheetIndex(ProductSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	return f.Write(w)
}
