// Package vademecum lee el catálogo de medicamentos desde la planilla publicada (.xlsx)
// o desde una exportación CSV en Latin-1.
package vademecum

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encabezados de la planilla. Algunas ediciones usan "principios-activos".
const (
	colTradeName    = "nombre-comercial"
	colPresentation = "presentacion"
	colAction       = "accion-farmacologica"
	colIngredient   = "principio-activo"
	colIngredients  = "principios-activos"
	colLaboratory   = "laboratorio"
)

var errNoTradeName = errors.New("vademecum: falta la columna nombre-comercial")

// ReadXLSX lee la primera hoja del libro.
func ReadXLSX(path string) ([]*entity.VademecumEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("vademecum: abrir %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("vademecum: %s no tiene hojas", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("vademecum: leer hoja %s: %w", sheets[0], err)
	}
	return fromRows(rows)
}

// ReadCSV lee un CSV con encabezado. Con latin1 decodifica ISO-8859-1 antes de parsear.
func ReadCSV(r io.Reader, latin1 bool) ([]*entity.VademecumEntry, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("vademecum: leer csv: %w", err)
	}
	return fromRows(rows)
}

func fromRows(rows [][]string) ([]*entity.VademecumEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := idx[colTradeName]; !ok {
		return nil, errNoTradeName
	}
	ingredient := colIngredient
	if _, ok := idx[ingredient]; !ok {
		ingredient = colIngredients
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]*entity.VademecumEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, colTradeName)
		if name == "" {
			continue
		}
		out = append(out, &entity.VademecumEntry{
			TradeName:             name,
			Presentation:          cell(row, colPresentation),
			PharmacologicalAction: cell(row, colAction),
			ActiveIngredient:      cell(row, ingredient),
			Laboratory:            cell(row, colLaboratory),
		})
	}
	return out, nil
}
