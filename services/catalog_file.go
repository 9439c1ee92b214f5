package services

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"catering-menu/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var catalogColumns = []string{"id", "name", "description", "price", "category", "image"}

// FileCatalogSource reads the catalog from a spreadsheet (.xlsx) or a .csv export of it.
type FileCatalogSource struct {
	Path string
}

func (s FileCatalogSource) Load(_ context.Context) ([]models.Dish, error) {
	if _, err := os.Stat(s.Path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrCatalogNotFound, "%s", s.Path)
		}
		return nil, readErrorf("%s: %v", s.Path, err)
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(s.Path)
	case ".csv":
		rows, err = readCSV(s.Path)
	default:
		return nil, readErrorf("%s: unsupported catalog format", s.Path)
	}
	if err != nil {
		return nil, readErrorf("%s: %v", s.Path, err)
	}
	return parseCatalogRows(rows)
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// parseCatalogRows turns a header row plus data rows into dishes. Blank rows are skipped.
func parseCatalogRows(rows [][]string) ([]models.Dish, error) {
	if len(rows) == 0 {
		return nil, readErrorf("catalog is empty")
	}
	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range catalogColumns {
		if _, ok := col[name]; !ok {
			return nil, readErrorf("missing column %q", name)
		}
	}

	var dishes []models.Dish
	for n, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		line := n + 2
		cell := func(name string) string {
			i := col[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		id, err := parseDishID(cell("id"))
		if err != nil {
			return nil, readErrorf("row %d: invalid id %q", line, cell("id"))
		}
		price, err := decimal.NewFromString(cell("price"))
		if err != nil {
			return nil, readErrorf("row %d: invalid price %q", line, cell("price"))
		}
		dishes = append(dishes, models.Dish{
			ID:          id,
			Name:        cell("name"),
			Description: cell("description"),
			Price:       price,
			Category:    cell("category"),
			Image:       cell("image"),
		})
	}
	return dishes, nil
}

// parseDishID accepts "3" and spreadsheet-style "3.0".
func parseDishID(s string) (int64, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, errors.Errorf("id %s is not an integer", s)
	}
	return d.IntPart(), nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
