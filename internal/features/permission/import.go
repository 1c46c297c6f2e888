package permission

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go-cmms/pkg/permissions"

	"github.com/xuri/excelize/v2"
)

var ErrInvalidSheet = errors.New("invalid permissions sheet")

// ParseUserPermissions reads a sheet laid out like ExportUserPermissions: a
// header row starting with "Module" followed by one row per module with
// View, Edit and Delete columns. The "Permissions" sheet is used when
// present, otherwise the first one. Module names are not validated here.
func ParseUserPermissions(r io.Reader) (map[string]permissions.Triple, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
	}
	defer f.Close()

	sheet := "Permissions"
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: no sheets", ErrInvalidSheet)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSheet, err)
	}

	header := -1
	for i, row := range rows {
		if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "Module") {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, fmt.Errorf("%w: header row not found", ErrInvalidSheet)
	}

	entries := make(map[string]permissions.Triple)
	for i, row := range rows[header+1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		line := header + i + 2

		var cells [3]bool
		for j := range cells {
			var v string
			if len(row) > j+1 {
				v = row[j+1]
			}
			b, ok := parseCell(v)
			if !ok {
				return nil, fmt.Errorf("%w: row %d: cannot read %q", ErrInvalidSheet, line, v)
			}
			cells[j] = b
		}

		name := strings.TrimSpace(row[0])
		if _, dup := entries[name]; dup {
			return nil, fmt.Errorf("%w: row %d: module %q listed twice", ErrInvalidSheet, line, name)
		}
		entries[name] = permissions.Triple{View: cells[0], Edit: cells[1], Delete: cells[2]}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no module rows", ErrInvalidSheet)
	}
	return entries, nil
}

func parseCell(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "x", "yes":
		return true, true
	case "false", "0", "", "-", "no":
		return false, true
	}
	return false, false
}
