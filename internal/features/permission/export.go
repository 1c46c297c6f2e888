package permission

import (
	"bytes"

	"go-cmms/pkg/permissions"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func tripleLabel(t permissions.Triple) string {
	var out []byte
	for _, a := range []struct {
		set   bool
		label byte
	}{{t.View, 'V'}, {t.Edit, 'E'}, {t.Delete, 'D'}} {
		if a.set {
			out = append(out, a.label)
		}
	}
	if len(out) == 0 {
		return "-"
	}
	return string(out)
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return err
	}
	if style != 0 {
		last, _ := excelize.CoordinatesToCellName(len(values), row)
		return f.SetCellStyle(sheet, cell, last, style)
	}
	return nil
}

// ExportRoleDefaults renders one sheet with a row per module and a column per
// role. Cells hold the granted actions as letters (V, E, D) or "-".
func ExportRoleDefaults(defaults map[permissions.Role]permissions.Matrix) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Role defaults"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	style, err := headerStyle(f)
	if err != nil {
		return nil, err
	}

	header := []interface{}{"Module"}
	for _, r := range permissions.AllRoles {
		header = append(header, string(r))
	}
	if err := writeRow(f, sheet, 1, header, style); err != nil {
		return nil, err
	}

	for i, mod := range permissions.AllModules {
		row := []interface{}{string(mod)}
		for _, r := range permissions.AllRoles {
			row = append(row, tripleLabel(defaults[r].Get(mod)))
		}
		if err := writeRow(f, sheet, i+2, row, 0); err != nil {
			return nil, err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", lastCol, 13)

	return f.WriteToBuffer()
}

// ExportUserPermissions renders the effective matrix of one user, marking
// which rows come from an explicit stored entry.
func ExportUserPermissions(p *UserPermissions) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Permissions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	style, err := headerStyle(f)
	if err != nil {
		return nil, err
	}

	if err := writeRow(f, sheet, 1, []interface{}{"User", p.Username, "Role", string(p.Role)}, 0); err != nil {
		return nil, err
	}
	if err := writeRow(f, sheet, 3, []interface{}{"Module", "View", "Edit", "Delete", "Source"}, style); err != nil {
		return nil, err
	}

	for i, mod := range permissions.AllModules {
		t := p.Effective.Get(mod)
		row := []interface{}{string(mod), t.View, t.Edit, t.Delete, p.Source(mod)}
		if err := writeRow(f, sheet, i+4, row, 0); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 24)
	_ = f.SetColWidth(sheet, "B", "E", 12)

	return f.WriteToBuffer()
}
