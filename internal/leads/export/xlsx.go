package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rentalneeds/leadflow-backend/internal/leads/repository"
)

// SheetName is the worksheet holding the lead rows.
const SheetName = "Leads"

// Headers are the column titles of the lead export, in order.
var Headers = []string{
	"Created",
	"First Name",
	"Last Name",
	"Date of Birth",
	"ID Type",
	"ID Number",
	"Status",
	"Trust Score",
	"ID Image",
	"Bank Statement",
}

// CustomersXLSX renders customers as a single-sheet workbook
func CustomersXLSX(customers []*repository.Customer) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i, c := range customers {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}

		write(1, c.CreatedAt.UTC().Format(time.RFC3339))
		write(2, c.FirstName)
		write(3, c.LastName)
		write(4, c.DateOfBirth)
		write(5, c.IDType)
		write(6, c.IDNumber)
		write(7, string(c.Status))
		if c.TrustScore != nil {
			write(8, *c.TrustScore)
		}
		write(9, deref(c.IDImageURL))
		write(10, deref(c.BankStatementURL))
	}

	_ = f.SetColWidth(SheetName, "A", "A", 22)
	_ = f.SetColWidth(SheetName, "B", "C", 18)
	_ = f.SetColWidth(SheetName, "D", "F", 20)
	_ = f.SetColWidth(SheetName, "G", "H", 18)
	_ = f.SetColWidth(SheetName, "I", "J", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
