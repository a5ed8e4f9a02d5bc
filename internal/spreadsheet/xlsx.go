package spreadsheet

import (
	"bytes"
	"fmt"

	"github.com/vfg2006/receivables-dashboard-api/pkg/log"
	"github.com/xuri/excelize/v2"
)

func readXLSX(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.L.WithError(err).Warn("spreadsheet: failed to release workbook")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrMalformed, sheets[0], err)
	}

	return rows, nil
}
