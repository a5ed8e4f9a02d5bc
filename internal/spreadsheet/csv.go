package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

var utf8BOM = []byte("\xef\xbb\xbf")

func readCSV(content []byte) ([][]string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = sniffDelimiter(content)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return records, nil
}

// sniffDelimiter picks the most frequent delimiter candidate on the header line.
func sniffDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, candidate := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte{byte(candidate)}); n > bestCount {
			best, bestCount = candidate, n
		}
	}

	return best
}
