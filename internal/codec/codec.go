// Package codec reads and writes the holdings text file: records of six
// `key = "value"` lines separated by blank lines.
package codec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "eportfolio/internal/errors"
)

// Field keys, in the order they are written.
const (
	KeyType      = "type"
	KeySymbol    = "symbol"
	KeyName      = "name"
	KeyQuantity  = "quantity"
	KeyPrice     = "price"
	KeyBookValue = "bookValue"
)

// MaxLineSize is the longest line Decode accepts. A longer line stops
// decoding with a ParseError.
const MaxLineSize = 1 << 20

// Record is one holding as stored on disk.
type Record struct {
	Type      string
	Symbol    string
	Name      string
	Quantity  int
	Price     float64
	BookValue float64
}

// accumulator collects fields until a bookValue line commits them.
type accumulator struct {
	rec       Record
	hasType   bool
	hasSymbol bool
	hasName   bool
}

func (a *accumulator) complete() bool {
	return a.hasType && a.hasSymbol && a.hasName
}

// Decode reads records from r. A record is committed when its bookValue line
// is read, provided its type, symbol and name lines came before it;
// otherwise the partial record is discarded. Blank and unrecognised lines
// are skipped.
//
// On a read error or a malformed number, Decode stops and returns the records
// committed so far together with the error.
func Decode(r io.Reader) ([]Record, error) {
	var (
		records []Record
		acc     accumulator
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), MaxLineSize)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := splitLine(line)
		if !ok {
			continue
		}

		switch key {
		case KeyType:
			acc.rec.Type, acc.hasType = value, true
		case KeySymbol:
			acc.rec.Symbol, acc.hasSymbol = value, true
		case KeyName:
			acc.rec.Name, acc.hasName = value, true
		case KeyQuantity:
			qty, err := strconv.Atoi(value)
			if err != nil {
				return records, apperrors.NewParseError(lineNo, key, value, err)
			}
			acc.rec.Quantity = qty
		case KeyPrice:
			price, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return records, apperrors.NewParseError(lineNo, key, value, err)
			}
			acc.rec.Price = price
		case KeyBookValue:
			bv, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return records, apperrors.NewParseError(lineNo, key, value, err)
			}
			acc.rec.BookValue = bv
			if acc.complete() {
				records = append(records, acc.rec)
			}
			acc = accumulator{}
		}
	}

	if err := scanner.Err(); err != nil {
		return records, apperrors.NewParseError(lineNo+1, "", "", err)
	}
	return records, nil
}

// splitLine splits `key = "value"` at the first '='. The value is trimmed and
// one pair of enclosing double quotes is removed.
func splitLine(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}

// Encode writes records in file order, each followed by a blank line.
func Encode(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		fields := [][2]string{
			{KeyType, rec.Type},
			{KeySymbol, rec.Symbol},
			{KeyName, rec.Name},
			{KeyQuantity, strconv.Itoa(rec.Quantity)},
			{KeyPrice, formatFloat(rec.Price)},
			{KeyBookValue, formatFloat(rec.BookValue)},
		}
		for _, f := range fields {
			if _, err := fmt.Fprintf(bw, "%s = \"%s\"\n", f[0], f[1]); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// formatFloat uses the shortest representation that parses back to the
// same float64.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadFile decodes the file at path. A missing file is not an error and
// yields no records.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return records, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}

// WriteFile overwrites the file at path with records.
func WriteFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Encode(f, records); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
