package datasets

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/polycv/pkg/errors"
)

// ReadCSV は 2 列（x, t）の CSV を読み込む
//
// 先頭行が数値として解釈できない場合はヘッダーとして読み飛ばす。
// 3 列目以降は無視する。
func ReadCSV(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var d Dataset
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return Dataset{}, errors.Wrapf(err, "datasets: reading line %d", line)
		}
		if len(record) < 2 {
			return Dataset{}, errors.Newf("datasets: line %d: expected 2 columns (x, t), got %d", line, len(record))
		}

		x, errX := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		t, errT := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if errX != nil || errT != nil {
			if line == 1 {
				continue
			}
			return Dataset{}, errors.Newf("datasets: line %d: non-numeric value %q", line, record[:2])
		}
		if err := errors.CheckNumericalStability("ReadCSV", []float64{x, t}, line); err != nil {
			return Dataset{}, errors.Wrapf(err, "datasets: line %d", line)
		}
		d.X = append(d.X, x)
		d.T = append(d.T, t)
	}

	if d.Len() == 0 {
		return Dataset{}, errors.Wrap(errors.ErrEmptyData, "datasets: no rows")
	}
	return d, nil
}

// WriteCSV は x,t ヘッダー付きで Dataset を書き出す
func WriteCSV(w io.Writer, d Dataset) error {
	if len(d.X) != len(d.T) {
		return errors.NewShapeMismatchError("WriteCSV", "x", len(d.X), "t", len(d.T))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "t"}); err != nil {
		return errors.Wrap(err, "datasets: writing header")
	}
	for i := range d.X {
		if err := cw.Write([]string{
			strconv.FormatFloat(d.X[i], 'g', -1, 64),
			strconv.FormatFloat(d.T[i], 'g', -1, 64),
		}); err != nil {
			return errors.Wrapf(err, "datasets: writing row %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "datasets: flushing csv")
}
