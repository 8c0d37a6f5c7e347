package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/YuminosukeSato/polycv/model_selection"
	"github.com/YuminosukeSato/polycv/pkg/errors"
)

var (
	lossTableHeader  = []string{"order", "fold", "train_loss", "cv_loss", "test_loss", "error"}
	meanLossesHeader = []string{"order", "train_loss", "cv_loss", "test_loss"}
)

// WriteLossTableCSV は (order, fold) ごとに 1 行を書き出す
//
// 失敗したセルは損失が NaN、error 列にエラーメッセージが入る。
func WriteLossTableCSV(w io.Writer, table *model_selection.LossTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(lossTableHeader); err != nil {
		return errors.Wrap(err, "report: writing loss table header")
	}
	for _, c := range table.Cells() {
		msg := ""
		if c.Err != nil {
			msg = c.Err.Error()
		}
		record := []string{
			strconv.Itoa(c.Order),
			strconv.Itoa(c.Fold),
			formatFloat(c.TrainLoss),
			formatFloat(c.CVLoss),
			formatFloat(c.TestLoss),
			msg,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "report: writing order %d fold %d", c.Order, c.Fold)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "report: flushing loss table")
}

// WriteMeanLossesCSV は次数ごとの平均損失を 1 行ずつ書き出す
func WriteMeanLossesCSV(w io.Writer, means model_selection.MeanLosses) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(meanLossesHeader); err != nil {
		return errors.Wrap(err, "report: writing mean losses header")
	}
	for i, order := range means.Orders {
		record := []string{
			strconv.Itoa(order),
			formatFloat(means.Train[i]),
			formatFloat(means.CV[i]),
			formatFloat(means.Test[i]),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "report: writing order %d", order)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "report: flushing mean losses")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
