package model_selection

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Cell は (order, fold) 1 組分の学習結果
//
// Err が nil でない場合、損失は NaN、Coefficients は nil になる。
type Cell struct {
	Order int
	Fold  int

	// Coefficients は w_0..w_Order（定数項から昇順）
	Coefficients []float64

	TrainLoss float64
	CVLoss    float64
	TestLoss  float64

	Err error
}

// Failed reports whether the fit for this cell did not produce losses.
func (c Cell) Failed() bool { return c.Err != nil }

func failedCell(order, fold int, err error) Cell {
	nan := math.NaN()
	return Cell{
		Order:     order,
		Fold:      fold,
		TrainLoss: nan,
		CVLoss:    nan,
		TestLoss:  nan,
		Err:       err,
	}
}

// LossTable は (MaxOrder+1) × K 個の Cell を保持する
//
// 交差検証の実行中は各スロットに一度だけ書き込まれ、Evaluate が返した後は読み取り専用。
type LossTable struct {
	maxOrder int
	folds    []Fold
	cells    []Cell
}

func newLossTable(maxOrder int, folds []Fold) *LossTable {
	return &LossTable{
		maxOrder: maxOrder,
		folds:    folds,
		cells:    make([]Cell, (maxOrder+1)*len(folds)),
	}
}

func (t *LossTable) set(c Cell) {
	t.cells[c.Order*len(t.folds)+c.Fold] = c
}

// MaxOrder returns the highest polynomial order in the table.
func (t *LossTable) MaxOrder() int { return t.maxOrder }

// K returns the number of folds.
func (t *LossTable) K() int { return len(t.folds) }

// Folds returns a copy of the fold partition used for the sweep.
func (t *LossTable) Folds() []Fold {
	return append([]Fold(nil), t.folds...)
}

// Len は表のセル数 (MaxOrder+1)·K を返す
func (t *LossTable) Len() int { return len(t.cells) }

// Cell は (order, fold) の結果を返す。範囲外なら ok は false。
func (t *LossTable) Cell(order, fold int) (Cell, bool) {
	if order < 0 || order > t.maxOrder || fold < 0 || fold >= len(t.folds) {
		return Cell{}, false
	}
	return t.cells[order*len(t.folds)+fold], true
}

// Cells は order の昇順、同じ order 内では fold の昇順で全セルを返す
func (t *LossTable) Cells() []Cell {
	return append([]Cell(nil), t.cells...)
}

// Failures は失敗したセルだけを返す
func (t *LossTable) Failures() []Cell {
	var out []Cell
	for _, c := range t.cells {
		if c.Failed() {
			out = append(out, c)
		}
	}
	return out
}

// BreakdownOrder は最初に失敗セルを含む次数を返す。失敗がなければ ok は false。
func (t *LossTable) BreakdownOrder() (order int, ok bool) {
	for _, c := range t.cells {
		if c.Failed() {
			return c.Order, true
		}
	}
	return 0, false
}

// MeanLosses は次数ごとの fold 平均損失
//
// 各スライスの長さは MaxOrder+1 で、添字が次数に対応する。
type MeanLosses struct {
	Orders []int
	Train  []float64
	CV     []float64
	Test   []float64
}

// Len returns the number of orders.
func (m MeanLosses) Len() int { return len(m.Orders) }

// MeanLosses は 3 系列それぞれについて fold 方向の平均を計算する
//
// 1 つでも失敗した fold を含む次数の平均は NaN になる。
func (t *LossTable) MeanLosses() MeanLosses {
	n := t.maxOrder + 1
	k := len(t.folds)
	m := MeanLosses{
		Orders: make([]int, n),
		Train:  make([]float64, n),
		CV:     make([]float64, n),
		Test:   make([]float64, n),
	}

	train := make([]float64, k)
	cv := make([]float64, k)
	test := make([]float64, k)
	for order := 0; order < n; order++ {
		for f, c := range t.cells[order*k : (order+1)*k] {
			train[f], cv[f], test[f] = c.TrainLoss, c.CVLoss, c.TestLoss
		}
		m.Orders[order] = order
		m.Train[order] = stat.Mean(train, nil)
		m.CV[order] = stat.Mean(cv, nil)
		m.Test[order] = stat.Mean(test, nil)
	}
	return m
}

// BestOrder は平均 CV 損失が有限で最小となる次数を返す（同値なら低い次数）
//
// すべての次数が失敗していれば ok は false。
func (t *LossTable) BestOrder() (order int, ok bool) {
	means := t.MeanLosses()
	best := math.Inf(1)
	for i, v := range means.CV {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < best {
			best = v
			order = i
			ok = true
		}
	}
	return order, ok
}
