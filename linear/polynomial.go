package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polycv/pkg/errors"
	"github.com/YuminosukeSato/polycv/preprocessing"
)

// PolynomialRegression は 1 変数の多項式 t ≈ Σ w_j x^j を最小二乗で当てはめる
type PolynomialRegression struct {
	// Degree は多項式の次数（デフォルト: 1）
	Degree int

	ls *LeastSquares
}

// NewPolynomialRegression は新しい PolynomialRegression を作成する
//
// 使用例:
//
//	p := linear.NewPolynomialRegression(linear.WithDegree(3))
//	err := p.Fit(x, t)
func NewPolynomialRegression(opts ...Option) *PolynomialRegression {
	p := &PolynomialRegression{Degree: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fit は x, t に次数 Degree の多項式を当てはめる
func (p *PolynomialRegression) Fit(x, t []float64) error {
	if p.Degree < 0 {
		return errors.NewValidationError("degree", "must be non-negative", p.Degree)
	}
	if len(x) != len(t) {
		return errors.NewShapeMismatchError("PolynomialRegression.Fit", "x", len(x), "t", len(t))
	}
	if len(x) == 0 {
		return errors.NewEmptyArrayError("PolynomialRegression.Fit", "x")
	}

	ls := NewLeastSquares()
	if err := ls.Fit(Design(x, p.Degree), mat.NewVecDense(len(t), append([]float64(nil), t...))); err != nil {
		return err
	}
	p.ls = ls
	return nil
}

// Predict は学習済みの多項式を x で評価する
func (p *PolynomialRegression) Predict(x []float64) ([]float64, error) {
	if p.ls == nil {
		return nil, errors.NewNotFittedError("PolynomialRegression", "Predict")
	}
	if len(x) == 0 {
		return []float64{}, nil
	}

	pred, err := p.ls.Predict(Design(x, p.Degree))
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	for i := range out {
		out[i] = pred.At(i, 0)
	}
	return out, nil
}

// Coefficients は定数項から順に w_0, …, w_Degree を返す
func (p *PolynomialRegression) Coefficients() []float64 {
	if p.ls == nil {
		return nil
	}
	return p.ls.Coefficients()
}

// Design は x の次数 degree までの計画行列を作る
func Design(x []float64, degree int) *preprocessing.DesignMatrix {
	d := preprocessing.NewDesignMatrix(x)
	for k := 0; k < degree; k++ {
		d = d.Extend()
	}
	return d
}
