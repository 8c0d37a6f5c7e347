// Package linear fits linear models to polynomial design matrices by
// ordinary least squares.
package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polycv/core/model"
	"github.com/YuminosukeSato/polycv/metrics"
	"github.com/YuminosukeSato/polycv/pkg/errors"
)

// LeastSquares は正規方程式 (AᵀA) w = Aᵀt を解く最小二乗回帰
//
// 切片は暗黙に追加しない。定数項は計画行列の列として呼び出し側が用意する。
type LeastSquares struct {
	state *model.StateManager

	coef *mat.VecDense
	cond float64
}

var _ model.Regressor = (*LeastSquares)(nil)

// NewLeastSquares は新しい LeastSquares を作成する
func NewLeastSquares() *LeastSquares {
	return &LeastSquares{state: model.NewStateManager()}
}

// Fit は計画行列 X と列ベクトル y から係数を求める
//
// AᵀA が特異（または数値的に特異）な場合は errors.ErrSingularMatrix を
// 原因とする ModelError を返し、モデルは未学習のままになる。
func (ls *LeastSquares) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LeastSquares.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LeastSquares.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LeastSquares.Fit", "y must be a column vector")
	}
	// 高次の列は |x| > 1 でオーバーフローしうる
	if err := errors.CheckMatrix("LeastSquares.Fit", X, r, c, 0); err != nil {
		return err
	}

	ls.state.Reset()
	ls.coef = nil

	var ata mat.Dense
	ata.Mul(X.T(), X)

	var aty mat.VecDense
	aty.MulVec(X.T(), asVector(y))

	var lu mat.LU
	lu.Factorize(&ata)
	ls.cond = lu.Cond()
	if math.IsNaN(ls.cond) || ls.cond > mat.ConditionTolerance {
		return errors.NewModelError("LeastSquares.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	coef := mat.NewVecDense(c, nil)
	if err := lu.SolveVecTo(coef, false, &aty); err != nil {
		var condErr mat.Condition
		if errors.As(err, &condErr) {
			return errors.NewModelError("LeastSquares.Fit", "singular matrix", errors.ErrSingularMatrix)
		}
		return errors.NewModelError("LeastSquares.Fit", "solve failed", err)
	}

	if err := errors.CheckNumericalStability("LeastSquares.Fit", coef.RawVector().Data, 0); err != nil {
		return err
	}

	ls.coef = coef
	ls.state.SetFitted(c, r)
	return nil
}

// Predict は X·w を r×1 の列ベクトルとして返す
func (ls *LeastSquares) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := ls.state.RequireFitted("LeastSquares", "Predict"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	nFeatures, _ := ls.state.GetDimensions()
	if c != nFeatures {
		return nil, errors.NewDimensionError("LeastSquares.Predict", nFeatures, c, 1)
	}

	pred := mat.NewVecDense(r, nil)
	pred.MulVec(X, ls.coef)
	return pred, nil
}

// Score は決定係数（R²）を返す
func (ls *LeastSquares) Score(X, y mat.Matrix) (float64, error) {
	pred, err := ls.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(asVector(y), asVector(pred))
}

// Coefficients は係数 w のコピーを返す。未学習なら nil。
func (ls *LeastSquares) Coefficients() []float64 {
	if ls.coef == nil {
		return nil
	}
	out := make([]float64, ls.coef.Len())
	copy(out, ls.coef.RawVector().Data)
	return out
}

// Condition は直近の Fit で得た AᵀA の条件数の推定値を返す
func (ls *LeastSquares) Condition() float64 {
	return ls.cond
}

// IsFitted reports whether Fit has succeeded.
func (ls *LeastSquares) IsFitted() bool {
	return ls.state.IsFitted()
}

func asVector(m mat.Matrix) mat.Vector {
	if v, ok := m.(mat.Vector); ok {
		return v
	}
	r, _ := m.Dims()
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v
}
