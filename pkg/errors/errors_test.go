package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShapeMismatchError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "paired arrays",
			err:     NewShapeMismatchError("Evaluate", "x_train", 20, "t_train", 19),
			wantMsg: "polycv: Evaluate: shape mismatch: len(x_train)=20 != len(t_train)=19",
		},
		{
			name:    "empty array",
			err:     NewEmptyArrayError("Evaluate", "x_test"),
			wantMsg: "polycv: Evaluate: shape mismatch: x_test must not be empty (got length 0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())

			var shapeErr *ShapeMismatchError
			require.True(t, As(tt.err, &shapeErr), "Error should be castable to *ShapeMismatchError")

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", tt.err)
			assert.Contains(t, formatted, "errors_test.go")
		})
	}
}

func TestNewInvalidFoldCountError(t *testing.T) {
	err := NewInvalidFoldCountError("Evaluate", 25, 20)

	want := "polycv: Evaluate: invalid fold count: k=25 must satisfy 1 <= k <= n_samples=20"
	assert.Equal(t, want, err.Error())

	var foldErr *InvalidFoldCountError
	require.True(t, As(err, &foldErr))
	assert.Equal(t, 25, foldErr.K)
	assert.Equal(t, 20, foldErr.NSamples)
}

func TestSingularDesignMatrixError(t *testing.T) {
	err := NewSingularDesignMatrixError(7, 2, ErrSingularMatrix)

	assert.Equal(t, "polycv: singular design matrix at order 7, fold 2: singular matrix", err.Error())
	assert.True(t, Is(err, ErrSingularMatrix), "cause should be reachable through Unwrap")

	var singular *SingularDesignMatrixError
	require.True(t, As(err, &singular))
	assert.Equal(t, 7, singular.Order)
	assert.Equal(t, 2, singular.Fold)

	bare := &SingularDesignMatrixError{Order: 1, Fold: 0}
	assert.Equal(t, "polycv: singular design matrix at order 1, fold 0", bare.Error())
}

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "LeastSquares.Fit",
			kind:    "singular matrix",
			err:     ErrSingularMatrix,
			wantMsg: "polycv: LeastSquares.Fit: singular matrix: singular matrix",
		},
		{
			name:    "without original error",
			op:      "LeastSquares.Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "polycv: LeastSquares.Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)
			assert.Equal(t, tt.wantMsg, err.Error())

			var modelErr *ModelError
			assert.True(t, As(err, &modelErr), "Error should be castable to *ModelError")
			assert.True(t, strings.Contains(fmt.Sprintf("%+v", err), "errors_test.go"))
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("LeastSquares.Predict", 3, 4, 1)

	want := "polycv: LeastSquares.Predict: dimension mismatch on axis 1 (features). Expected 3, got 4"
	assert.Equal(t, want, err.Error())

	var dimErr *DimensionError
	assert.True(t, As(err, &dimErr))
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("PolynomialRegression", "Predict")

	want := "polycv: PolynomialRegression: this model is not fitted yet. Call Fit() before using Predict()"
	assert.Equal(t, want, err.Error())

	var notFittedErr *NotFittedError
	assert.True(t, As(err, &notFittedErr))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("max_order", "must be non-negative", -1)

	assert.Equal(t, "polycv: validation failed for parameter 'max_order': must be non-negative (got: -1)", err.Error())

	var valErr *ValidationError
	require.True(t, As(err, &valErr))
	assert.Equal(t, "max_order", valErr.ParamName)
}

func TestIllConditionedWarning(t *testing.T) {
	w := NewIllConditionedWarning(9, 3, 2.5e13, 1e12)
	assert.Equal(t, "normal equations for order 9, fold 3 are ill-conditioned: cond=2.5e+13 exceeds 1e+12", w.Error())
}

func TestWarnUsesConfiguredHandler(t *testing.T) {
	prev := warningHandler
	defer SetWarningHandler(prev)

	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })

	Warn(NewIllConditionedWarning(1, 0, 10, 1))
	require.Len(t, got, 1)

	// zerolog の関数が設定されている場合はそちらが優先される
	var viaZerolog int
	SetZerologWarnFunc(func(error) { viaZerolog++ })
	defer SetZerologWarnFunc(nil)

	Warn(NewIllConditionedWarning(2, 0, 10, 1))
	assert.Equal(t, 1, viaZerolog)
	assert.Len(t, got, 1)
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrSingularMatrix, "in LeastSquares.Fit")

	assert.True(t, Is(wrapped, ErrSingularMatrix))
	assert.Contains(t, wrapped.Error(), "in LeastSquares.Fit")
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Predict", 10, 5)

	assert.True(t, Is(wrapped, ErrEmptyData))
	assert.Contains(t, wrapped.Error(), "in Predict: expected 10, got 5")
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("train_loss", []float64{0, 1.5, 1e300}, 0))
	assert.NoError(t, CheckScalar("cv_loss", 0.25, 3))

	err := CheckScalar("cv_loss", math.Inf(1), 4)
	var instability *NumericalInstabilityError
	require.True(t, As(err, &instability))
	assert.Equal(t, 4, instability.Iteration)

	err = CheckNumericalStability("test_loss", []float64{1, math.NaN()}, 2)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "test_loss")
}

type grid [][]float64

func (g grid) At(i, j int) float64 { return g[i][j] }

func TestCheckMatrix(t *testing.T) {
	assert.NoError(t, CheckMatrix("design", grid{{1, 2}, {3, 4}}, 2, 2, 0))
	assert.Error(t, CheckMatrix("design", grid{{1, 2}, {math.NaN(), 4}}, 2, 2, 0))
}
