package model_selection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polycv/core/model"
	"github.com/YuminosukeSato/polycv/linear"
	"github.com/YuminosukeSato/polycv/pkg/errors"
	"github.com/YuminosukeSato/polycv/pkg/log"
)

// quadratic は 2x² - x + 3
func quadratic(x []float64) []float64 {
	t := make([]float64, len(x))
	for i, xi := range x {
		t[i] = 2*xi*xi - xi + 3
	}
	return t
}

func linspace(lo, hi float64, n int) []float64 {
	return floats.Span(make([]float64, n), lo, hi)
}

func TestEvaluateQuadraticScenario(t *testing.T) {
	xTrain := linspace(-1, 1, 20)
	tTrain := quadratic(xTrain)
	xTest := linspace(-0.95, 0.95, 15)
	tTest := quadratic(xTest)

	table, err := Evaluate(xTrain, tTrain, xTest, tTest, 5, 5)
	require.NoError(t, err)
	require.Equal(t, 6*5, table.Len())
	assert.Empty(t, table.Failures())

	for order := 0; order <= 5; order++ {
		for fold := 0; fold < 5; fold++ {
			c, ok := table.Cell(order, fold)
			require.True(t, ok)
			assert.Equal(t, order, c.Order)
			assert.Equal(t, fold, c.Fold)
			assert.Len(t, c.Coefficients, order+1)

			if order >= 2 {
				assert.Less(t, c.TrainLoss, 1e-10, "order=%d fold=%d", order, fold)
				assert.Less(t, c.CVLoss, 1e-10, "order=%d fold=%d", order, fold)
				assert.Less(t, c.TestLoss, 1e-10, "order=%d fold=%d", order, fold)
			} else {
				assert.Greater(t, c.TrainLoss, 1e-4, "order=%d fold=%d", order, fold)
				assert.Greater(t, c.CVLoss, 1e-4, "order=%d fold=%d", order, fold)
				assert.Greater(t, c.TestLoss, 1e-4, "order=%d fold=%d", order, fold)
			}
		}
	}

	means := table.MeanLosses()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, means.Orders)
	for order := 2; order <= 5; order++ {
		assert.Less(t, means.CV[order], 1e-10)
		assert.Less(t, means.Test[order], 1e-10)
	}
	assert.Greater(t, means.CV[1], means.CV[2])

	best, ok := table.BestOrder()
	require.True(t, ok)
	assert.GreaterOrEqual(t, best, 2)
}

func TestEvaluateExactRecovery(t *testing.T) {
	xTrain := linspace(-1, 1, 30)
	tTrain := make([]float64, len(xTrain))
	want := []float64{0.5, 1, -1, 5}
	for i, x := range xTrain {
		tTrain[i] = want[0] + want[1]*x + want[2]*x*x + want[3]*x*x*x
	}

	table, err := Evaluate(xTrain, tTrain, xTrain, tTrain, 4, 3)
	require.NoError(t, err)

	for fold := 0; fold < 3; fold++ {
		c, ok := table.Cell(3, fold)
		require.True(t, ok)
		require.NoError(t, c.Err)
		assert.InDeltaSlice(t, want, c.Coefficients, 1e-6)
		assert.InDelta(t, 0, c.TrainLoss, 1e-12)
		assert.InDelta(t, 0, c.CVLoss, 1e-12)
		assert.InDelta(t, 0, c.TestLoss, 1e-12)
	}
}

func TestEvaluateTrainLossNonIncreasing(t *testing.T) {
	xTrain := linspace(-1, 1, 30)
	tTrain := make([]float64, len(xTrain))
	for i, x := range xTrain {
		// 決定的な「ノイズ」を加える
		tTrain[i] = 5*x*x*x - x*x + x + 0.3*math.Sin(17*x)
	}

	table, err := Evaluate(xTrain, tTrain, xTrain, tTrain, 7, 3)
	require.NoError(t, err)
	require.Empty(t, table.Failures())

	for fold := 0; fold < 3; fold++ {
		prev, _ := table.Cell(0, fold)
		for order := 1; order <= 7; order++ {
			c, _ := table.Cell(order, fold)
			assert.LessOrEqual(t, c.TrainLoss, prev.TrainLoss*(1+1e-9)+1e-15,
				"fold=%d order=%d", fold, order)
			assert.GreaterOrEqual(t, c.TrainLoss, 0.0)
			assert.GreaterOrEqual(t, c.CVLoss, 0.0)
			assert.GreaterOrEqual(t, c.TestLoss, 0.0)
			prev = c
		}
	}
}

func TestEvaluateSingleFold(t *testing.T) {
	xTrain := linspace(-1, 1, 12)
	tTrain := quadratic(xTrain)
	for i := range tTrain {
		tTrain[i] += 0.1 * float64(i%3)
	}

	table, err := Evaluate(xTrain, tTrain, xTrain, tTrain, 3, 1)
	require.NoError(t, err)
	require.Equal(t, 4, table.Len())

	for order := 0; order <= 3; order++ {
		c, ok := table.Cell(order, 0)
		require.True(t, ok)
		require.NoError(t, c.Err)
		assert.Equal(t, c.TrainLoss, c.CVLoss, "order=%d", order)
	}
}

func TestEvaluatePreconditions(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	tv := []float64{1, 2, 3, 4}

	t.Run("train shape mismatch", func(t *testing.T) {
		_, err := Evaluate(x, tv[:3], x, tv, 1, 2)
		var shapeErr *errors.ShapeMismatchError
		require.True(t, errors.As(err, &shapeErr), "got %v", err)
		assert.Equal(t, "x_train", shapeErr.Array)
		assert.Equal(t, "t_train", shapeErr.Other)
		assert.Equal(t, 4, shapeErr.Len)
		assert.Equal(t, 3, shapeErr.OtherLen)
		assert.Contains(t, err.Error(), "len(x_train)=4")
	})

	t.Run("test shape mismatch", func(t *testing.T) {
		_, err := Evaluate(x, tv, x[:2], tv, 1, 2)
		var shapeErr *errors.ShapeMismatchError
		require.True(t, errors.As(err, &shapeErr))
		assert.Equal(t, "x_test", shapeErr.Array)
	})

	t.Run("empty training set", func(t *testing.T) {
		_, err := Evaluate(nil, nil, x, tv, 1, 1)
		var shapeErr *errors.ShapeMismatchError
		require.True(t, errors.As(err, &shapeErr))
		assert.Equal(t, "x_train", shapeErr.Array)
	})

	t.Run("empty test set", func(t *testing.T) {
		_, err := Evaluate(x, tv, []float64{}, []float64{}, 1, 1)
		var shapeErr *errors.ShapeMismatchError
		require.True(t, errors.As(err, &shapeErr))
		assert.Equal(t, "x_test", shapeErr.Array)
	})

	t.Run("negative max order", func(t *testing.T) {
		_, err := Evaluate(x, tv, x, tv, -1, 2)
		var valErr *errors.ValidationError
		require.True(t, errors.As(err, &valErr))
		assert.Equal(t, "max_order", valErr.ParamName)
	})

	t.Run("more folds than samples", func(t *testing.T) {
		_, err := Evaluate(x, tv, x, tv, 1, 5)
		var foldErr *errors.InvalidFoldCountError
		require.True(t, errors.As(err, &foldErr))
		assert.Equal(t, 5, foldErr.K)
		assert.Equal(t, 4, foldErr.NSamples)
	})

	t.Run("zero folds", func(t *testing.T) {
		_, err := Evaluate(x, tv, x, tv, 1, 0)
		var foldErr *errors.InvalidFoldCountError
		require.True(t, errors.As(err, &foldErr))
	})
}

func TestEvaluateSingularCellsDoNotAbortSweep(t *testing.T) {
	// x ∈ {0, 1} では x^k = x となり、次数 2 以上で列が重複する
	xTrain := []float64{0, 1, 0, 1, 0, 1, 0, 1}
	tTrain := make([]float64, len(xTrain))
	for i, x := range xTrain {
		tTrain[i] = 1 + 2*x
	}
	xTest := []float64{0, 0.5, 1}
	tTest := []float64{1, 2, 3}

	logger, _ := log.NewTestLogger(log.LevelDebug)
	table, err := Evaluate(xTrain, tTrain, xTest, tTest, 3, 2, WithLogger(logger))
	require.NoError(t, err)
	require.Equal(t, 8, table.Len())

	for fold := 0; fold < 2; fold++ {
		for order := 0; order <= 1; order++ {
			c, _ := table.Cell(order, fold)
			require.NoError(t, c.Err, "order=%d fold=%d", order, fold)
			assert.False(t, math.IsNaN(c.CVLoss))
		}
		for order := 2; order <= 3; order++ {
			c, _ := table.Cell(order, fold)
			var singular *errors.SingularDesignMatrixError
			require.True(t, errors.As(c.Err, &singular), "order=%d fold=%d: %v", order, fold, c.Err)
			assert.Equal(t, order, singular.Order)
			assert.Equal(t, fold, singular.Fold)
			assert.True(t, errors.Is(c.Err, errors.ErrSingularMatrix))
			assert.True(t, math.IsNaN(c.TrainLoss))
			assert.True(t, math.IsNaN(c.CVLoss))
			assert.True(t, math.IsNaN(c.TestLoss))
			assert.Nil(t, c.Coefficients)
		}
	}

	c, _ := table.Cell(1, 0)
	assert.InDeltaSlice(t, []float64{1, 2}, c.Coefficients, 1e-9)
	assert.InDelta(t, 0, c.TestLoss, 1e-12)

	assert.Len(t, table.Failures(), 4)
	breakdown, ok := table.BreakdownOrder()
	require.True(t, ok)
	assert.Equal(t, 2, breakdown)

	means := table.MeanLosses()
	assert.False(t, math.IsNaN(means.CV[1]))
	assert.True(t, math.IsNaN(means.CV[2]))
	assert.True(t, math.IsNaN(means.Test[3]))

	best, ok := table.BestOrder()
	require.True(t, ok)
	assert.Equal(t, 1, best)

	assert.True(t, logger.ContainsMessage("Fit failed for cell"))
	assert.True(t, logger.ContainsField(log.ErrorCodeKey, log.ErrorSingularMatrix))
	assert.True(t, logger.ContainsField(log.BreakdownOrderKey, float64(2)))
	assert.True(t, logger.ContainsField(log.FailedCellsKey, float64(4)))
}

func TestEvaluateParallelMatchesSequential(t *testing.T) {
	xTrain := linspace(-1, 1, 41)
	tTrain := make([]float64, len(xTrain))
	for i, x := range xTrain {
		tTrain[i] = 5*x*x*x - x*x + x + 0.2*math.Cos(11*x)
	}
	xTest := linspace(-1, 1, 17)
	tTest := quadratic(xTest)

	seq, err := Evaluate(xTrain, tTrain, xTest, tTest, 6, 7)
	require.NoError(t, err)
	par, err := Evaluate(xTrain, tTrain, xTest, tTest, 6, 7, WithNJobs(-1))
	require.NoError(t, err)

	assert.Equal(t, seq.Cells(), par.Cells())
	assert.Equal(t, seq.MeanLosses(), par.MeanLosses())
}

func TestEvaluateDoesNotMutateInputs(t *testing.T) {
	xTrain := linspace(-1, 1, 10)
	tTrain := quadratic(xTrain)
	xTest := linspace(-1, 1, 5)
	tTest := quadratic(xTest)

	copies := [][]float64{
		append([]float64(nil), xTrain...),
		append([]float64(nil), tTrain...),
		append([]float64(nil), xTest...),
		append([]float64(nil), tTest...),
	}

	_, err := Evaluate(xTrain, tTrain, xTest, tTest, 4, 3, WithNJobs(2))
	require.NoError(t, err)

	assert.Equal(t, copies[0], xTrain)
	assert.Equal(t, copies[1], tTrain)
	assert.Equal(t, copies[2], xTest)
	assert.Equal(t, copies[3], tTest)
}

func TestEvaluateConditionWarning(t *testing.T) {
	var warnings []error
	prev := errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(prev)

	xTrain := linspace(-1, 1, 12)
	tTrain := quadratic(xTrain)

	_, err := Evaluate(xTrain, tTrain, xTrain, tTrain, 3, 2, WithConditionWarningThreshold(1.5))
	require.NoError(t, err)
	require.NotEmpty(t, warnings)

	var ill *errors.IllConditionedWarning
	require.True(t, errors.As(warnings[0], &ill))
	assert.Greater(t, ill.Condition, 1.5)
	assert.Equal(t, 1.5, ill.Threshold)

	warnings = nil
	_, err = Evaluate(xTrain, tTrain, xTrain, tTrain, 3, 2, WithConditionWarningThreshold(0))
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

// panickingRegressor は Fit で gonum 由来のパニックを起こす
type panickingRegressor struct{ *linear.LeastSquares }

func (p panickingRegressor) Fit(X, y mat.Matrix) error {
	var bad mat.Dense
	bad.Mul(mat.NewDense(2, 3, nil), mat.NewDense(2, 3, nil))
	return nil
}

func TestEvaluateRecoversPanicsPerCell(t *testing.T) {
	xTrain := linspace(-1, 1, 6)
	tTrain := quadratic(xTrain)

	table, err := Evaluate(xTrain, tTrain, xTrain, tTrain, 1, 2,
		WithRegressor(func() model.Regressor {
			return panickingRegressor{linear.NewLeastSquares()}
		}),
	)
	require.NoError(t, err)
	require.Len(t, table.Failures(), 4)

	c, _ := table.Cell(1, 1)
	var panicErr *errors.PanicError
	require.True(t, errors.As(c.Err, &panicErr))
	assert.True(t, math.IsNaN(c.TrainLoss))

	_, ok := table.BestOrder()
	assert.False(t, ok)
	_, ok = table.Cell(2, 0)
	assert.False(t, ok)
}

func TestEvaluateOverflowIsNumericalInstability(t *testing.T) {
	x := make([]float64, 8)
	for i := range x {
		x[i] = 1e120 * float64(i+1)
	}
	tt := make([]float64, len(x))

	table, err := Evaluate(x, tt, x, tt, 3, 2)
	require.NoError(t, err)

	// x³ は float64 の範囲を超える
	for fold := 0; fold < 2; fold++ {
		cell, ok := table.Cell(3, fold)
		require.True(t, ok)
		require.True(t, cell.Failed())

		var numErr *errors.NumericalInstabilityError
		assert.True(t, errors.As(cell.Err, &numErr), "got %v", cell.Err)
		assert.True(t, math.IsNaN(cell.CVLoss))
	}
}
