package model_selection

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polycv/core/model"
	"github.com/YuminosukeSato/polycv/core/parallel"
	"github.com/YuminosukeSato/polycv/metrics"
	"github.com/YuminosukeSato/polycv/pkg/errors"
	"github.com/YuminosukeSato/polycv/pkg/log"
	"github.com/YuminosukeSato/polycv/preprocessing"
)

// CrossValidatedPolynomialFit は次数 0..maxOrder の多項式回帰を K-fold 交差検証で評価する
//
// 使用例:
//
//	cv := model_selection.NewCrossValidatedPolynomialFit(model_selection.WithNJobs(-1))
//	table, err := cv.Evaluate(xTrain, tTrain, xTest, tTest, 9, 5)
//	means := table.MeanLosses()
type CrossValidatedPolynomialFit struct {
	nJobs         int
	condThreshold float64
	logger        log.Logger
	newRegressor  model.RegressorFactory
}

// NewCrossValidatedPolynomialFit は新しい評価器を作成する
func NewCrossValidatedPolynomialFit(opts ...Option) *CrossValidatedPolynomialFit {
	cv := &CrossValidatedPolynomialFit{
		nJobs:         1,
		condThreshold: DefaultConditionWarningThreshold,
		logger:        log.GetLogger(),
		newRegressor:  defaultRegressor,
	}
	for _, opt := range opts {
		opt(cv)
	}
	cv.logger = cv.logger.With(log.ComponentKey, "model_selection")
	return cv
}

// Evaluate はデフォルト設定（と opts）で交差検証を実行する
func Evaluate(xTrain, tTrain, xTest, tTest []float64, maxOrder, k int, opts ...Option) (*LossTable, error) {
	return NewCrossValidatedPolynomialFit(opts...).Evaluate(xTrain, tTrain, xTest, tTest, maxOrder, k)
}

// split は 1 つの fold について訓練行・検証行とその目的変数を保持する
type split struct {
	fold    Fold
	train   []int
	heldOut []int
	tTrain  *mat.VecDense
	tHeld   *mat.VecDense
}

// Evaluate は (order, fold) の全組について訓練・交差検証・独立テストの MSE を計算する
//
// 入力の形状と fold 数は学習前に検査し、違反があれば即座にエラーを返す。
// 特定のセルで正規方程式が解けない場合はそのセルに SingularDesignMatrixError を記録して
// 残りの掃引を続ける。入力スライスは変更しない。
func (cv *CrossValidatedPolynomialFit) Evaluate(xTrain, tTrain, xTest, tTest []float64, maxOrder, k int) (*LossTable, error) {
	const op = "CrossValidatedPolynomialFit.Evaluate"

	if err := validate(op, xTrain, tTrain, xTest, tTest, maxOrder, k); err != nil {
		return nil, err
	}

	n := len(xTrain)
	folds, err := Partition(n, k)
	if err != nil {
		return nil, err
	}
	splits := makeSplits(folds, n, tTrain)
	testTarget := mat.NewVecDense(len(tTest), append([]float64(nil), tTest...))

	workers := parallel.Workers(cv.nJobs)
	logger := cv.logger.With(log.OperationKey, log.OperationEvaluate)
	logger.Info("Cross-validation started",
		log.SamplesKey, n,
		log.TestSamplesKey, len(xTest),
		log.MaxOrderKey, maxOrder,
		log.FoldsKey, k,
		log.JobsKey, workers,
	)
	start := time.Now()

	table := newLossTable(maxOrder, folds)
	train := preprocessing.NewDesignMatrix(xTrain)
	test := preprocessing.NewDesignMatrix(xTest)
	for order := 0; order <= maxOrder; order++ {
		if order > 0 {
			train = train.Extend()
			test = test.Extend()
		}
		testDense := test.Dense()

		parallel.ParallelizeWorkers(k, workers, func(lo, hi int) {
			for f := lo; f < hi; f++ {
				table.set(cv.evaluateCell(logger, order, splits[f], train, testDense, testTarget))
			}
		})
	}

	failures := table.Failures()
	fields := []any{
		log.FailedCellsKey, len(failures),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	}
	if best, ok := table.BestOrder(); ok {
		fields = append(fields, log.BestOrderKey, best)
	}
	if breakdown, ok := table.BreakdownOrder(); ok {
		fields = append(fields, log.BreakdownOrderKey, breakdown)
	}
	logger.Info("Cross-validation completed", fields...)

	return table, nil
}

func validate(op string, xTrain, tTrain, xTest, tTest []float64, maxOrder, k int) error {
	if len(xTrain) != len(tTrain) {
		return errors.NewShapeMismatchError(op, "x_train", len(xTrain), "t_train", len(tTrain))
	}
	if len(xTest) != len(tTest) {
		return errors.NewShapeMismatchError(op, "x_test", len(xTest), "t_test", len(tTest))
	}
	if len(xTrain) == 0 {
		return errors.NewEmptyArrayError(op, "x_train")
	}
	if len(xTest) == 0 {
		return errors.NewEmptyArrayError(op, "x_test")
	}
	if maxOrder < 0 {
		return errors.NewValidationError("max_order", "must be non-negative", maxOrder)
	}
	if k < 1 || k > len(xTrain) {
		return errors.NewInvalidFoldCountError(op, k, len(xTrain))
	}
	return nil
}

func makeSplits(folds []Fold, n int, t []float64) []split {
	splits := make([]split, len(folds))
	for i, f := range folds {
		s := split{fold: f, heldOut: f.Indices(), train: f.Complement(n)}
		if len(s.train) == 0 {
			// K=1: 訓練集合は全体となり、CV 損失は訓練損失と一致する
			s.train = s.heldOut
		}
		s.tTrain = gather(t, s.train)
		s.tHeld = gather(t, s.heldOut)
		splits[i] = s
	}
	return splits
}

func gather(v []float64, indices []int) *mat.VecDense {
	out := mat.NewVecDense(len(indices), nil)
	for r, i := range indices {
		out.SetVec(r, v[i])
	}
	return out
}

func (cv *CrossValidatedPolynomialFit) evaluateCell(
	logger log.Logger,
	order int,
	s split,
	train *preprocessing.DesignMatrix,
	test *mat.Dense,
	tTest *mat.VecDense,
) Cell {
	fold := s.fold.Index
	cell := Cell{Order: order, Fold: fold}

	err := errors.SafeExecute(fmt.Sprintf("evaluate order %d fold %d", order, fold), func() error {
		reg := cv.newRegressor()
		xTrain := train.Rows(s.train)
		if err := reg.Fit(xTrain, s.tTrain); err != nil {
			if errors.Is(err, errors.ErrSingularMatrix) {
				return errors.NewSingularDesignMatrixError(order, fold, err)
			}
			return err
		}
		cv.checkCondition(reg, order, fold)

		var err error
		if cell.TrainLoss, err = loss("train_loss", reg, xTrain, s.tTrain, order); err != nil {
			return err
		}
		if cell.CVLoss, err = loss("cv_loss", reg, train.Rows(s.heldOut), s.tHeld, order); err != nil {
			return err
		}
		if cell.TestLoss, err = loss("test_loss", reg, test, tTest, order); err != nil {
			return err
		}
		cell.Coefficients = reg.Coefficients()
		return nil
	})
	if err != nil {
		logger.Warn("Fit failed for cell; recording NaN losses",
			log.OrderKey, order,
			log.FoldKey, fold,
			log.ErrorCodeKey, errorCode(err),
			log.ErrAttrKey, err,
		)
		return failedCell(order, fold, err)
	}

	logger.Debug("Cell evaluated",
		log.OrderKey, order,
		log.FoldKey, fold,
		log.FoldSizeKey, s.fold.Size(),
		log.TrainLossKey, cell.TrainLoss,
		log.CVLossKey, cell.CVLoss,
		log.TestLossKey, cell.TestLoss,
	)
	return cell
}

func (cv *CrossValidatedPolynomialFit) checkCondition(reg model.Regressor, order, fold int) {
	if cv.condThreshold <= 0 {
		return
	}
	c, ok := reg.(interface{ Condition() float64 })
	if !ok {
		return
	}
	if cond := c.Condition(); cond > cv.condThreshold && !math.IsInf(cond, 1) {
		errors.Warn(errors.NewIllConditionedWarning(order, fold, cond, cv.condThreshold))
	}
}

// loss は MSE を計算し、オーバーフロー等で有限でなければ NumericalInstabilityError を返す
func loss(name string, reg model.Predictor, X mat.Matrix, t *mat.VecDense, order int) (float64, error) {
	pred, err := reg.Predict(X)
	if err != nil {
		return 0, err
	}
	mse, err := metrics.MSEMatrix(t, pred)
	if err != nil {
		return 0, err
	}
	return mse, errors.CheckScalar(name, mse, order)
}

func errorCode(err error) string {
	var (
		singular *errors.SingularDesignMatrixError
		numeric  *errors.NumericalInstabilityError
		panicErr *errors.PanicError
	)
	switch {
	case errors.As(err, &singular):
		return log.ErrorSingularMatrix
	case errors.As(err, &numeric):
		return log.ErrorNumericalIssue
	case errors.As(err, &panicErr):
		return log.ErrorRecoveredPanic
	default:
		return "FIT_FAILED"
	}
}
