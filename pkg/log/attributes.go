// Package log defines standard attribute keys for cross-validation runs.
//
// Using these keys keeps sweep, fit and report logs filterable with the
// same names regardless of which backend (slog or zerolog) emitted them.
// Keys follow a hierarchical naming convention ("cv.order", "data.samples").

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator, e.g. "LeastSquares", "PolynomialRegression".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "evaluate", "partition", "report"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	// Examples: "model_selection", "linear", "report"
	ComponentKey = "ml.component"

	// PhaseKey indicates the loss series a value belongs to.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of training samples.
	SamplesKey = "data.samples"

	// TestSamplesKey indicates the number of independent test samples.
	TestSamplesKey = "data.test_samples"

	// FeaturesKey indicates the number of design-matrix columns.
	FeaturesKey = "data.features"

	// RandomSeedKey records the seed used for data generation or shuffling.
	RandomSeedKey = "config.random_seed"
)

// Cross-validation Context
const (
	// OrderKey is the polynomial order of the current cell.
	OrderKey = "cv.order"

	// MaxOrderKey is the inclusive upper bound of the sweep.
	MaxOrderKey = "cv.max_order"

	// FoldKey is the index of the held-out fold.
	FoldKey = "cv.fold"

	// FoldsKey is the number of folds K.
	FoldsKey = "cv.folds"

	// FoldSizeKey is the number of rows in the held-out fold.
	FoldSizeKey = "cv.fold_size"

	// JobsKey is the number of parallel workers.
	JobsKey = "cv.jobs"

	// BestOrderKey is the order selected by minimum mean CV loss.
	BestOrderKey = "cv.best_order"

	// FailedCellsKey counts cells whose fit failed.
	FailedCellsKey = "cv.failed_cells"

	// BreakdownOrderKey is the lowest order with a failed cell.
	BreakdownOrderKey = "cv.breakdown_order"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records a generic loss value.
	LossKey = "metrics.loss"

	// TrainLossKey records the training-subset MSE.
	TrainLossKey = "metrics.train_loss"

	// CVLossKey records the held-out fold MSE.
	CVLossKey = "metrics.cv_loss"

	// TestLossKey records the independent test-set MSE.
	TestLossKey = "metrics.test_loss"

	// ConditionKey records the condition number of the normal equations.
	ConditionKey = "metrics.condition"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides hints for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationEvaluate  = "evaluate"
	OperationPartition = "partition"
	OperationReport    = "report"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseTesting    = "testing"

	ErrorShapeMismatch  = "SHAPE_MISMATCH"
	ErrorInvalidFolds   = "INVALID_FOLD_COUNT"
	ErrorSingularMatrix = "SINGULAR_MATRIX"
	ErrorNumericalIssue = "NUMERICAL_INSTABILITY"
	ErrorRecoveredPanic = "RECOVERED_PANIC"
)
