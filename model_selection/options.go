package model_selection

import (
	"github.com/YuminosukeSato/polycv/core/model"
	"github.com/YuminosukeSato/polycv/linear"
	"github.com/YuminosukeSato/polycv/pkg/log"
)

// DefaultConditionWarningThreshold は条件数警告のデフォルト閾値
const DefaultConditionWarningThreshold = 1e12

// Option は CrossValidatedPolynomialFit を設定する関数
type Option func(*CrossValidatedPolynomialFit)

// WithNJobs sets the number of workers used across folds.
// 1 (default) runs sequentially, -1 uses all CPUs.
func WithNJobs(n int) Option {
	return func(cv *CrossValidatedPolynomialFit) {
		cv.nJobs = n
	}
}

// WithLogger sets the logger used for sweep progress and per-cell failures.
func WithLogger(l log.Logger) Option {
	return func(cv *CrossValidatedPolynomialFit) {
		if l != nil {
			cv.logger = l
		}
	}
}

// WithConditionWarningThreshold は AᵀA の条件数がこの値を超えたときに
// IllConditionedWarning を errors.Warn へ送る。0 以下で無効。
func WithConditionWarningThreshold(c float64) Option {
	return func(cv *CrossValidatedPolynomialFit) {
		cv.condThreshold = c
	}
}

// WithRegressor は各セルで使う回帰モデルの生成関数を差し替える
// （デフォルト: linear.NewLeastSquares）
func WithRegressor(factory model.RegressorFactory) Option {
	return func(cv *CrossValidatedPolynomialFit) {
		if factory != nil {
			cv.newRegressor = factory
		}
	}
}

func defaultRegressor() model.Regressor { return linear.NewLeastSquares() }
