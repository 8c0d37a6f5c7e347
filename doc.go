// Package polycv selects the order of a one-dimensional polynomial regression
// by K-fold cross-validation.
//
// 訓練データ (x, t) を K 個の連続したフォールドに分割し、次数 0..M の各多項式を
// 最小二乗法 (正規方程式) で学習します。各 (次数, フォールド) について訓練損失、
// 交差検証損失、独立テスト損失 (いずれも MSE) を記録し、次数ごとの平均から
// 交差検証損失が最小となる次数を選びます。
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/polycv/datasets"
//	    "github.com/YuminosukeSato/polycv/model_selection"
//	)
//
//	func main() {
//	    train, _ := datasets.MakeCubic(20, 0.5, 1)
//	    test, _ := datasets.MakeCubic(100, 0.5, 2)
//
//	    table, err := model_selection.Evaluate(train.X, train.T, test.X, test.T, 9, 5)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    means := table.MeanLosses()
//	    best, _ := table.BestOrder()
//	    fmt.Println("mean CV loss:", means.CV, "selected order:", best)
//	}
//
// High orders make the normal equations singular. Such cells are recorded
// as failures in the LossTable (NaN losses with a SingularDesignMatrixError)
// instead of aborting the sweep.
//
// # Packages
//
//   - model_selection: folds, the loss table and the cross-validated sweep
//   - linear: least squares solver and PolynomialRegression
//   - preprocessing: incrementally extended polynomial design matrices, seeded shuffling
//   - metrics: MSE, RMSE, R²
//   - datasets: synthetic polynomial data and x,t CSV I/O
//   - report: loss table CSV and order vs loss plots
//   - core/model: estimator interfaces and fitted-state management
//   - core/parallel: worker pool helpers
//   - pkg/errors, pkg/log: error types and structured logging
//
// The polycv command (cmd/polycv) wraps all of the above.
package polycv
