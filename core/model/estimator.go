// Package model defines the estimator contracts shared by the regression
// and model-selection packages.
package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer は決定係数 R² を計算できるモデルのインターフェース
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor は設計行列の上で学習・予測する回帰モデル
type Regressor interface {
	Fitter
	Predictor
	Scorer

	// Coefficients は学習された係数ベクトルを返す（切片は設計行列の定数列に含まれる）
	Coefficients() []float64
}

// RegressorFactory は交差検証のセルごとに新しい回帰モデルを生成する
type RegressorFactory func() Regressor
