// Package datasets generates synthetic polynomial regression data.
package datasets

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/polycv/pkg/errors"
)

// CubicCoeffs は MakeCubic が使う t = x + (-1)x² + 5x³ の係数（定数項から昇順）
var CubicCoeffs = []float64{0, 1, -1, 5}

// Dataset は (x, t) の組の列
type Dataset struct {
	X []float64
	T []float64
}

// Len returns the number of samples.
func (d Dataset) Len() int { return len(d.X) }

// Config は MakePolynomial の設定
type Config struct {
	// N はサンプル数
	N int
	// Coeffs は定数項から昇順の多項式係数
	Coeffs []float64
	// NoiseStd はガウスノイズの標準偏差（0 でノイズなし）
	NoiseStd float64
	// Seed は乱数シード
	Seed uint64
	// Low, High は x の範囲（両方 0 なら [-1, 1]）
	Low, High float64
	// Uniform が true なら x を一様乱数で生成して昇順に並べる。false なら等間隔。
	Uniform bool
}

// Linspace は [start, stop] を n 等分した点を返す（両端を含む）
func Linspace(start, stop float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, stop)
}

// Polynomial は coeffs の多項式を x の各点で評価する（Horner 法）
func Polynomial(coeffs, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, xi := range x {
		var v float64
		for j := len(coeffs) - 1; j >= 0; j-- {
			v = v*xi + coeffs[j]
		}
		out[i] = v
	}
	return out
}

// MakePolynomial は多項式にガウスノイズを加えたデータを生成する
//
// 同じ Config からは常に同じデータが得られる。
func MakePolynomial(cfg Config) (Dataset, error) {
	if cfg.N <= 0 {
		return Dataset{}, errors.NewValidationError("n", "must be positive", cfg.N)
	}
	if len(cfg.Coeffs) == 0 {
		return Dataset{}, errors.NewValidationError("coeffs", "must not be empty", cfg.Coeffs)
	}
	if cfg.NoiseStd < 0 {
		return Dataset{}, errors.NewValidationError("noise_std", "must be non-negative", cfg.NoiseStd)
	}
	low, high := cfg.Low, cfg.High
	if low == 0 && high == 0 {
		low, high = -1, 1
	}
	if !(low < high) {
		return Dataset{}, errors.NewValidationError("range", "low must be less than high", [2]float64{low, high})
	}

	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)

	var x []float64
	if cfg.Uniform {
		u := distuv.Uniform{Min: low, Max: high, Src: src}
		x = make([]float64, cfg.N)
		for i := range x {
			x[i] = u.Rand()
		}
		sort.Float64s(x)
	} else {
		x = Linspace(low, high, cfg.N)
	}

	t := Polynomial(cfg.Coeffs, x)
	if cfg.NoiseStd > 0 {
		noise := distuv.Normal{Mu: 0, Sigma: cfg.NoiseStd, Src: src}
		for i := range t {
			t[i] += noise.Rand()
		}
	}
	return Dataset{X: x, T: t}, nil
}

// MakeCubic は [-1, 1] 上の等間隔な x とノイズ付きの 3 次式 CubicCoeffs を生成する
func MakeCubic(n int, noiseStd float64, seed uint64) (Dataset, error) {
	return MakePolynomial(Config{
		N:        n,
		Coeffs:   CubicCoeffs,
		NoiseStd: noiseStd,
		Seed:     seed,
	})
}
