// Package preprocessing builds the polynomial feature matrices consumed by
// the least-squares solver.
package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/polycv/core/parallel"
)

// rowParallelThreshold はこの行数以下では列計算を逐次で行う
const rowParallelThreshold = 4096

// DesignMatrix は多項式の計画行列 [1, x, x², …, x^order] の不変スナップショット
//
// Extend は直前の列を共有したまま 1 列だけ追加した新しいスナップショットを返すため、
// 次数ごとに行列全体を作り直す必要がない。既存のスナップショットは変更されないので、
// 複数のゴルーチンから読み取り専用で共有できる。
type DesignMatrix struct {
	x    []float64
	cols [][]float64
}

var _ mat.Matrix = (*DesignMatrix)(nil)

// NewDesignMatrix は次数 0（定数列のみ）の計画行列を作成する
//
// x は複製されるため、呼び出し側がその後書き換えても影響しない。
func NewDesignMatrix(x []float64) *DesignMatrix {
	xs := make([]float64, len(x))
	copy(xs, x)

	bias := make([]float64, len(xs))
	for i := range bias {
		bias[i] = 1
	}
	return &DesignMatrix{x: xs, cols: [][]float64{bias}}
}

// Extend は次数を 1 つ上げた計画行列を返す
//
// 新しい列は最後の列と x の要素積で計算する。
func (d *DesignMatrix) Extend() *DesignMatrix {
	last := d.cols[len(d.cols)-1]
	next := make([]float64, len(d.x))
	parallel.ParallelizeWithThreshold(len(d.x), rowParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			next[i] = last[i] * d.x[i]
		}
	})

	cols := make([][]float64, len(d.cols), len(d.cols)+1)
	copy(cols, d.cols)
	return &DesignMatrix{x: d.x, cols: append(cols, next)}
}

// Order は多項式の次数（列数 - 1）を返す
func (d *DesignMatrix) Order() int { return len(d.cols) - 1 }

// Dims returns the number of samples and columns.
func (d *DesignMatrix) Dims() (r, c int) { return len(d.x), len(d.cols) }

// At returns x_i^j.
func (d *DesignMatrix) At(i, j int) float64 {
	if uint(j) >= uint(len(d.cols)) {
		panic(mat.ErrColAccess)
	}
	if uint(i) >= uint(len(d.x)) {
		panic(mat.ErrRowAccess)
	}
	return d.cols[j][i]
}

// T returns the implicit transpose.
func (d *DesignMatrix) T() mat.Matrix { return mat.Transpose{Matrix: d} }

// Column は j 列目のコピーを返す
func (d *DesignMatrix) Column(j int) []float64 {
	if uint(j) >= uint(len(d.cols)) {
		panic(mat.ErrColAccess)
	}
	out := make([]float64, len(d.cols[j]))
	copy(out, d.cols[j])
	return out
}

// Rows は指定した行だけを取り出した密行列を返す
//
// 交差検証で訓練・検証の部分集合を切り出すために使う。
func (d *DesignMatrix) Rows(indices []int) *mat.Dense {
	if len(indices) == 0 {
		// gonum は 0 行の Dense を作れない
		return nil
	}
	out := mat.NewDense(len(indices), len(d.cols), nil)
	for r, i := range indices {
		for j, col := range d.cols {
			out.Set(r, j, col[i])
		}
	}
	return out
}

// Dense は計画行列全体を密行列として返す
func (d *DesignMatrix) Dense() *mat.Dense {
	return mat.DenseCopyOf(d)
}
