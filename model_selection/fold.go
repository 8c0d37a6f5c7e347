// Package model_selection evaluates polynomial regression orders by K-fold
// cross-validation against a fixed independent test set.
package model_selection

import (
	"github.com/YuminosukeSato/polycv/pkg/errors"
)

// Fold は訓練インデックスの連続した半開区間 [Start, End)
type Fold struct {
	Index int
	Start int
	End   int
}

// Size は fold に含まれる行数を返す
func (f Fold) Size() int { return f.End - f.Start }

// Contains reports whether row i belongs to the fold.
func (f Fold) Contains(i int) bool { return i >= f.Start && i < f.End }

// Indices は fold に含まれる行インデックスを返す
func (f Fold) Indices() []int {
	out := make([]int, 0, f.Size())
	for i := f.Start; i < f.End; i++ {
		out = append(out, i)
	}
	return out
}

// Complement は [0, n) のうち fold に含まれない行インデックスを返す
func (f Fold) Complement(n int) []int {
	out := make([]int, 0, n-f.Size())
	for i := 0; i < f.Start; i++ {
		out = append(out, i)
	}
	for i := f.End; i < n; i++ {
		out = append(out, i)
	}
	return out
}

// Partition は n 行を k 個の連続した fold に分割する
//
// 各 fold の大きさは n/k で、割り切れない余り n%k はすべて最後の fold に加える。
// 行の並べ替えは行わない（必要なら preprocessing.ShuffleRows を事前に使う）。
func Partition(n, k int) ([]Fold, error) {
	if k < 1 || k > n {
		return nil, errors.NewInvalidFoldCountError("Partition", k, n)
	}

	size := n / k
	folds := make([]Fold, k)
	for i := range folds {
		folds[i] = Fold{Index: i, Start: i * size, End: (i + 1) * size}
	}
	folds[k-1].End = n
	return folds, nil
}
