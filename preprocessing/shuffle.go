package preprocessing

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/polycv/pkg/errors"
)

// ShuffleRows は (x, t) の組を同じ置換で並べ替えたコピーを返す
//
// 置換はシードから決定的に生成される（PCG）。分割処理は暗黙にシャッフルしないので、
// ランダムな分割が必要な場合は呼び出し側が事前にこの関数を使う。
func ShuffleRows(x, t []float64, seed uint64) (xs, ts []float64, err error) {
	if len(x) != len(t) {
		return nil, nil, errors.NewShapeMismatchError("ShuffleRows", "x", len(x), "t", len(t))
	}

	perm := Permutation(len(x), seed)
	xs = make([]float64, len(x))
	ts = make([]float64, len(t))
	for i, p := range perm {
		xs[i] = x[p]
		ts[i] = t[p]
	}
	return xs, ts, nil
}

// Permutation は 0..n-1 のシード付き置換を返す
func Permutation(n int, seed uint64) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
	return indices
}
