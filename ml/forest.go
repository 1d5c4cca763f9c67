package ml

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// TreeNode is one node of a fitted decision tree. Fields are exported for
// gob encoding of the persisted model.
type TreeNode struct {
	Left        *TreeNode
	Right       *TreeNode
	SplitVar    int
	SplitVal    float64
	ClassCounts []int
	Samples     int
	Impurity    float64
	Leaf        bool
}

// Tree is a single CART classifier built on gini impurity with threshold
// splits at feature-value midpoints.
type Tree struct {
	Root *TreeNode
}

// Forest is a bagged ensemble of decision trees. Each tree is fitted on a
// bootstrap sample and considers a random sqrt-sized feature subset at each
// split.
type Forest struct {
	Trees     []*Tree
	NFeatures int
	NClasses  int
}

const minLeafSize = 1

// TrainForest fits nTrees trees on (X, y). The seed fixes bootstrap and
// feature sampling, so identical inputs produce an identical ensemble.
func TrainForest(X [][]float64, y []int, nTrees, nClasses int, seed int64) *Forest {
	f := &Forest{
		NFeatures: len(X[0]),
		NClasses:  nClasses,
	}
	rng := rand.New(rand.NewSource(seed))
	maxFeatures := int(math.Sqrt(float64(f.NFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	for i := 0; i < nTrees; i++ {
		inx := make([]int, len(X))
		for j := range inx {
			inx[j] = rng.Intn(len(X))
		}
		t := &Tree{}
		t.Root = buildNode(X, y, inx, nClasses, maxFeatures, rng)
		f.Trees = append(f.Trees, t)
	}
	return f
}

// Proba returns the class probability distribution for one feature vector,
// averaged over the per-tree leaf distributions.
func (f *Forest) Proba(x []float64) []float64 {
	probs := make([]float64, f.NClasses)
	tmp := make([]float64, f.NClasses)
	for _, t := range f.Trees {
		n := t.Root
		for !n.Leaf {
			if x[n.SplitVar] > n.SplitVal {
				n = n.Right
			} else {
				n = n.Left
			}
		}
		for c := range tmp {
			tmp[c] = float64(n.ClassCounts[c]) / float64(n.Samples)
		}
		floats.Add(probs, tmp)
	}
	floats.Scale(1/float64(len(f.Trees)), probs)
	return probs
}

// Predict returns the most probable class index and the full distribution.
func (f *Forest) Predict(x []float64) (int, []float64) {
	probs := f.Proba(x)
	return floats.MaxIdx(probs), probs
}

// Importances estimates the relative contribution of each feature as the
// mean decrease in impurity across all trees, normalized to sum to one.
func (f *Forest) Importances() []float64 {
	imp := make([]float64, f.NFeatures)
	for _, t := range f.Trees {
		accumulateImportance(t.Root, imp)
	}
	if total := floats.Sum(imp); total > 0 {
		floats.Scale(1/total, imp)
	}
	return imp
}

func accumulateImportance(n *TreeNode, imp []float64) {
	if n == nil || n.Leaf {
		return
	}
	imp[n.SplitVar] += float64(n.Samples)*n.Impurity -
		float64(n.Left.Samples)*n.Left.Impurity -
		float64(n.Right.Samples)*n.Right.Impurity
	accumulateImportance(n.Left, imp)
	accumulateImportance(n.Right, imp)
}

func buildNode(X [][]float64, y []int, inx []int, nClasses, maxFeatures int, rng *rand.Rand) *TreeNode {
	counts := make([]int, nClasses)
	for _, i := range inx {
		counts[y[i]]++
	}

	n := &TreeNode{
		ClassCounts: counts,
		Samples:     len(inx),
		Impurity:    gini(len(inx), counts),
	}

	if len(inx) < 2*minLeafSize || n.Impurity <= 1e-7 {
		n.Leaf = true
		return n
	}

	bestGain := 0.0
	bestVar := -1
	bestVal := 0.0

	for _, feature := range rng.Perm(len(X[0]))[:maxFeatures] {
		val, gain, ok := bestSplit(X, y, inx, feature, nClasses, n.Impurity)
		if ok && gain > bestGain {
			bestGain = gain
			bestVar = feature
			bestVal = val
		}
	}

	if bestVar < 0 {
		n.Leaf = true
		return n
	}

	var left, right []int
	for _, i := range inx {
		if X[i][bestVar] > bestVal {
			right = append(right, i)
		} else {
			left = append(left, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		n.Leaf = true
		return n
	}

	n.SplitVar = bestVar
	n.SplitVal = bestVal
	n.Left = buildNode(X, y, left, nClasses, maxFeatures, rng)
	n.Right = buildNode(X, y, right, nClasses, maxFeatures, rng)
	return n
}

// bestSplit scans the sorted values of one feature and returns the midpoint
// threshold with the largest impurity decrease.
func bestSplit(X [][]float64, y []int, inx []int, feature, nClasses int, parentImpurity float64) (val, gain float64, ok bool) {
	sorted := make([]int, len(inx))
	copy(sorted, inx)
	sort.Slice(sorted, func(a, b int) bool {
		return X[sorted[a]][feature] < X[sorted[b]][feature]
	})

	ctLeft := make([]int, nClasses)
	ctRight := make([]int, nClasses)
	for _, i := range sorted {
		ctRight[y[i]]++
	}

	n := len(sorted)
	for pos := 1; pos < n; pos++ {
		c := y[sorted[pos-1]]
		ctLeft[c]++
		ctRight[c]--

		prev := X[sorted[pos-1]][feature]
		cur := X[sorted[pos]][feature]
		if cur <= prev+1e-7 {
			continue // identical values cannot be separated
		}

		iL := gini(pos, ctLeft)
		iR := gini(n-pos, ctRight)
		d := parentImpurity - (float64(pos)/float64(n))*iL - (float64(n-pos)/float64(n))*iR
		if d > gain {
			gain = d
			val = (prev + cur) / 2
			ok = true
		}
	}
	return val, gain, ok
}

// gini impurity: 1 - sum over classes p_k^2.
func gini(n int, counts []int) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		if c > 0 {
			p := float64(c) / float64(n)
			g -= p * p
		}
	}
	return g
}
