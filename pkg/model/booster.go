package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Booster evaluates a binary-logistic XGBoost tree ensemble saved in the
// XGBoost JSON model format.
type Booster struct {
	baseMargin  float64
	numFeature  int
	objective   string
	featureName []string
	trees       []*tree
}

type tree struct {
	left      []int
	right     []int
	split     []int
	cond      []float64
	defLeft   []bool
	gain      []float64
	cover     []float64
	nodeValue []float64 // cover-weighted expected leaf value below each node
}

func (t *tree) isLeaf(n int) bool { return t.left[n] < 0 }

// xgbModel mirrors the subset of the XGBoost JSON document the evaluator reads.
type xgbModel struct {
	Learner struct {
		FeatureNames      []string `json:"feature_names"`
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Trees []xgbTree `json:"trees"`
			} `json:"model"`
		} `json:"gradient_booster"`
	} `json:"learner"`
}

type xgbTree struct {
	LeftChildren    []int      `json:"left_children"`
	RightChildren   []int      `json:"right_children"`
	SplitIndices    []int      `json:"split_indices"`
	SplitConditions []float64  `json:"split_conditions"`
	DefaultLeft     []flexBool `json:"default_left"`
	LossChanges     []float64  `json:"loss_changes"`
	SumHessian      []float64  `json:"sum_hessian"`
}

// flexBool accepts both true/false and 0/1, since XGBoost versions differ.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", "1":
		*b = true
	case "false", "0", "null":
		*b = false
	default:
		return fmt.Errorf("invalid default_left value %s", data)
	}
	return nil
}

// LoadBooster decodes an XGBoost JSON model.
func LoadBooster(r io.Reader) (*Booster, error) {
	var m xgbModel
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding xgboost model: %w", err)
	}

	l := m.Learner
	obj := l.Objective.Name
	if obj != "binary:logistic" && obj != "reg:logistic" {
		return nil, fmt.Errorf("unsupported objective %q", obj)
	}
	if gb := l.GradientBooster.Name; gb != "" && gb != "gbtree" {
		return nil, fmt.Errorf("unsupported booster %q", gb)
	}

	base, err := parseBaseScore(l.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, err
	}
	if base <= 0 || base >= 1 {
		return nil, fmt.Errorf("base_score %g outside (0, 1)", base)
	}

	b := &Booster{
		baseMargin:  math.Log(base / (1 - base)),
		objective:   obj,
		featureName: l.FeatureNames,
	}
	if s := l.LearnerModelParam.NumFeature; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("parsing num_feature: %w", err)
		}
		b.numFeature = n
	}

	for i, xt := range l.GradientBooster.Model.Trees {
		t, err := newTree(xt, b.numFeature)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		b.trees = append(b.trees, t)
	}
	if len(b.trees) == 0 {
		return nil, fmt.Errorf("model has no trees")
	}
	return b, nil
}

// parseBaseScore handles both "5E-1" and the bracketed "[5E-1]" form.
func parseBaseScore(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return 0.5, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing base_score: %w", err)
	}
	return v, nil
}

func newTree(xt xgbTree, numFeature int) (*tree, error) {
	n := len(xt.LeftChildren)
	if n == 0 {
		return nil, fmt.Errorf("empty tree")
	}
	if len(xt.RightChildren) != n || len(xt.SplitIndices) != n || len(xt.SplitConditions) != n {
		return nil, fmt.Errorf("node arrays have different lengths")
	}

	t := &tree{
		left:    xt.LeftChildren,
		right:   xt.RightChildren,
		split:   xt.SplitIndices,
		cond:    xt.SplitConditions,
		defLeft: make([]bool, n),
		gain:    make([]float64, n),
		cover:   make([]float64, n),
	}
	for i := 0; i < n && i < len(xt.DefaultLeft); i++ {
		t.defLeft[i] = bool(xt.DefaultLeft[i])
	}
	copy(t.gain, xt.LossChanges)
	copy(t.cover, xt.SumHessian)

	for i := 0; i < n; i++ {
		if t.isLeaf(i) {
			continue
		}
		l, r := t.left[i], t.right[i]
		// Children always come after their parent, which also rules out cycles.
		if l <= i || l >= n || r <= i || r >= n {
			return nil, fmt.Errorf("node %d has invalid children %d, %d", i, l, r)
		}
		if t.split[i] < 0 || (numFeature > 0 && t.split[i] >= numFeature) {
			return nil, fmt.Errorf("node %d splits on feature %d out of range", i, t.split[i])
		}
	}

	t.nodeValue = make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		if t.isLeaf(i) {
			t.nodeValue[i] = t.cond[i]
			continue
		}
		l, r := t.left[i], t.right[i]
		cl, cr := t.cover[l], t.cover[r]
		if cl+cr > 0 {
			t.nodeValue[i] = (cl*t.nodeValue[l] + cr*t.nodeValue[r]) / (cl + cr)
		} else {
			t.nodeValue[i] = (t.nodeValue[l] + t.nodeValue[r]) / 2
		}
	}
	return t, nil
}

// next returns the child reached from internal node n for row x.
// Missing features (NaN or beyond the row) follow default_left.
func (t *tree) next(n int, x []float64) int {
	f := t.split[n]
	if f >= len(x) || math.IsNaN(x[f]) {
		if t.defLeft[n] {
			return t.left[n]
		}
		return t.right[n]
	}
	if x[f] < t.cond[n] {
		return t.left[n]
	}
	return t.right[n]
}

func (t *tree) leaf(x []float64) float64 {
	n := 0
	for !t.isLeaf(n) {
		n = t.next(n, x)
	}
	return t.cond[n]
}

// NumFeature is the input width declared by the model, or 0 if unknown.
func (b *Booster) NumFeature() int { return b.numFeature }

// NumTrees reports the ensemble size.
func (b *Booster) NumTrees() int { return len(b.trees) }

// FeatureName returns the model's own name for feature i, falling back to
// XGBoost's "f<i>" convention.
func (b *Booster) FeatureName(i int) string {
	if i >= 0 && i < len(b.featureName) && b.featureName[i] != "" {
		return b.featureName[i]
	}
	return "f" + strconv.Itoa(i)
}

// Margin returns the raw log-odds for one transformed row.
func (b *Booster) Margin(x []float64) float64 {
	m := b.baseMargin
	for _, t := range b.trees {
		m += t.leaf(x)
	}
	return m
}

// Probability returns the positive-class probability for one row.
func (b *Booster) Probability(x []float64) float64 {
	return sigmoid(b.Margin(x))
}

// Gain returns the average split gain per feature index, matching XGBoost's
// "gain" importance type. Features never used in a split are absent.
func (b *Booster) Gain() map[int]float64 {
	total := make(map[int]float64)
	count := make(map[int]int)
	for _, t := range b.trees {
		for n := range t.left {
			if t.isLeaf(n) {
				continue
			}
			total[t.split[n]] += t.gain[n]
			count[t.split[n]]++
		}
	}
	out := make(map[int]float64, len(total))
	for f, g := range total {
		out[f] = g / float64(count[f])
	}
	return out
}

// Contributions attributes one row's margin to features by walking each
// tree's decision path and crediting the split feature with the change in
// expected value. The returned slice has width+1 entries; the last entry is
// the bias, and the entries sum to Margin(x).
func (b *Booster) Contributions(x []float64, width int) []float64 {
	out := make([]float64, width+1)
	out[width] = b.baseMargin
	for _, t := range b.trees {
		n := 0
		out[width] += t.nodeValue[0]
		for !t.isLeaf(n) {
			c := t.next(n, x)
			if f := t.split[n]; f < width {
				out[f] += t.nodeValue[c] - t.nodeValue[n]
			} else {
				out[width] += t.nodeValue[c] - t.nodeValue[n]
			}
			n = c
		}
	}
	return out
}

func sigmoid(m float64) float64 {
	return 1 / (1 + math.Exp(-m))
}
