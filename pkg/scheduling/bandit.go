package scheduling

import (
	"math"
	"sync"
)

// Bandit is a LinUCB contextual bandit over (worker, task type) arms. Each arm
// keeps a ridge-regularized covariance A and reward vector b; the score of a
// context x is the reward estimate plus an uncertainty bonus:
//
//	θᵀx + α·√(xᵀA⁻¹x), θ = A⁻¹b
//
// Under-observed arms carry a large bonus and shrink toward pure exploitation as
// observations accumulate. One Bandit instance belongs to one factory; the
// mutex only guards against the tuner observing while a plan build scores.
type Bandit struct {
	mu   sync.RWMutex
	arms map[string]*armState
}

type armState struct {
	a [][]float64 // d×d covariance, ridge-initialized to identity
	b []float64
	n int // observation count
}

// NewBandit creates an empty bandit.
func NewBandit() *Bandit {
	return &Bandit{arms: make(map[string]*armState)}
}

// ArmKey builds the arm identifier for a worker and task type.
func ArmKey(workerID, taskType string) string {
	return workerID + "|" + taskType
}

func newArmState(d int) *armState {
	s := &armState{
		a: make([][]float64, d),
		b: make([]float64, d),
	}
	for i := range s.a {
		s.a[i] = make([]float64, d)
		s.a[i][i] = 1
	}
	return s
}

// Observe folds one observed reward into the arm's running state.
func (bd *Bandit) Observe(arm string, x []float64, reward float64) {
	bd.mu.Lock()
	defer bd.mu.Unlock()

	s, ok := bd.arms[arm]
	if !ok {
		s = newArmState(len(x))
		bd.arms[arm] = s
	}

	for i := range x {
		for j := range x {
			s.a[i][j] += x[i] * x[j]
		}
		s.b[i] += reward * x[i]
	}
	s.n++
}

// Score returns the LinUCB upper-confidence score of context x on the arm.
// An arm with no observations scores pure exploration: α·√(xᵀx).
func (bd *Bandit) Score(arm string, x []float64, alpha float64) float64 {
	bd.mu.RLock()
	s, ok := bd.arms[arm]
	bd.mu.RUnlock()

	if !ok {
		return alpha * math.Sqrt(dot(x, x))
	}

	bd.mu.RLock()
	defer bd.mu.RUnlock()

	inv := invert(s.a)
	if inv == nil {
		// Singular covariance cannot occur with ridge initialization, but a
		// neutral estimate beats a NaN if it ever does
		return 0
	}

	theta := matVec(inv, s.b)
	exploit := dot(theta, x)
	explore := dot(x, matVec(inv, x))
	if explore < 0 {
		explore = 0
	}
	return exploit + alpha*math.Sqrt(explore)
}

// Observations returns how many rewards the arm has absorbed.
func (bd *Bandit) Observations(arm string) int {
	bd.mu.RLock()
	defer bd.mu.RUnlock()
	if s, ok := bd.arms[arm]; ok {
		return s.n
	}
	return 0
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func matVec(m [][]float64, v []float64) []float64 {
	out := make([]float64, len(m))
	for i := range m {
		out[i] = dot(m[i], v)
	}
	return out
}

// invert computes the inverse of a small dense matrix with Gauss-Jordan
// elimination and partial pivoting. Returns nil for a singular input.
func invert(m [][]float64) [][]float64 {
	n := len(m)

	aug := make([][]float64, n)
	for i := range aug {
		aug[i] = make([]float64, 2*n)
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(aug[row][col]) > math.Abs(aug[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(aug[pivot][col]) < 1e-12 {
			return nil
		}
		aug[col], aug[pivot] = aug[pivot], aug[col]

		p := aug[col][col]
		for j := range aug[col] {
			aug[col][j] /= p
		}
		for row := 0; row < n; row++ {
			if row == col {
				continue
			}
			f := aug[row][col]
			if f == 0 {
				continue
			}
			for j := range aug[row] {
				aug[row][j] -= f * aug[col][j]
			}
		}
	}

	inv := make([][]float64, n)
	for i := range inv {
		inv[i] = aug[i][n:]
	}
	return inv
}
