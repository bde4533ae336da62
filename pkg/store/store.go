// Package store provides in-memory storage for evaluation history.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lemonberrylabs/rpncalc/pkg/calc"
	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// EvaluationState represents the outcome of an evaluation.
type EvaluationState string

const (
	EvaluationSucceeded EvaluationState = "SUCCEEDED"
	EvaluationFailed    EvaluationState = "FAILED"
)

// Evaluation represents one recorded evaluation.
type Evaluation struct {
	ID         string           `json:"id"`
	Expression string           `json:"expression"`
	Cleaned    string           `json:"cleaned"`
	Postfix    string           `json:"postfix,omitempty"`
	Result     float64          `json:"-"`
	State      EvaluationState  `json:"state"`
	Error      *types.CalcError `json:"-"`
	Source     string           `json:"source"`
	CreateTime time.Time        `json:"createTime"`
}

// Store is a thread-safe in-memory history of evaluations.
type Store struct {
	mu          sync.RWMutex
	evaluations map[string]*Evaluation
	limit       int

	// Counter for generating unique IDs
	counter int64
}

// DefaultLimit is the number of evaluations kept before the oldest are dropped.
const DefaultLimit = 1000

// New creates a new empty store that keeps at most limit evaluations.
// A non-positive limit selects DefaultLimit.
func New(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		evaluations: make(map[string]*Evaluation),
		limit:       limit,
	}
}

// Evaluate runs the expression through the calculator and records the outcome.
// The returned error is the evaluation error, if any; the record is stored
// either way.
func (s *Store) Evaluate(expression, source string) (*Evaluation, error) {
	res, err := calc.Run(expression)

	ev := &Evaluation{
		Expression: expression,
		Cleaned:    res.Cleaned,
		Source:     source,
		CreateTime: time.Now(),
	}
	if res.Postfix != nil {
		ev.Postfix = calc.FormatTokens(res.Postfix)
	}
	if err != nil {
		ev.State = EvaluationFailed
		if ce, ok := types.AsCalcError(err); ok {
			ev.Error = ce
		} else {
			ev.Error = &types.CalcError{Message: err.Error(), Pos: types.NoPos}
		}
	} else {
		ev.State = EvaluationSucceeded
		ev.Result = res.Value
	}

	s.add(ev)
	return ev, err
}

func (s *Store) add(ev *Evaluation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	ev.ID = fmt.Sprintf("eval-%d", s.counter)
	s.evaluations[ev.ID] = ev

	if len(s.evaluations) > s.limit {
		delete(s.evaluations, fmt.Sprintf("eval-%d", s.counter-int64(s.limit)))
	}
}

// GetEvaluation retrieves an evaluation by ID.
func (s *Store) GetEvaluation(id string) (*Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.evaluations[id]
	if !ok {
		return nil, fmt.Errorf("evaluation '%s' not found", id)
	}
	return ev, nil
}

// ListEvaluations returns all stored evaluations, newest first.
func (s *Store) ListEvaluations() []*Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Evaluation, 0, len(s.evaluations))
	for _, ev := range s.evaluations {
		result = append(result, ev)
	}
	sort.Slice(result, func(i, j int) bool {
		return idNumber(result[i].ID) > idNumber(result[j].ID)
	})
	return result
}

// Counts returns the number of succeeded and failed evaluations.
func (s *Store) Counts() (succeeded, failed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ev := range s.evaluations {
		if ev.State == EvaluationSucceeded {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Clear removes every stored evaluation. IDs keep increasing afterwards.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.evaluations)
	s.evaluations = make(map[string]*Evaluation)
	return n
}

func idNumber(id string) int64 {
	var n int64
	fmt.Sscanf(id, "eval-%d", &n)
	return n
}
