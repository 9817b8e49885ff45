package sqlite

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/showstore/internal/metrics"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// ApplyBatch applies ops atomically. Change notifications for the batch
// fire once per distinct path after the commit.
func (b *Backend) ApplyBatch(ops []types.Operation) (results []types.Result, err error) {
	start := time.Now()
	defer func() { b.observe("batch", "", start, err) }()

	if len(ops) == 0 {
		return []types.Result{}, nil
	}
	if t := b.joined(); t != nil {
		return t.ApplyBatch(ops)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	err = b.transact(func(t *Tx) error {
		var berr error
		results, berr = t.ApplyBatch(ops)
		return berr
	})
	metrics.RecordBatch(len(ops), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ApplyBatch applies ops inside the transaction. A failure marks the whole
// transaction for rollback.
func (t *Tx) ApplyBatch(ops []types.Operation) ([]types.Result, error) {
	results := make([]types.Result, len(ops))
	for i, op := range ops {
		res, err := t.applyOne(op, results[:i])
		if err != nil {
			berr := &types.BatchError{Index: i, Op: op.Kind, Err: err}
			t.fail(berr)
			return nil, berr
		}
		results[i] = res
	}
	return results, nil
}

func (t *Tx) applyOne(op types.Operation, prior []types.Result) (types.Result, error) {
	values, err := resolveBackRefs(op, prior)
	if err != nil {
		return types.Result{}, err
	}
	switch op.Kind {
	case types.OpInsert:
		id, err := t.Insert(op.Path, values)
		return types.Result{ID: id, Count: 1}, err
	case types.OpUpdate:
		n, err := t.Update(op.Path, values, op.Selection, op.Args...)
		return types.Result{Count: n}, err
	case types.OpDelete:
		n, err := t.Delete(op.Path, op.Selection, op.Args...)
		return types.Result{Count: n}, err
	}
	return types.Result{}, fmt.Errorf("%w: operation kind %q", types.ErrUnsupportedOperation, op.Kind)
}

// resolveBackRefs copies op.Values and sets each back-referenced column to
// the id produced by an earlier insert of the batch.
func resolveBackRefs(op types.Operation, prior []types.Result) (types.Values, error) {
	if len(op.BackRefs) == 0 {
		return op.Values, nil
	}
	values := op.Values.Clone()
	for col, idx := range op.BackRefs {
		if idx < 0 || idx >= len(prior) {
			return nil, fmt.Errorf("back reference %s -> %d: %w", col, idx, types.ErrInvalidData)
		}
		if prior[idx].ID == 0 {
			return nil, fmt.Errorf("back reference %s -> %d is not an insert: %w", col, idx, types.ErrInvalidData)
		}
		values[col] = prior[idx].ID
	}
	return values, nil
}
