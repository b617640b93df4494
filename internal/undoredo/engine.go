package undoredo

import (
	"sync"

	"github.com/dupimg/dupimg/internal/recycle"
	"github.com/dupimg/dupimg/pkg/api"
)

// Stage is one snapshot in the undo/redo deque: the Change that
// produced it, plus a clone of the result store's results and groups
// at that point in time (step 4 of the transaction protocol).
type Stage struct {
	Change  []*InverseOp
	Results []*api.Result
	Groups  []*api.ImageGroup
}

// Engine drives the six-step transaction protocol of spec §4.8: commit
// a completed Change, and undo/redo across the bounded deque.
type Engine struct {
	mu      sync.Mutex
	bin     recycle.Bin
	maxSize int

	undo []*Stage
	redo []*Stage
}

// NewEngine returns an Engine using bin to recycle/restore deleted
// files, retiring the oldest undo stage once more than maxSize stages
// are queued (api.DefaultUndoQueueSize if maxSize <= 0).
func NewEngine(bin recycle.Bin, maxSize int) *Engine {
	if maxSize <= 0 {
		maxSize = api.DefaultUndoQueueSize
	}
	return &Engine{bin: bin, maxSize: maxSize}
}

// Commit stages a completed transaction. Returns ErrZeroTarget if ops
// is empty (step 3: "if nothing succeeded, discard the empty Change").
// Committing clears the redo deque (step 6) and, once the undo deque
// exceeds maxSize, permanently purges the oldest stage's recycled
// files (the rest of step 6 — forgetting its Change and freeing
// interned ImageInfos — is the caller's responsibility since this
// package has no view of interning).
func (e *Engine) Commit(ops []*InverseOp, results []*api.Result, groups []*api.ImageGroup) error {
	if len(ops) == 0 {
		return api.NewError(api.ErrZeroTarget, "transaction produced no successful mutation")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.undo = append(e.undo, &Stage{Change: ops, Results: results, Groups: groups})
	e.redo = nil

	if len(e.undo) > e.maxSize {
		retired := e.undo[0]
		e.undo = e.undo[1:]
		for _, op := range retired.Change {
			if op.Kind == OpRecycle {
				_ = e.bin.Purge(op.HiddenPath)
			}
		}
	}
	return nil
}

// Undo pops the most recent undo stage, plays each inverse operation in
// reverse application order, and pushes the stage onto the redo deque.
func (e *Engine) Undo() (*Stage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.undo) == 0 {
		return nil, api.NewError(api.ErrZeroTarget, "nothing to undo")
	}
	stage := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]

	for i := len(stage.Change) - 1; i >= 0; i-- {
		if err := applyUndo(stage.Change[i], e.bin); err != nil {
			e.undo = append(e.undo, stage)
			return nil, err
		}
	}

	e.redo = append(e.redo, stage)
	return stage, nil
}

// Redo pops the most recent redo stage, re-executes each original
// forward action in application order, and pushes the stage back onto
// the undo deque.
func (e *Engine) Redo() (*Stage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.redo) == 0 {
		return nil, api.NewError(api.ErrZeroTarget, "nothing to redo")
	}
	stage := e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]

	for _, op := range stage.Change {
		if err := applyRedo(op, e.bin); err != nil {
			e.redo = append(e.redo, stage)
			return nil, err
		}
	}

	e.undo = append(e.undo, stage)
	return stage, nil
}

// CanUndo and CanRedo report whether a deque has a stage ready.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.undo) > 0
}

func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.redo) > 0
}
