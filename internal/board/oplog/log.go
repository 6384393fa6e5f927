// Package oplog keeps the ordered history of drawing operations. It is the
// replay source for every newly joined connection.
//
// A Log is not safe for concurrent use; it is owned by the session's event
// loop.
package oplog

import "github.com/dmitrijs2005/sketchboard/internal/board/models"

type Log struct {
	ops   []*models.Operation
	index map[string]*models.Operation
}

func New() *Log {
	return &Log{index: make(map[string]*models.Operation)}
}

// Append adds op at the tail. Ids are not checked for uniqueness; when two
// entries share an id, point appends go to the most recent one.
func (l *Log) Append(op models.Operation) {
	c := op.Clone()
	l.ops = append(l.ops, &c)
	l.index[c.ID] = &c
}

// AppendPoints extends the operation with the given id. It reports false
// when no such operation is in the log. Finalized strokes are still extended.
func (l *Log) AppendPoints(id string, pts []models.Point) bool {
	op, ok := l.index[id]
	if !ok {
		return false
	}
	op.Points = append(op.Points, pts...)
	return true
}

// Pop removes and returns the tail operation.
func (l *Log) Pop() (models.Operation, bool) {
	n := len(l.ops)
	if n == 0 {
		return models.Operation{}, false
	}
	op := l.ops[n-1]
	l.ops[n-1] = nil
	l.ops = l.ops[:n-1]
	l.reindex(op.ID)
	return *op, true
}

// reindex points id back at the newest remaining operation carrying it.
func (l *Log) reindex(id string) {
	delete(l.index, id)
	for i := len(l.ops) - 1; i >= 0; i-- {
		if l.ops[i].ID == id {
			l.index[id] = l.ops[i]
			return
		}
	}
}

// Get returns a copy of the operation with the given id.
func (l *Log) Get(id string) (models.Operation, bool) {
	op, ok := l.index[id]
	if !ok {
		return models.Operation{}, false
	}
	return op.Clone(), true
}

// Snapshot deep-copies the log in order.
func (l *Log) Snapshot() []models.Operation {
	out := make([]models.Operation, len(l.ops))
	for i, op := range l.ops {
		out[i] = op.Clone()
	}
	return out
}

func (l *Log) Len() int { return len(l.ops) }
