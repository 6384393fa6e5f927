// Package history implements global undo and redo over the operation log.
//
// Undo always removes the newest operation, whoever drew it. Redo appends an
// operation at the tail; it never restores the original position. What redo
// accepts depends on the Policy.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/sketchboard/internal/board/models"
	"github.com/dmitrijs2005/sketchboard/internal/common"
)

// Policy selects how redo payloads are validated.
type Policy string

const (
	// PolicyTrusted appends whatever operation the client supplies. Clients
	// track their own redo stacks, so this lets a client inject arbitrary
	// operations through redo. Meant for trusted peers.
	PolicyTrusted Policy = "trusted"

	// PolicyVerified only reinstates operations the server itself removed
	// through undo, and only when the supplied copy matches exactly.
	PolicyVerified Policy = "verified"
)

// ParsePolicy accepts "trusted" and "verified".
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyTrusted, PolicyVerified:
		return p, nil
	default:
		return "", fmt.Errorf("unknown redo policy %q", s)
	}
}

// Log is the part of the operation log the coordinator needs.
type Log interface {
	Append(op models.Operation)
	Pop() (models.Operation, bool)
}

type Coordinator struct {
	log     Log
	policy  Policy
	removed []models.Operation
}

func NewCoordinator(log Log, policy Policy) *Coordinator {
	if policy == "" {
		policy = PolicyTrusted
	}
	return &Coordinator{log: log, policy: policy}
}

func (c *Coordinator) Policy() Policy { return c.policy }

// Undo pops the tail operation. ok is false when the log is empty.
func (c *Coordinator) Undo() (models.Operation, bool) {
	op, ok := c.log.Pop()
	if !ok {
		return models.Operation{}, false
	}
	if c.policy == PolicyVerified {
		c.removed = append(c.removed, op.Clone())
	}
	return op, true
}

// Redo appends op at the tail of the log and returns what was appended.
// Under PolicyVerified a mismatching op yields common.ErrRedoRejected.
func (c *Coordinator) Redo(op models.Operation) (models.Operation, error) {
	if c.policy != PolicyVerified {
		c.log.Append(op)
		return op, nil
	}

	want, err := canonical(op)
	if err != nil {
		return models.Operation{}, fmt.Errorf("%w: %v", common.ErrRedoRejected, err)
	}
	for i := len(c.removed) - 1; i >= 0; i-- {
		cand := c.removed[i]
		if cand.ID != op.ID {
			continue
		}
		got, err := canonical(cand)
		if err != nil || !bytes.Equal(want, got) {
			continue
		}
		c.removed = append(c.removed[:i], c.removed[i+1:]...)
		c.log.Append(cand)
		return cand, nil
	}
	return models.Operation{}, fmt.Errorf("%w: operation %q was not undone", common.ErrRedoRejected, op.ID)
}

// Removed reports how many undone operations are eligible for redo under
// PolicyVerified.
func (c *Coordinator) Removed() int { return len(c.removed) }

func canonical(op models.Operation) ([]byte, error) {
	if len(op.Points) == 0 {
		op.Points = nil
	}
	return json.Marshal(op)
}
