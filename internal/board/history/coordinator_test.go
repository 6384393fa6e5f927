package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sketchboard/internal/board/models"
	"github.com/dmitrijs2005/sketchboard/internal/board/oplog"
	"github.com/dmitrijs2005/sketchboard/internal/common"
)

func stroke(id, user string) models.Operation {
	return models.Operation{
		ID:          id,
		UserID:      user,
		Kind:        models.KindDraw,
		Points:      []models.Point{{X: 1, Y: 2}},
		Color:       "#111111",
		StrokeWidth: 3,
		Timestamp:   1700000000000,
	}
}

func ids(l *oplog.Log) []string {
	var out []string
	for _, op := range l.Snapshot() {
		out = append(out, op.ID)
	}
	return out
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("trusted")
	require.NoError(t, err)
	assert.Equal(t, PolicyTrusted, p)

	p, err = ParsePolicy("verified")
	require.NoError(t, err)
	assert.Equal(t, PolicyVerified, p)

	_, err = ParsePolicy("strict")
	assert.Error(t, err)
}

func TestNewCoordinator_DefaultsToTrusted(t *testing.T) {
	assert.Equal(t, PolicyTrusted, NewCoordinator(oplog.New(), "").Policy())
}

func TestUndo_EmptyLog(t *testing.T) {
	c := NewCoordinator(oplog.New(), PolicyTrusted)
	_, ok := c.Undo()
	assert.False(t, ok)
}

func TestUndo_IsGlobal(t *testing.T) {
	l := oplog.New()
	l.Append(stroke("a1", "alice"))
	l.Append(stroke("b1", "bob"))
	c := NewCoordinator(l, PolicyTrusted)

	op, ok := c.Undo()
	require.True(t, ok)
	assert.Equal(t, "b1", op.ID, "undo removes the tail no matter who drew it")
	assert.Equal(t, []string{"a1"}, ids(l))
}

func TestTrusted_UndoRedoRestoresLengthAtTail(t *testing.T) {
	l := oplog.New()
	l.Append(stroke("a", "u"))
	l.Append(stroke("b", "u"))
	c := NewCoordinator(l, PolicyTrusted)

	undone, ok := c.Undo()
	require.True(t, ok)
	l.Append(stroke("c", "u"))

	redone, err := c.Redo(undone)
	require.NoError(t, err)
	assert.Equal(t, undone, redone)
	assert.Equal(t, []string{"a", "c", "b"}, ids(l))
}

func TestTrusted_AcceptsArbitraryOperation(t *testing.T) {
	l := oplog.New()
	c := NewCoordinator(l, PolicyTrusted)

	_, err := c.Redo(stroke("never-drawn", "mallory"))
	require.NoError(t, err)
	assert.Equal(t, []string{"never-drawn"}, ids(l))
}

func TestVerified_AcceptsMatchingUndone(t *testing.T) {
	l := oplog.New()
	l.Append(stroke("a", "u"))
	c := NewCoordinator(l, PolicyVerified)

	undone, ok := c.Undo()
	require.True(t, ok)
	assert.Equal(t, 1, c.Removed())

	redone, err := c.Redo(undone)
	require.NoError(t, err)
	assert.Equal(t, "a", redone.ID)
	assert.Equal(t, 0, c.Removed())
	assert.Equal(t, []string{"a"}, ids(l))
}

func TestVerified_RejectsUnknownAndTampered(t *testing.T) {
	l := oplog.New()
	l.Append(stroke("a", "u"))
	c := NewCoordinator(l, PolicyVerified)
	undone, _ := c.Undo()

	_, err := c.Redo(stroke("other", "u"))
	assert.ErrorIs(t, err, common.ErrRedoRejected)

	tampered := undone
	tampered.Color = "#FF0000"
	_, err = c.Redo(tampered)
	assert.ErrorIs(t, err, common.ErrRedoRejected)

	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 1, c.Removed())
}

func TestVerified_RedoOnlyOnce(t *testing.T) {
	l := oplog.New()
	l.Append(stroke("a", "u"))
	c := NewCoordinator(l, PolicyVerified)
	undone, _ := c.Undo()

	_, err := c.Redo(undone)
	require.NoError(t, err)
	_, err = c.Redo(undone)
	assert.ErrorIs(t, err, common.ErrRedoRejected)
	assert.Equal(t, 1, l.Len())
}

func TestVerified_EmptyPointsMatchNil(t *testing.T) {
	l := oplog.New()
	op := stroke("a", "u")
	op.Points = nil
	l.Append(op)
	c := NewCoordinator(l, PolicyVerified)
	_, _ = c.Undo()

	op.Points = []models.Point{}
	_, err := c.Redo(op)
	assert.NoError(t, err)
}
