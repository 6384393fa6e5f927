package protocol

import "github.com/dmitrijs2005/sketchboard/internal/board/models"

// Identity tells a new connection who it is.
type Identity struct {
	ID    string `json:"id"`
	Color string `json:"color"`
	Name  string `json:"name"`
}

// Snapshot is the full board state handed to a new connection.
type Snapshot struct {
	Users   []models.User      `json:"users"`
	History []models.Operation `json:"history"`
}

type UserLeft struct {
	UserID string `json:"userId"`
}

// StrokeStart carries a new operation. The server stamps the timestamp.
type StrokeStart struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Kind        models.Kind    `json:"kind"`
	Points      []models.Point `json:"points"`
	Color       string         `json:"color"`
	StrokeWidth float64        `json:"strokeWidth"`
}

// Operation builds the log entry for this stroke.
func (s StrokeStart) Operation(sender string, now int64) models.Operation {
	op := models.Operation{
		ID:          s.ID,
		UserID:      s.UserID,
		Kind:        s.Kind,
		Points:      s.Points,
		Color:       s.Color,
		StrokeWidth: s.StrokeWidth,
		Timestamp:   now,
	}
	if op.UserID == "" {
		op.UserID = sender
	}
	if op.Kind == "" {
		op.Kind = models.KindDraw
	}
	return op
}

type StrokePoints struct {
	OperationID string         `json:"operationId"`
	Points      []models.Point `json:"points"`
}

type StrokeEnd struct {
	OperationID string `json:"operationId"`
}

// ErasePoint is an eraser sample. Radius may be omitted.
type ErasePoint struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Radius *float64 `json:"radius,omitempty"`
}

// Erase starts an erase operation. A missing timestamp is stamped with the
// server clock when the operation is recorded.
type Erase struct {
	OperationID string       `json:"operationId"`
	Points      []ErasePoint `json:"points"`
	Timestamp   int64        `json:"timestamp,omitempty"`
}

// Operation builds the erase log entry. The stroke width is the first
// point's radius, or models.DefaultEraseRadius when there is none. Each
// point keeps its own radius.
func (e Erase) Operation(sender string, now int64) models.Operation {
	width := models.DefaultEraseRadius
	if len(e.Points) > 0 && e.Points[0].Radius != nil {
		width = *e.Points[0].Radius
	}
	pts := make([]models.Point, len(e.Points))
	for i, p := range e.Points {
		pts[i] = models.Point{X: p.X, Y: p.Y}
		if p.Radius != nil {
			r := *p.Radius
			pts[i].Radius = &r
		}
	}
	ts := e.Timestamp
	if ts == 0 {
		ts = now
	}
	return models.Operation{
		ID:          e.OperationID,
		UserID:      sender,
		Kind:        models.KindErase,
		Points:      pts,
		Color:       models.EraseColor,
		StrokeWidth: width,
		Timestamp:   ts,
	}
}

// CursorMove is the inbound cursor position.
type CursorMove = models.Cursor

// CursorUpdate is relayed so receivers can label the cursor without a lookup.
type CursorUpdate struct {
	UserID string        `json:"userId"`
	Cursor models.Cursor `json:"cursor"`
	User   models.Public `json:"user"`
}

type Undo struct {
	OperationID string `json:"operationId"`
}

type Redo struct {
	Operation *models.Operation `json:"operation"`
}
