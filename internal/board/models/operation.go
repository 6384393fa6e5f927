package models

// Kind tells renderers whether an operation adds or removes ink.
type Kind string

const (
	KindDraw  Kind = "draw"
	KindErase Kind = "erase"
)

// EraseColor is stamped on every erase operation regardless of the color the
// eraser was showing on the client.
const EraseColor = "#FFFFFF"

// DefaultEraseRadius is used when an erase event carries no radius.
const DefaultEraseRadius = 20.0

// Point is one sample of a stroke. Pressure and Radius are optional; Radius
// is only set on erase samples.
type Point struct {
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Pressure *float64 `json:"pressure,omitempty"`
	Radius   *float64 `json:"radius,omitempty"`
}

// Operation is one drawing or erasing action. Points keep growing while the
// stroke is open. Timestamp is unix milliseconds.
type Operation struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Kind        Kind    `json:"kind"`
	Points      []Point `json:"points"`
	Color       string  `json:"color"`
	StrokeWidth float64 `json:"strokeWidth"`
	Timestamp   int64   `json:"timestamp"`
}

// Clone returns a deep copy so snapshots can leave the event loop safely.
func (o Operation) Clone() Operation {
	if o.Points != nil {
		pts := make([]Point, len(o.Points))
		for i, p := range o.Points {
			p.Pressure = cloneFloat(p.Pressure)
			p.Radius = cloneFloat(p.Radius)
			pts[i] = p
		}
		o.Points = pts
	}
	return o
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
