package geom

// Envelope is an axis-aligned bounding box.
type Envelope struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewEnvelope returns the envelope spanning the two corner points in any
// order.
func NewEnvelope(x1, y1, x2, y2 float64) Envelope {
	e := Envelope{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}
	if e.MinX > e.MaxX {
		e.MinX, e.MaxX = e.MaxX, e.MinX
	}
	if e.MinY > e.MaxY {
		e.MinY, e.MaxY = e.MaxY, e.MinY
	}
	return e
}

// Intersects reports whether the two envelopes share any area or edge.
func (e Envelope) Intersects(o Envelope) bool {
	return e.MinX <= o.MaxX && e.MaxX >= o.MinX &&
		e.MinY <= o.MaxY && e.MaxY >= o.MinY
}

// Contains reports whether o lies entirely inside e.
func (e Envelope) Contains(o Envelope) bool {
	return e.MinX <= o.MinX && e.MaxX >= o.MaxX &&
		e.MinY <= o.MinY && e.MaxY >= o.MaxY
}

// Expand grows the envelope by d on every side.
func (e Envelope) Expand(d float64) Envelope {
	return Envelope{
		MinX: e.MinX - d,
		MinY: e.MinY - d,
		MaxX: e.MaxX + d,
		MaxY: e.MaxY + d,
	}
}

// Extend returns the envelope covering both e and o.
func (e Envelope) Extend(o Envelope) Envelope {
	if o.MinX < e.MinX {
		e.MinX = o.MinX
	}
	if o.MinY < e.MinY {
		e.MinY = o.MinY
	}
	if o.MaxX > e.MaxX {
		e.MaxX = o.MaxX
	}
	if o.MaxY > e.MaxY {
		e.MaxY = o.MaxY
	}
	return e
}

// Center returns the envelope midpoint, used for error geolocation.
func (e Envelope) Center() (x, y float64) {
	return (e.MinX + e.MaxX) / 2, (e.MinY + e.MaxY) / 2
}

// Width returns the X extent.
func (e Envelope) Width() float64 { return e.MaxX - e.MinX }

// Height returns the Y extent.
func (e Envelope) Height() float64 { return e.MaxY - e.MinY }
