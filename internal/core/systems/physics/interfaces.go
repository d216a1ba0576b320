package physics

// Position sources supplied by collaborators. The spatial index never holds
// on to them; a Transform is read once when a position is harvested.

// Vector3 represents a 3D vector.
type Vector3 interface {
	X() float64
	Y() float64
	Z() float64
}

// Transform provides spatial information for an engine object.
type Transform interface {
	Position3() (x, y, z float64)
}
