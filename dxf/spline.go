package dxf

import "fmt"

// SplineType is the POLYLINE group code 75 smooth surface type.
type SplineType int64

const (
	SplineQuadratic SplineType = 5
	SplineCubic     SplineType = 6
)

// String returns the spline type name.
func (t SplineType) String() string {
	switch t {
	case SplineQuadratic:
		return "quadratic_bspline"
	case SplineCubic:
		return "cubic_bspline"
	default:
		return fmt.Sprintf("unknown(%d)", int64(t))
	}
}

// Degree returns the B-spline degree.
func (t SplineType) Degree() int {
	switch t {
	case SplineQuadratic:
		return 2
	case SplineCubic:
		return 3
	default:
		return 0
	}
}

// ParseSplineType validates a group code 75 value.
func ParseSplineType(code int64) (SplineType, bool) {
	switch t := SplineType(code); t {
	case SplineQuadratic, SplineCubic:
		return t, true
	default:
		return 0, false
	}
}

// SamplesPerSegment is the number of curve samples per control point span.
const SamplesPerSegment = 10

// Spline is the curve of a spline-fit 2D polyline.
type Spline struct {
	Type          SplineType
	Closed        bool
	Points        []Vec3    // sampled curve positions
	Tangents      []Vec3    // unit tangent at each sample
	ControlPoints []*Vertex // frame control points, in vertex order
	FitPoints     []*Vertex // vertices generated by the writing application
}

// DeriveSpline samples the uniform B-spline defined by the control point
// vertices of p. Closed curves wrap around the control points; open curves
// repeat the end points so the curve starts and ends on them.
func DeriveSpline(p *Polyline) (*Spline, error) {
	typ, ok := ParseSplineType(p.SplineTypeCode)
	if !ok {
		return nil, &DataError{Entity: p.TypeName, Handle: p.Handle, Reason: fmt.Sprintf("unsupported spline type %d", p.SplineTypeCode)}
	}
	s := &Spline{Type: typ, Closed: p.IsClosed()}
	for _, v := range p.Vertices {
		switch {
		case v.IsControlPoint():
			s.ControlPoints = append(s.ControlPoints, v)
		case v.IsFitPoint():
			s.FitPoints = append(s.FitPoints, v)
		}
	}
	if len(s.ControlPoints) < 2 {
		return nil, &DataError{Entity: p.TypeName, Handle: p.Handle, Reason: fmt.Sprintf("spline needs at least 2 control points, got %d", len(s.ControlPoints))}
	}
	ctrl := make([]Vec3, len(s.ControlPoints))
	for i, v := range s.ControlPoints {
		ctrl[i] = v.Location
	}
	s.Points, s.Tangents = sampleBSpline(ctrl, typ.Degree(), s.Closed, SamplesPerSegment)
	return s, nil
}

// sampleBSpline evaluates a uniform B-spline of the given degree.
// Segment s is controlled by points s..s+degree.
func sampleBSpline(ctrl []Vec3, degree int, closed bool, density int) ([]Vec3, []Vec3) {
	n := len(ctrl)
	at := func(j int) Vec3 {
		if closed {
			return ctrl[((j%n)+n)%n]
		}
		return ctrl[min(max(j, 0), n-1)]
	}

	first, segments := 0, n
	if !closed {
		first, segments = 1-degree, n+degree-2
	}
	size := segments * density
	if !closed {
		size++
	}
	points := make([]Vec3, 0, size)
	tangents := make([]Vec3, 0, size)

	for s := 0; s < segments; s++ {
		steps := density
		if !closed && s == segments-1 {
			steps++ // end point
		}
		for k := 0; k < steps; k++ {
			u := float64(k) / float64(density)
			b, d := basis(degree, u)
			var pt, dt Vec3
			for i := 0; i <= degree; i++ {
				c := at(first + s + i)
				pt = pt.Add(c.Scale(b[i]))
				dt = dt.Add(c.Scale(d[i]))
			}
			points = append(points, pt)
			tangents = append(tangents, dt.Normalize())
		}
	}

	// Clamped ends have a vanishing derivative; use the chord direction.
	last := len(points) - 1
	for i, t := range tangents {
		if t != (Vec3{}) {
			continue
		}
		switch {
		case i < last:
			tangents[i] = points[i+1].Sub(points[i]).Normalize()
		case i > 0:
			tangents[i] = points[i].Sub(points[i-1]).Normalize()
		}
	}
	return points, tangents
}

// basis returns the uniform B-spline basis weights and their derivatives
// at u in [0, 1].
func basis(degree int, u float64) (b, d [4]float64) {
	switch degree {
	case 2:
		b[0] = (1 - u) * (1 - u) / 2
		b[1] = (-2*u*u + 2*u + 1) / 2
		b[2] = u * u / 2
		d[0] = u - 1
		d[1] = 1 - 2*u
		d[2] = u
	case 3:
		v := 1 - u
		b[0] = v * v * v / 6
		b[1] = (3*u*u*u - 6*u*u + 4) / 6
		b[2] = (-3*u*u*u + 3*u*u + 3*u + 1) / 6
		b[3] = u * u * u / 6
		d[0] = -v * v / 2
		d[1] = (3*u*u - 4*u) / 2
		d[2] = (-3*u*u + 2*u + 1) / 2
		d[3] = u * u / 2
	}
	return b, d
}
