package dxf

// PolylineFlags are the POLYLINE group code 70 bits.
type PolylineFlags int64

const (
	PolylineClosed       PolylineFlags = 1
	PolylineCurveFit     PolylineFlags = 2
	PolylineSplineFit    PolylineFlags = 4
	Polyline3D           PolylineFlags = 8
	PolylineMesh         PolylineFlags = 16
	PolylineMeshClosedN  PolylineFlags = 32
	PolylinePolyface     PolylineFlags = 64
	PolylineLinetypeCont PolylineFlags = 128
)

// VertexFlags are the VERTEX group code 70 bits.
type VertexFlags int64

const (
	VertexCurveFitExtra   VertexFlags = 1
	VertexCurveFitTangent VertexFlags = 2
	VertexSplineFit       VertexFlags = 8
	VertexControlPoint    VertexFlags = 16
	Vertex3D              VertexFlags = 32
	VertexMesh            VertexFlags = 64
	VertexPolyface        VertexFlags = 128
)

// Mode is the polyline variant selected by its flags.
type Mode string

const (
	ModePolyline2D Mode = "polyline2d"
	ModePolyline3D Mode = "polyline3d"
	ModeSpline2D   Mode = "spline2d"
	ModePolymesh   Mode = "polymesh"
	ModePolyface   Mode = "polyface"
)

var (
	polylineSubclasses = []string{"AcDb2dPolyline", "AcDb3dPolyline", "AcDbPolyFaceMesh", "AcDbPolygonMesh"}
	vertexSubclasses   = []string{"AcDb2dVertex", "AcDb3dPolylineVertex", "AcDbPolyFaceMeshVertex", "AcDbPolygonMeshVertex", "AcDbFaceRecord", "AcDbVertex"}
)

// Width is the start and end width of a polyline segment.
type Width struct {
	Start float64
	End   float64
}

// Vertex is one VERTEX entity of a polyline.
type Vertex struct {
	Base
	Location   Vec3
	StartWidth *float64 // nil: inherit the polyline default
	EndWidth   *float64 // nil: inherit the polyline default
	Bulge      float64
	Tangent    *float64 // curve-fit tangent direction in degrees
	Flags      VertexFlags
	Indices    [4]int // polyface vertex indices (71-74)
}

func (v *Vertex) Kind() EntityKind { return EntityVertex }

// IsControlPoint reports whether v is a spline frame control point.
func (v *Vertex) IsControlPoint() bool { return v.Flags&VertexControlPoint != 0 }

// IsFitPoint reports whether v was created by spline fitting.
func (v *Vertex) IsFitPoint() bool { return v.Flags&VertexSplineFit != 0 }

// NewVertex builds a vertex from its classified tags.
func NewVertex(ct *ClassifiedTags, version string) *Vertex {
	v := &Vertex{Base: newBase(ct)}
	tags := attribs(ct, version, vertexSubclasses...)
	v.Location = readPoint(tags, CodeX)
	v.Bulge = tags.GetFloat(CodeBulge, 0)
	v.Flags = VertexFlags(tags.GetInt(CodeFlags, 0))
	if t, ok := tags.Find(CodeStartWidth); ok {
		w := t.Value.AsFloat()
		v.StartWidth = &w
	}
	if t, ok := tags.Find(CodeEndWidth); ok {
		w := t.Value.AsFloat()
		v.EndWidth = &w
	}
	if t, ok := tags.Find(CodeTangent); ok {
		a := t.Value.AsFloat()
		v.Tangent = &a
	}
	for i := range v.Indices {
		v.Indices[i] = int(tags.GetInt(71+i, 0))
	}
	return v
}

// Polyline is a POLYLINE entity with its vertices.
//
// Width and Bulge always have one entry per vertex.
type Polyline struct {
	Base
	Flags             PolylineFlags
	DefaultStartWidth float64
	DefaultEndWidth   float64
	Elevation         Vec3
	SplineTypeCode    int64
	MCount            int
	NCount            int
	Vertices          []*Vertex
	Width             []Width
	Bulge             []float64
	Spline            *Spline // set by Finish for ModeSpline2D
	SeqEnd            *SeqEnd
}

func (p *Polyline) Kind() EntityKind { return EntityPolyline }

// NewPolyline builds a polyline header from its classified tags.
// Vertices are added with AppendVertex.
func NewPolyline(ct *ClassifiedTags, version string) *Polyline {
	p := &Polyline{Base: newBase(ct)}
	tags := attribs(ct, version, polylineSubclasses...)
	p.Flags = PolylineFlags(tags.GetInt(CodeFlags, 0))
	p.DefaultStartWidth = tags.GetFloat(CodeStartWidth, 0)
	p.DefaultEndWidth = tags.GetFloat(CodeEndWidth, 0)
	p.Elevation = readPoint(tags, CodeX)
	p.SplineTypeCode = tags.GetInt(CodeSplineType, 0)
	p.MCount = int(tags.GetInt(71, 0))
	p.NCount = int(tags.GetInt(72, 0))
	return p
}

// Mode returns the polyline variant.
func (p *Polyline) Mode() Mode {
	switch {
	case p.Flags&PolylinePolyface != 0:
		return ModePolyface
	case p.Flags&PolylineMesh != 0:
		return ModePolymesh
	case p.Flags&Polyline3D != 0:
		return ModePolyline3D
	case p.Flags&PolylineSplineFit != 0:
		return ModeSpline2D
	default:
		return ModePolyline2D
	}
}

// IsClosed reports whether the closed bit is set.
func (p *Polyline) IsClosed() bool { return p.Flags&PolylineClosed != 0 }

// IsCurveFit reports whether curve-fit vertices were added.
func (p *Polyline) IsCurveFit() bool { return p.Flags&PolylineCurveFit != 0 }

// IsSplineFit reports whether spline-fit vertices were added.
func (p *Polyline) IsSplineFit() bool { return p.Flags&PolylineSplineFit != 0 }

// Len returns the vertex count.
func (p *Polyline) Len() int { return len(p.Vertices) }

// Points returns the vertex locations.
func (p *Polyline) Points() []Vec3 {
	pts := make([]Vec3, len(p.Vertices))
	for i, v := range p.Vertices {
		pts[i] = v.Location
	}
	return pts
}

// AppendVertex adds a vertex and its resolved width and bulge.
// Missing widths fall back to the polyline defaults, start and end
// independently.
func (p *Polyline) AppendVertex(v *Vertex) {
	w := Width{Start: p.DefaultStartWidth, End: p.DefaultEndWidth}
	if v.StartWidth != nil {
		w.Start = *v.StartWidth
	}
	if v.EndWidth != nil {
		w.End = *v.EndWidth
	}
	p.Vertices = append(p.Vertices, v)
	p.Width = append(p.Width, w)
	p.Bulge = append(p.Bulge, v.Bulge)
}

// Finish completes the polyline after its last vertex and derives the
// spline of a spline-fit 2D polyline.
func (p *Polyline) Finish() error {
	if p.Mode() != ModeSpline2D {
		return nil
	}
	s, err := DeriveSpline(p)
	if err != nil {
		return err
	}
	p.Spline = s
	return nil
}

// BuildPolyline builds a complete polyline from its own classified tags and
// those of its VERTEX entities. Runs of other types are ignored.
func BuildPolyline(header *ClassifiedTags, vertices []*ClassifiedTags, version string) (*Polyline, error) {
	p := NewPolyline(header, version)
	for _, ct := range vertices {
		if typ, err := ct.GetType(); err != nil || KindOf(typ) != EntityVertex {
			continue
		}
		p.AppendVertex(NewVertex(ct, version))
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return p, nil
}
