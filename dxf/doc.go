// Package dxf reads DXF drawing data as a flat stream of (group code, value)
// tags and rebuilds it into structured, queryable entities.
//
// # Tags
//
// A Tag is a group code plus a typed scalar. The group code's numeric range
// determines the value type (see TypeOf):
//
//	0-9      string   (0 = entity type, 2 = name, 5 = handle, 8 = layer)
//	10-59    float    (10/20/30 = x/y/z, 40/41 = widths, 42 = bulge)
//	60-99    int      (70 = flags, 75 = spline type)
//	100      string   subclass marker
//	102      string   application-defined data marker ("{NAME" ... "}")
//	1001     string   extended data marker (application ID)
//
// # Classification
//
// Classify splits one entity's tag run into three parts:
//   - Subclasses: Subclasses[0] is the no-class prefix, every further group
//     starts with a (100, name) tag
//   - AppData: (102, "{NAME") ... (102, "}") blocks, replaced in their owning
//     group by a placeholder tag (102, <index>)
//   - XData: trailing (1001, appid) groups
//
// ClassifiedTags.All reconstructs the original run in order, expanding
// placeholders in place.
//
// # Entities
//
// ReadEntities drives a whole ENTITIES section: it classifies each run,
// dispatches on the entity type and folds VERTEX/SEQEND runs into their
// POLYLINE. Spline-fit 2D polylines get a sampled uniform B-spline:
//
//	sec, err := dxf.ReadEntities(tags, dxf.Options{})
//	for _, e := range sec.Entities {
//	    if pl, ok := e.(*dxf.Polyline); ok && pl.Spline != nil {
//	        fmt.Println(pl.Spline.Type, len(pl.Spline.Points))
//	    }
//	}
package dxf
