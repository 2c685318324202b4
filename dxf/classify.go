package dxf

import (
	"iter"
	"strings"
)

// ClassifiedTags is one entity's tag run split into subclasses,
// application-defined data and extended data.
//
// Subclasses[0] is the no-class prefix and always exists in values returned
// by Classify. Appdata blocks are stored once in AppData and referenced from
// their owning group by a placeholder tag (CodeAppData, Int(index)). A
// ClassifiedTags is read-only after Classify returns.
type ClassifiedTags struct {
	Subclasses []Tags
	AppData    []Tags
	XData      []Tags
}

// Classify builds a ClassifiedTags from one entity's tag run.
//
// The run is read in a single pass: no-class tags, then subclass groups, then
// xdata groups. Appdata blocks may appear inside the no-class prefix or a
// subclass. Inside an xdata group every tag up to the next xdata marker is
// plain data.
func Classify(tags []Tag) (*ClassifiedTags, error) {
	c := &classifier{tags: tags, ct: &ClassifiedTags{}}
	return c.run()
}

type classifier struct {
	tags []Tag
	pos  int
	ct   *ClassifiedTags
}

func (c *classifier) next() (Tag, bool) {
	if c.pos >= len(c.tags) {
		return NoneTag, false
	}
	t := c.tags[c.pos]
	c.pos++
	return t, true
}

func (c *classifier) run() (*ClassifiedTags, error) {
	tag, more, err := c.collectSubclass(nil)
	if err != nil {
		return nil, err
	}
	for more && tag.Code == CodeSubclass {
		tag, more, err = c.collectSubclass(&tag)
		if err != nil {
			return nil, err
		}
	}
	for more && tag.Code == CodeXData {
		tag, more = c.collectXData(tag)
	}
	if more {
		return nil, &StructureError{Reason: "unexpected trailing tag", Tag: tag, Index: c.pos - 1}
	}
	return c.ct, nil
}

// collectSubclass collects one group (the no-class prefix when start is nil)
// and returns the subclass or xdata marker that ended it.
func (c *classifier) collectSubclass(start *Tag) (Tag, bool, error) {
	var data Tags
	if start != nil {
		data = Tags{*start}
	} else {
		data = Tags{}
	}
	for {
		tag, ok := c.next()
		if !ok {
			c.ct.Subclasses = append(c.ct.Subclasses, data)
			return NoneTag, false, nil
		}
		switch {
		case IsAppDataPlaceholder(tag):
			return NoneTag, false, c.badMarker(tag)
		case isAppDataOpen(tag):
			data = append(data, placeholder(len(c.ct.AppData)))
			if err := c.collectAppData(tag); err != nil {
				return NoneTag, false, err
			}
		case tag.Code == CodeSubclass || tag.Code == CodeXData:
			c.ct.Subclasses = append(c.ct.Subclasses, data)
			return tag, true, nil
		default:
			data = append(data, tag)
		}
	}
}

// collectAppData collects an appdata block up to and including its closing
// marker. Subclass and xdata markers inside the block are plain data.
func (c *classifier) collectAppData(start Tag) error {
	data := Tags{start}
	for {
		tag, ok := c.next()
		if !ok {
			return &StructureError{Reason: "missing closing appdata marker for " + start.Value.AsString(), Index: -1}
		}
		if isAppDataOpen(tag) {
			return &StructureError{Reason: "nested appdata block", Tag: tag, Index: c.pos - 1}
		}
		if IsAppDataPlaceholder(tag) {
			return c.badMarker(tag)
		}
		data = append(data, tag)
		if tag.Code == CodeAppData {
			break
		}
	}
	c.ct.AppData = append(c.ct.AppData, data)
	return nil
}

func (c *classifier) collectXData(start Tag) (Tag, bool) {
	data := Tags{start}
	for {
		tag, ok := c.next()
		if !ok {
			c.ct.XData = append(c.ct.XData, data)
			return NoneTag, false
		}
		if tag.Code == CodeXData {
			c.ct.XData = append(c.ct.XData, data)
			return tag, true
		}
		data = append(data, tag)
	}
}

// badMarker rejects a non-string appdata marker, which would be
// indistinguishable from a placeholder.
func (c *classifier) badMarker(tag Tag) error {
	return &StructureError{Reason: "appdata marker is not a string", Tag: tag, Index: c.pos - 1}
}

func isAppDataOpen(t Tag) bool {
	return t.Code == CodeAppData && t.Value.Kind() == KindString && strings.HasPrefix(t.Value.AsString(), "{")
}

func placeholder(index int) Tag {
	return Tag{Code: CodeAppData, Value: Int(int64(index))}
}

// IsAppDataPlaceholder reports whether t stands in for an AppData entry.
func IsAppDataPlaceholder(t Tag) bool {
	return t.Code == CodeAppData && t.Value.Kind() == KindInt
}

// ============================================================
// Accessors
// ============================================================

// NoClass returns the tags before the first subclass marker. It is nil for
// a zero ClassifiedTags.
func (ct *ClassifiedTags) NoClass() Tags {
	if len(ct.Subclasses) == 0 {
		return nil
	}
	return ct.Subclasses[0]
}

// GetSubclass returns the first group whose first tag value equals name.
func (ct *ClassifiedTags) GetSubclass(name string) (Tags, error) {
	for _, sc := range ct.Subclasses {
		if len(sc) > 0 && sc.Name() == name {
			return sc, nil
		}
	}
	return nil, &LookupError{Group: "subclass", Name: name}
}

// FirstSubclass returns the first group matching any of names, in the order
// the names are given.
func (ct *ClassifiedTags) FirstSubclass(names ...string) (Tags, error) {
	for _, name := range names {
		if sc, err := ct.GetSubclass(name); err == nil {
			return sc, nil
		}
	}
	return nil, &LookupError{Group: "subclass", Name: strings.Join(names, "|")}
}

// GetAppData returns the appdata block opened by name, e.g. "{ACAD_REACTORS".
func (ct *ClassifiedTags) GetAppData(name string) (Tags, error) {
	for _, ad := range ct.AppData {
		if ad.Name() == name {
			return ad, nil
		}
	}
	return nil, &LookupError{Group: "appdata", Name: name}
}

// GetXData returns the extended data owned by appid.
func (ct *ClassifiedTags) GetXData(appid string) (Tags, error) {
	for _, xd := range ct.XData {
		if xd.Name() == appid {
			return xd, nil
		}
	}
	return nil, &LookupError{Group: "xdata", Name: appid}
}

// GetType returns the entity type, the value of the first no-class tag.
func (ct *ClassifiedTags) GetType() (string, error) {
	nc := ct.NoClass()
	if len(nc) == 0 {
		return "", &LookupError{Group: "type"}
	}
	return nc.Name(), nil
}

// All yields the tags in their original order, expanding appdata
// placeholders in place. It does not modify ct and may be ranged over
// any number of times.
func (ct *ClassifiedTags) All() iter.Seq[Tag] {
	return func(yield func(Tag) bool) {
		for _, sc := range ct.Subclasses {
			for _, tag := range sc {
				if IsAppDataPlaceholder(tag) {
					for _, sub := range ct.AppData[tag.Value.AsInt()] {
						if !yield(sub) {
							return
						}
					}
					continue
				}
				if !yield(tag) {
					return
				}
			}
		}
		for _, xd := range ct.XData {
			for _, tag := range xd {
				if !yield(tag) {
					return
				}
			}
		}
	}
}

// Tags returns the reconstructed tag run as a new slice.
func (ct *ClassifiedTags) Tags() Tags {
	out := make(Tags, 0, ct.Len())
	for tag := range ct.All() {
		out = append(out, tag)
	}
	return out
}

// Len returns the number of tags All yields.
func (ct *ClassifiedTags) Len() int {
	n := 0
	for _, sc := range ct.Subclasses {
		for _, tag := range sc {
			if IsAppDataPlaceholder(tag) {
				n += len(ct.AppData[tag.Value.AsInt()])
			} else {
				n++
			}
		}
	}
	for _, xd := range ct.XData {
		n += len(xd)
	}
	return n
}

// SubclassNames returns the names of all subclass groups after the no-class prefix.
func (ct *ClassifiedTags) SubclassNames() []string {
	if len(ct.Subclasses) < 2 {
		return []string{}
	}
	names := make([]string, 0, len(ct.Subclasses)-1)
	for _, sc := range ct.Subclasses[1:] {
		names = append(names, sc.Name())
	}
	return names
}

// Equal reports whether ct and other hold the same groups.
func (ct *ClassifiedTags) Equal(other *ClassifiedTags) bool {
	return groupsEqual(ct.Subclasses, other.Subclasses) &&
		groupsEqual(ct.AppData, other.AppData) &&
		groupsEqual(ct.XData, other.XData)
}

func groupsEqual(a, b []Tags) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}
