package dxf

import (
	"sync"
)

// Options configures ReadEntities.
type Options struct {
	// Version is the $ACADVER of the drawing. Empty means read it from the
	// HEADER section, falling back to LegacyVersion.
	Version string
	// SkipInvalid records per-entity errors in Section.Errors and skips the
	// entity instead of failing the whole section.
	SkipInvalid bool
	// Workers classifies entity runs on this many goroutines when > 1.
	Workers int
}

// Section is the parsed ENTITIES section.
type Section struct {
	Version  string
	Entities []Entity
	Errors   []*EntityError
}

// Polylines returns the polyline entities.
func (s *Section) Polylines() []*Polyline {
	var out []*Polyline
	for _, e := range s.Entities {
		if p, ok := e.(*Polyline); ok {
			out = append(out, p)
		}
	}
	return out
}

// ReadEntities builds the entities of a tokenized drawing. tags may be a
// whole document or the bare content of an ENTITIES section.
func ReadEntities(tags Tags, opts Options) (*Section, error) {
	version := opts.Version
	if version == "" {
		version = HeaderVersion(tags)
	}
	if version == "" {
		version = LegacyVersion
	}

	runs := SplitEntities(EntitiesSection(tags))
	classified, errs := classifyRuns(runs, opts.Workers)

	b := &sectionBuilder{
		sec:        &Section{Version: version},
		runs:       runs,
		classified: classified,
		errs:       errs,
		skip:       opts.SkipInvalid,
	}
	if err := b.build(); err != nil {
		return nil, err
	}
	return b.sec, nil
}

// HeaderVersion returns the $ACADVER header variable, or "" if absent.
func HeaderVersion(tags Tags) string {
	for i := 0; i+1 < len(tags); i++ {
		if tags[i].Code == CodeVariable && tags[i].Value.AsString() == "$ACADVER" {
			if tags[i+1].Code == 1 {
				return tags[i+1].Value.AsString()
			}
			return ""
		}
	}
	return ""
}

// EntitiesSection returns the tags between (0, SECTION) (2, ENTITIES) and
// the next (0, ENDSEC). Input without any SECTION marker is returned as is.
func EntitiesSection(tags Tags) Tags {
	sawSection := false
	for i := 0; i < len(tags); i++ {
		if !isStructure(tags[i], "SECTION") {
			continue
		}
		sawSection = true
		if i+1 >= len(tags) || tags[i+1].Code != CodeName || tags[i+1].Value.AsString() != "ENTITIES" {
			continue
		}
		start := i + 2
		for j := start; j < len(tags); j++ {
			if isStructure(tags[j], "ENDSEC") {
				return tags[start:j]
			}
		}
		return tags[start:]
	}
	if sawSection {
		return nil
	}
	return tags
}

func isStructure(t Tag, name string) bool {
	return t.Code == CodeStructure && t.Value.AsString() == name
}

// SplitEntities splits tags into runs that each start with a code 0 tag.
// Tags before the first code 0 tag form their own run.
func SplitEntities(tags Tags) []Tags {
	var runs []Tags
	start := 0
	for i := 1; i <= len(tags); i++ {
		if i == len(tags) || tags[i].Code == CodeStructure {
			if i > start {
				runs = append(runs, tags[start:i])
			}
			start = i
		}
	}
	return runs
}

// classifyRuns classifies each run; results are indexed like runs.
func classifyRuns(runs []Tags, workers int) ([]*ClassifiedTags, []error) {
	classified := make([]*ClassifiedTags, len(runs))
	errs := make([]error, len(runs))
	if workers <= 1 || len(runs) < 2 {
		for i, run := range runs {
			classified[i], errs[i] = Classify(run)
		}
		return classified, errs
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(workers, len(runs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				classified[i], errs[i] = Classify(runs[i])
			}
		}()
	}
	for i := range runs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return classified, errs
}

type sectionBuilder struct {
	sec        *Section
	runs       []Tags
	classified []*ClassifiedTags
	errs       []error
	skip       bool
	pos        int
}

// fail records err for run i, or returns it when invalid entities are not skipped.
func (b *sectionBuilder) fail(i int, err error) error {
	e := &EntityError{Index: i, Type: runType(b.runs[i]), Err: err}
	if !b.skip {
		return e
	}
	b.sec.Errors = append(b.sec.Errors, e)
	return nil
}

func runType(run Tags) string {
	if len(run) > 0 && run[0].Code == CodeStructure {
		return run[0].Value.AsString()
	}
	return ""
}

func (b *sectionBuilder) build() error {
	for b.pos < len(b.runs) {
		i := b.pos
		b.pos++
		if run := b.runs[i]; len(run) > 0 && run[0].Code != CodeStructure {
			if err := b.fail(i, &StructureError{Reason: "tags outside an entity", Tag: run[0], Index: 0}); err != nil {
				return err
			}
			continue
		}
		if b.errs[i] != nil {
			if err := b.fail(i, b.errs[i]); err != nil {
				return err
			}
			continue
		}
		e, err := BuildEntity(b.classified[i], b.sec.Version)
		if err != nil {
			if err := b.fail(i, err); err != nil {
				return err
			}
			continue
		}
		if p, ok := e.(*Polyline); ok {
			if err := b.collectVertices(p); err != nil {
				return err
			}
			if err := p.Finish(); err != nil {
				if err := b.fail(i, err); err != nil {
					return err
				}
				continue
			}
		}
		b.sec.Entities = append(b.sec.Entities, e)
	}
	return nil
}

// collectVertices attaches the VERTEX runs following p up to and including
// SEQEND. A vertex that fails to classify is reported on its own and the
// sequence continues. The returned error aborts the section.
func (b *sectionBuilder) collectVertices(p *Polyline) error {
	for b.pos < len(b.runs) {
		i := b.pos
		kind := KindOf(runType(b.runs[i]))
		if kind != EntityVertex && kind != EntitySeqEnd {
			break
		}
		b.pos++
		if b.errs[i] != nil {
			if err := b.fail(i, b.errs[i]); err != nil {
				return err
			}
			continue
		}
		ct := b.classified[i]
		if kind == EntitySeqEnd {
			p.SeqEnd = &SeqEnd{Base: newBase(ct)}
			break
		}
		p.AppendVertex(NewVertex(ct, b.sec.Version))
	}
	return nil
}
