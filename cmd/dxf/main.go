// dxf - DXF entity inspection tool
//
// Usage:
//
//	dxf tags [options] [file]        Print the raw group code/value tags
//	dxf classify [options] [file]    Print each entity's classified groups
//	dxf entities [options] [file]    List entities with handle and layer
//	dxf polylines [options] [file]   Print polyline widths, bulges and splines
//	dxf shell [options] [file]       Browse entities interactively
//	dxf digest [options] [file]      Print sha256 digests of the drawing and its entities
//	dxf version                      Print version info
//
// Gzip and zstd compressed input is detected automatically.
// If no file is given, reads from stdin.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Neumenon/dxf/dxf"
	"github.com/Neumenon/dxf/stream"
)

const libVersion = "0.1.0"

type config struct {
	opts   dxf.Options
	raw    bool
	file   string
	maxLen int
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "version", "-v", "--version":
		fmt.Printf("dxf %s\n", libVersion)
		return
	case "help", "-h", "--help":
		printUsage()
		return
	}

	cfg, err := parseArgs(os.Args[2:])
	if err != nil {
		fatal("%v", err)
	}

	tags, err := loadTags(cfg)
	if err != nil {
		fatal("read input: %v", err)
	}

	out := os.Stdout
	switch cmd {
	case "tags":
		cmdTags(out, tags)
	case "classify":
		if err := cmdClassify(out, tags); err != nil {
			fatal("%v", err)
		}
	case "entities":
		sec := readSection(tags, cfg.opts)
		cmdEntities(out, sec)
	case "polylines":
		sec := readSection(tags, cfg.opts)
		cmdPolylines(out, sec)
	case "shell":
		sec := readSection(tags, cfg.opts)
		os.Exit(cmdShell(sec))
	case "digest":
		cmdDigest(out, tags)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `dxf - DXF entity inspection tool

Usage:
  dxf tags [options] [file]        Print the raw group code/value tags
  dxf classify [options] [file]    Print each entity's classified groups
  dxf entities [options] [file]    List entities with handle and layer
  dxf polylines [options] [file]   Print polyline widths, bulges and splines
  dxf shell [options] [file]       Browse entities interactively
  dxf digest [options] [file]      Print sha256 digests of the drawing and its entities
  dxf version                      Print version info

Options:
  --skip-invalid      Record broken entities and keep going
  --workers=N         Classify entities on N goroutines (default: 1)
  --version=ACxxxx    Override the $ACADVER header (AC1009 reads R12 layout)
  --max-line=N        Reject lines longer than N bytes
  --raw               Do not detect gzip/zstd compression

If no file is given, reads from stdin.

Examples:
  dxf entities drawing.dxf
  dxf polylines --skip-invalid drawing.dxf.gz
  cat drawing.dxf | dxf tags
  dxf digest a.dxf.zst && dxf digest b.dxf
`)
}

func parseArgs(args []string) (config, error) {
	var cfg config
	for _, arg := range args {
		switch {
		case arg == "--skip-invalid":
			cfg.opts.SkipInvalid = true
		case arg == "--raw":
			cfg.raw = true
		case strings.HasPrefix(arg, "--workers="):
			n, err := parseIntArg(arg, "--workers=")
			if err != nil {
				return cfg, fmt.Errorf("invalid --workers: %v", err)
			}
			cfg.opts.Workers = n
		case strings.HasPrefix(arg, "--max-line="):
			n, err := parseIntArg(arg, "--max-line=")
			if err != nil {
				return cfg, fmt.Errorf("invalid --max-line: %v", err)
			}
			cfg.maxLen = n
		case strings.HasPrefix(arg, "--version="):
			cfg.opts.Version = strings.ToUpper(strings.TrimPrefix(arg, "--version="))
		case arg == "-":
			cfg.file = ""
		case strings.HasPrefix(arg, "-"):
			return cfg, fmt.Errorf("unknown option: %s", arg)
		default:
			cfg.file = arg
		}
	}
	return cfg, nil
}

func loadTags(cfg config) (dxf.Tags, error) {
	var input io.Reader = os.Stdin
	if cfg.file != "" {
		f, err := os.Open(cfg.file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		input = f
	}

	var opts []stream.ReaderOption
	if cfg.raw {
		opts = append(opts, stream.WithoutDecompression())
	}
	if cfg.maxLen > 0 {
		opts = append(opts, stream.WithMaxLineLength(cfg.maxLen))
	}
	r := stream.NewReader(input, opts...)
	defer r.Close()
	return r.ReadAll()
}

func readSection(tags dxf.Tags, opts dxf.Options) *dxf.Section {
	sec, err := dxf.ReadEntities(tags, opts)
	if err != nil {
		fatal("%v", err)
	}
	for _, e := range sec.Errors {
		fmt.Fprintf(os.Stderr, "dxf: skipped: %v\n", e)
	}
	return sec
}

// cmdTags prints one tag per line.
func cmdTags(w io.Writer, tags dxf.Tags) {
	for _, t := range tags {
		fmt.Fprintf(w, "%5d  %s  %s\n", t.Code, t.Value.Kind(), t.Value)
	}
}

// cmdClassify prints the subclass, appdata and xdata groups of every
// entity in the ENTITIES section.
func cmdClassify(w io.Writer, tags dxf.Tags) error {
	for i, run := range dxf.SplitEntities(dxf.EntitiesSection(tags)) {
		ct, err := dxf.Classify(run)
		if err != nil {
			return &dxf.EntityError{Index: i, Type: run.Name(), Err: err}
		}
		printClassified(w, i, ct)
	}
	return nil
}

func printClassified(w io.Writer, index int, ct *dxf.ClassifiedTags) {
	typ, _ := ct.GetType()
	fmt.Fprintf(w, "[%d] %s\n", index, typ)
	for i, group := range ct.Subclasses {
		name := "<noclass>"
		body := group
		if i > 0 {
			name = group.Name()
			body = group[1:]
		}
		fmt.Fprintf(w, "  subclass %s (%d tags)\n", name, len(body))
		for _, t := range body {
			if dxf.IsAppDataPlaceholder(t) {
				app := ct.AppData[t.Value.AsInt()]
				fmt.Fprintf(w, "    appdata %s (%d tags)\n", app.Name(), len(app)-2)
				continue
			}
			fmt.Fprintf(w, "    %s\n", t)
		}
	}
	for _, group := range ct.XData {
		fmt.Fprintf(w, "  xdata %s (%d tags)\n", group.Name(), len(group)-1)
	}
}

// cmdEntities prints a one-line summary per entity.
func cmdEntities(w io.Writer, sec *dxf.Section) {
	fmt.Fprintf(w, "version %s, %d entities\n", sec.Version, len(sec.Entities))
	for i, e := range sec.Entities {
		fmt.Fprintf(w, "[%d] %s\n", i, summary(e))
	}
}

func summary(e dxf.Entity) string {
	var b strings.Builder
	b.WriteString(e.Type())
	if base := baseOf(e); base != nil {
		if base.Handle != "" {
			fmt.Fprintf(&b, " handle=%s", base.Handle)
		}
		fmt.Fprintf(&b, " layer=%s", base.Layer)
	}
	if pl, ok := e.(*dxf.Polyline); ok {
		fmt.Fprintf(&b, " mode=%s vertices=%d", pl.Mode(), pl.Len())
		if pl.IsClosed() {
			b.WriteString(" closed")
		}
	}
	return b.String()
}

func baseOf(e dxf.Entity) *dxf.Base {
	switch v := e.(type) {
	case *dxf.Polyline:
		return &v.Base
	case *dxf.Vertex:
		return &v.Base
	case *dxf.SeqEnd:
		return &v.Base
	case *dxf.Opaque:
		return &v.Base
	}
	return nil
}

// cmdPolylines prints the width and bulge lists of every polyline, and the
// sampled curve of spline-fit polylines.
func cmdPolylines(w io.Writer, sec *dxf.Section) {
	for i, pl := range sec.Polylines() {
		printPolyline(w, i, pl)
	}
}

func printPolyline(w io.Writer, index int, pl *dxf.Polyline) {
	fmt.Fprintf(w, "polyline %d: %s\n", index, summary(pl))
	for j, v := range pl.Vertices {
		fmt.Fprintf(w, "  %3d  %s  width=(%s, %s)  bulge=%s\n",
			j, v.Location, formatFloat(pl.Width[j].Start), formatFloat(pl.Width[j].End), formatFloat(pl.Bulge[j]))
	}
	if s := pl.Spline; s != nil {
		fmt.Fprintf(w, "  spline %s closed=%v control=%d fit=%d samples=%d\n",
			s.Type, s.Closed, len(s.ControlPoints), len(s.FitPoints), len(s.Points))
		for j, p := range s.Points {
			fmt.Fprintf(w, "    %3d  %s  tangent=%s\n", j, p, s.Tangents[j])
		}
	}
}

// cmdDigest prints the digest of the whole tag stream followed by one line
// per entity.
func cmdDigest(w io.Writer, tags dxf.Tags) {
	fmt.Fprintf(w, "%s  drawing\n", stream.HashToHex(stream.Digest(tags)))
	runs := dxf.SplitEntities(dxf.EntitiesSection(tags))
	for i, d := range stream.EntityDigests(tags) {
		fmt.Fprintf(w, "%s  [%d] %s\n", stream.HashToHex(d), i, runs[i].Name())
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "dxf: "+format+"\n", args...)
	os.Exit(1)
}

func parseIntArg(arg, prefix string) (int, error) {
	val := strings.TrimPrefix(arg, prefix)
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, err
	}
	return n, nil
}
