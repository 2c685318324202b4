package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/Neumenon/dxf/dxf"
)

const (
	historyFile = ".dxf_history"
	prompt      = "dxf> "
)

const shellHelp = `commands:
  list                 list all entities
  show <index|#handle> print the classified tags of an entity
  polyline <index>     print widths, bulges and spline samples
  errors               print entities skipped while reading
  help                 show this message
  :quit                exit
`

// shell answers inspection commands against a loaded entities section.
type shell struct {
	sec *dxf.Section
}

func cmdShell(sec *dxf.Section) (ret int) {
	fmt.Printf("dxf shell: %d entities, version %s. Type help for commands.\n", len(sec.Entities), sec.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	sh := &shell{sec: sec}
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if err != nil {
			// liner.ErrPromptAborted on Ctrl-C
			return 0
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if !sh.exec(os.Stdout, line) {
			return 0
		}
	}
}

// exec runs one command line and reports whether the shell should continue.
func (sh *shell) exec(w io.Writer, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q", "quit", "exit":
		return false
	case "help", "?":
		fmt.Fprint(w, shellHelp)
	case "list", "ls":
		cmdEntities(w, sh.sec)
	case "show":
		if len(fields) < 2 {
			fmt.Fprintln(w, "usage: show <index|#handle>")
			break
		}
		i, err := sh.lookup(fields[1])
		if err != nil {
			fmt.Fprintln(w, err)
			break
		}
		printClassified(w, i, sh.sec.Entities[i].Classified())
	case "polyline", "pl":
		if len(fields) < 2 {
			fmt.Fprintln(w, "usage: polyline <index>")
			break
		}
		i, err := sh.lookup(fields[1])
		if err != nil {
			fmt.Fprintln(w, err)
			break
		}
		pl, ok := sh.sec.Entities[i].(*dxf.Polyline)
		if !ok {
			fmt.Fprintf(w, "entity %d is a %s, not a POLYLINE\n", i, sh.sec.Entities[i].Type())
			break
		}
		printPolyline(w, i, pl)
	case "errors":
		if len(sh.sec.Errors) == 0 {
			fmt.Fprintln(w, "no errors")
		}
		for _, e := range sh.sec.Errors {
			fmt.Fprintln(w, e)
		}
	default:
		fmt.Fprintf(w, "unknown command %q. Type help for commands.\n", fields[0])
	}
	return true
}

// lookup resolves an entity index or a "#handle" reference.
func (sh *shell) lookup(ref string) (int, error) {
	if strings.HasPrefix(ref, "#") {
		handle := strings.ToUpper(ref[1:])
		for i, e := range sh.sec.Entities {
			if b := baseOf(e); b != nil && strings.ToUpper(b.Handle) == handle {
				return i, nil
			}
		}
		return 0, fmt.Errorf("no entity with handle %s", handle)
	}
	i, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid entity index %q", ref)
	}
	if i < 0 || i >= len(sh.sec.Entities) {
		return 0, fmt.Errorf("entity index %d out of range [0, %d)", i, len(sh.sec.Entities))
	}
	return i, nil
}
