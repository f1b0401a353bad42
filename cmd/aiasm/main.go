package main

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/grimdork/climate/arg"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/battleai/assembler"
	"github.com/Urethramancer/battleai/output"
)

var log = logrus.New()

func main() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	opt := arg.New("aiasm")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "i", "input", "Battle AI script to assemble.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "c", "code", "C++ source to write.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "H", "header", "C++ header to write.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "b", "binary", "Binary container to write (needs every constant defined).", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "e", "entries", "Entry table file, one script name per line, - for unused slots.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "k", "constants", "Constants file with NAME = VALUE lines.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "n", "namespace", "C++ namespace of the generated arrays.", "pkmn", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "l", "lenient", "Exit successfully even with errors or missing entry points.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "v", "verbose", "Log each stage.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "C", "check", "Comma-separated scripts to check concurrently; nothing is written.", "", false, arg.VarString, nil)

	err := opt.Parse(os.Args)
	if err != nil {
		if err == arg.ErrNoArgs {
			opt.PrintHelp()
			return
		}
		log.Fatal(err)
	}

	if opt.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	asmOpts := []assembler.Option{assembler.WithLogger(log)}
	if path := opt.GetString("constants"); path != "" {
		c, err := loadConstants(path)
		if err != nil {
			log.Fatal(err)
		}
		asmOpts = append(asmOpts, assembler.WithConstants(c))
	}
	asm := assembler.New(asmOpts...)

	entries := assembler.Gen3Entries()
	if path := opt.GetString("entries"); path != "" {
		entries, err = loadEntries(path)
		if err != nil {
			log.Fatal(err)
		}
	}

	lenient := opt.GetBool("lenient")
	if list := opt.GetString("check"); list != "" {
		if !check(asm, strings.Split(list, ","), entries) && !lenient {
			os.Exit(1)
		}
		return
	}

	input, code, header := opt.GetString("input"), opt.GetString("code"), opt.GetString("header")
	if input == "" || code == "" || header == "" {
		opt.PrintHelp()
		log.Fatal("input, code and header are all required")
	}

	prog, err := asm.AssembleFile(input)
	if err != nil {
		log.Fatal(err)
	}
	resolved := entries.Resolve(prog.Symbols)

	cpp := output.DefaultCPPOptions()
	cpp.Namespace = opt.GetString("namespace")
	arts, err := render(prog, resolved, cpp, code, header, opt.GetString("binary"))
	if err != nil {
		log.Fatal(err)
	}
	if err := output.WriteArtifacts(arts...); err != nil {
		log.Fatal(err)
	}

	missing := assembler.MissingEntries(resolved)
	for _, name := range missing {
		log.WithField("entry", name).Error("entry point not found")
	}
	log.WithFields(logrus.Fields{
		"instructions": len(prog.Instructions),
		"bytes":        prog.Size,
		"deferred":     len(prog.Deferred()),
	}).Info("wrote ", code, " and ", header)

	if (prog.Failed() || len(missing) > 0) && !lenient {
		os.Exit(1)
	}
}

// render produces every artifact in memory so a failure leaves no file behind.
func render(prog *assembler.Program, entries []assembler.Entry, cpp output.CPPOptions, code, header, bin string) ([]output.Artifact, error) {
	var src, hdr bytes.Buffer
	if err := output.WriteSource(&src, prog, entries, cpp); err != nil {
		return nil, err
	}
	if err := output.WriteHeader(&hdr, cpp); err != nil {
		return nil, err
	}
	arts := []output.Artifact{{Path: code, Data: src.Bytes()}, {Path: header, Data: hdr.Bytes()}}

	if bin != "" {
		img, err := output.NewImage(prog, entries)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := output.WriteBinary(&buf, img); err != nil {
			return nil, err
		}
		arts = append(arts, output.Artifact{Path: bin, Data: buf.Bytes()})
	}
	return arts, nil
}

// check assembles several scripts concurrently and reports whether all of
// them are clean.
func check(asm *assembler.Assembler, paths []string, entries assembler.EntryTable) bool {
	for i := range paths {
		paths[i] = strings.TrimSpace(paths[i])
	}
	progs, err := asm.AssembleFiles(context.Background(), paths)
	if err != nil {
		log.Fatal(err)
	}

	ok := true
	for i, prog := range progs {
		missing := assembler.MissingEntries(entries.Resolve(prog.Symbols))
		l := log.WithFields(logrus.Fields{
			"file":     paths[i],
			"errors":   len(prog.Errors()),
			"missing":  len(missing),
			"bytes":    prog.Size,
			"deferred": len(prog.Deferred()),
		})
		if prog.Failed() || len(missing) > 0 {
			ok = false
			l.Error("check failed")
			continue
		}
		l.Info("ok")
	}
	return ok
}

func loadEntries(path string) (assembler.EntryTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening entry table")
	}
	defer f.Close()
	return assembler.ParseEntries(f)
}

func loadConstants(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening constants")
	}
	defer f.Close()
	return assembler.ParseConstants(f)
}
