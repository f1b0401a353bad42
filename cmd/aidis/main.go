package main

import (
	"fmt"
	"os"

	"github.com/grimdork/climate/arg"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/battleai/disassembler"
	"github.com/Urethramancer/battleai/opcodes"
	"github.com/Urethramancer/battleai/output"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	opt := arg.New("aidis")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "i", "input", "Binary container written by aiasm.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "o", "output", "Script file to write instead of standard output.", "", false, arg.VarString, nil)
	err := opt.Parse(os.Args)
	if err != nil {
		if err == arg.ErrNoArgs {
			opt.PrintHelp()
			return
		}
		log.Fatal(err)
	}

	inputFile := opt.GetString("input")
	if inputFile == "" {
		opt.PrintHelp()
		os.Exit(1)
	}

	data, err := os.ReadFile(inputFile)
	if err != nil {
		log.Fatal(errors.Wrap(err, "reading container"))
	}
	img, err := output.ReadBinary(data)
	if err != nil {
		log.Fatal(err)
	}

	text, err := disassembler.Disassemble(img.Code, opcodes.Default(), disassembler.EntryNames(img.Entries))
	if err != nil {
		log.Fatal(errors.Wrap(err, "disassembly"))
	}

	outputFile := opt.GetString("output")
	if outputFile == "" {
		fmt.Print(text)
		return
	}
	if err := output.WriteArtifacts(output.Artifact{Path: outputFile, Data: []byte(text)}); err != nil {
		log.Fatal(err)
	}
	log.WithField("bytes", len(img.Code)).Info("disassembly written to ", outputFile)
}
