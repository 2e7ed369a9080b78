// cachetool inspects, verifies and packs game client caches.
//
// Usage:
//
//	cachetool [flags] <command> [args]
//
// Commands:
//
//	info                  block, file and archive summary
//	item|object|widget|seq|frame|floor|idk|gfx <id>
//	                      print a decoded record as YAML
//	map <x> <y>           show the map files of a region
//	archive <id>          list the files in an archive
//	verify                check every versioned file against its checksum
//	pack <src> <out>      build a cache from a directory tree
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var fv flagValues
	fs := newFlagSet(&fv)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, fs)
			return nil
		}
		return err
	}
	if help, _ := fs.GetBool("help"); help {
		printHelp(stderr, fs)
		return nil
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printHelp(stderr, fs)
		return errors.New("no command given")
	}

	s, err := fv.resolve(fs)
	if err != nil {
		return err
	}
	logger, err := s.logger(stderr)
	if err != nil {
		return err
	}

	if s.CPUProfile != "" {
		f, err := os.Create(s.CPUProfile)
		if err != nil {
			return fmt.Errorf("cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	env := &env{settings: s, logger: logger, out: stdout}
	return env.dispatch(rest[0], rest[1:])
}

func printHelp(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `cachetool inspects, verifies and packs game client caches.

Usage:
  cachetool [flags] <command> [args]

Commands:
  info                 block, file and archive summary
  item <id>            print an item definition
  object <id>          print a world object definition
  widget <id>          print an interface widget
  seq <id>             print an animation sequence
  frame <id>           print an animation frame
  floor <id>           print a floor definition
  idk <id>             print an identity kit
  gfx <id>             print a spot animation
  map <x> <y>          show the map files of a region
  archive <id>         list the files in an archive
  verify               check every versioned file against its checksum
  pack <src> <out>     build a cache from a directory tree

Flags:
%s`, fs.FlagUsages())
}
