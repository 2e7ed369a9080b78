package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/meigma/gamecache/archive"
	"github.com/meigma/gamecache/codec"
	"github.com/meigma/gamecache/store"
	"github.com/meigma/gamecache/versionlist"
)

// regionsFile lists the map regions written to the setup archive.
const regionsFile = "regions.yaml"

type regionEntry struct {
	X         int  `yaml:"x"`
	Y         int  `yaml:"y"`
	Objects   int  `yaml:"objects"`
	Landscape int  `yaml:"landscape"`
	Members   bool `yaml:"members"`
}

// pack builds a cache from a source tree:
//
//	<src>/0/<id>/<name>   files of archive id, packed with the configured codec
//	<src>/0/<id>          a prebuilt archive, stored as is
//	<src>/<1..4>/<id>     raw model, frame, midi and map files
//	<src>/regions.yaml    map regions
//
// The setup archive is generated from the loose files unless <src>/0/5
// exists.
func (e *env) pack(args []string) error {
	if len(args) != 2 {
		return errors.New("pack: expected <src> <out>")
	}
	src, out := args[0], args[1]

	c, err := codec.Lookup(e.settings.Codec)
	if err != nil {
		return err
	}
	w := store.NewWriter(store.DefaultIndexCount)
	setup := versionlist.NewBuilder()

	for _, k := range versionlist.Kinds {
		err := eachFile(filepath.Join(src, strconv.Itoa(k.Index())), func(id int, path string, d fs.DirEntry) error {
			if d.IsDir() {
				return fmt.Errorf("%s: unexpected directory", path)
			}
			raw, err := os.ReadFile(path) //nolint:gosec // Walking the user-provided source tree is intentional
			if err != nil {
				return err
			}
			packed, err := codec.Gzip(raw)
			if err != nil {
				return err
			}
			stored := versionlist.AppendTrailer(packed, e.settings.Version)
			setup.AddFile(k, id, stored)
			return w.Put(k.Index(), id, stored)
		})
		if err != nil {
			return fmt.Errorf("pack %s files: %w", k, err)
		}
	}

	regions, err := readRegions(filepath.Join(src, regionsFile))
	if err != nil {
		return err
	}
	for _, r := range regions {
		setup.AddRegion(versionlist.Region{
			X:             r.X,
			Y:             r.Y,
			ObjectFile:    r.Objects,
			LandscapeFile: r.Landscape,
			Members:       r.Members,
		})
	}

	haveSetup := false
	err = eachFile(filepath.Join(src, "0"), func(id int, path string, d fs.DirEntry) error {
		var (
			data []byte
			err  error
		)
		if d.IsDir() {
			data, err = buildArchive(path, c)
		} else {
			data, err = os.ReadFile(path) //nolint:gosec // Walking the user-provided source tree is intentional
		}
		if err != nil {
			return err
		}
		haveSetup = haveSetup || id == versionlist.ArchiveID
		e.logger.Debug("packed archive", "id", id, "bytes", len(data))
		return w.Put(0, id, data)
	})
	if err != nil {
		return fmt.Errorf("pack archives: %w", err)
	}

	if !haveSetup {
		ab := archive.NewBuilder(archive.WithCodec(c))
		setup.WriteTo(ab)
		data, err := ab.Build()
		if err != nil {
			return fmt.Errorf("pack setup archive: %w", err)
		}
		if err := w.Put(0, versionlist.ArchiveID, data); err != nil {
			return err
		}
	}

	if err := w.Save(out); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "packed %d blocks into %s\n", len(w.Data())/store.BlockSize, out)
	return nil
}

// eachFile calls fn for every entry of dir named by a file id.
// A missing dir has no entries.
func eachFile(dir string, fn func(id int, path string, d fs.DirEntry) error) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, d := range entries {
		id, err := strconv.Atoi(d.Name())
		if err != nil || id < 0 {
			return fmt.Errorf("%s: entry name %q is not a file id", dir, d.Name())
		}
		if err := fn(id, filepath.Join(dir, d.Name()), d); err != nil {
			return err
		}
	}
	return nil
}

func buildArchive(dir string, c codec.Codec) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	ab := archive.NewBuilder(archive.WithCodec(c))
	for _, d := range entries {
		if d.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, d.Name())) //nolint:gosec // Walking the user-provided source tree is intentional
		if err != nil {
			return nil, err
		}
		ab.Add(d.Name(), data)
	}
	return ab.Build()
}

func readRegions(path string) ([]regionEntry, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // User-provided source tree is intentional
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var regions []regionEntry
	if err := yaml.Unmarshal(raw, &regions); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return regions, nil
}
