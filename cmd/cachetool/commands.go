package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/meigma/gamecache"
	"github.com/meigma/gamecache/archive"
	"github.com/meigma/gamecache/versionlist"
)

type env struct {
	settings settings
	logger   *slog.Logger
	out      io.Writer
}

// recordFunc looks up one decoded record.
type recordFunc func(m *gamecache.Manager, id int) (any, error)

func record[T any](get func(*gamecache.Manager, int) (*T, error)) recordFunc {
	return func(m *gamecache.Manager, id int) (any, error) {
		return get(m, id)
	}
}

var recordCommands = map[string]recordFunc{
	"item":   record((*gamecache.Manager).ItemConfig),
	"object": record((*gamecache.Manager).ObjectConfig),
	"widget": record((*gamecache.Manager).WidgetConfig),
	"seq":    record((*gamecache.Manager).Sequence),
	"frame":  record((*gamecache.Manager).SequenceFrame),
	"floor":  record((*gamecache.Manager).FloorConfig),
	"idk":    record((*gamecache.Manager).IdentityKitConfig),
	"gfx":    record((*gamecache.Manager).GraphicConfig),
}

var archiveNames = map[int]string{
	archive.Title:       "title",
	archive.Config:      "config",
	archive.Interface:   "interface",
	archive.Media:       "media",
	archive.VersionList: "versionlist",
	archive.Textures:    "textures",
	archive.WordFilter:  "wordenc",
	archive.Sounds:      "sounds",
}

// knownFiles maps name hashes of the files this tool understands back to
// their names.
var knownFiles = func() map[int32]string {
	names := []string{
		"obj.dat", "obj.idx", "loc.dat", "loc.idx",
		"seq.dat", "flo.dat", "idk.dat", "spotanim.dat", "data",
		"model_index", "anim_index", "midi_index", "map_index",
	}
	for _, k := range versionlist.Kinds {
		names = append(names, k.String()+"_version", k.String()+"_crc")
	}
	out := make(map[int32]string, len(names))
	for _, n := range names {
		out[archive.Hash(n)] = n
	}
	return out
}()

func (e *env) dispatch(cmd string, args []string) error {
	if get, ok := recordCommands[cmd]; ok {
		return e.withManager(func(m *gamecache.Manager) error {
			return e.printRecord(m, get, args)
		})
	}
	switch cmd {
	case "info":
		return e.withManager(e.info)
	case "map":
		return e.withManager(func(m *gamecache.Manager) error { return e.mapRegion(m, args) })
	case "archive":
		return e.withManager(func(m *gamecache.Manager) error { return e.listArchive(m, args) })
	case "verify":
		return e.withManager(e.verify)
	case "pack":
		return e.pack(args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (e *env) withManager(fn func(*gamecache.Manager) error) error {
	opts, err := e.settings.options(e.logger)
	if err != nil {
		return err
	}
	var m *gamecache.Manager
	if e.settings.CacheURL != "" {
		m, err = gamecache.OpenURL(e.settings.CacheURL, opts...)
	} else {
		m, err = gamecache.Open(e.settings.CacheDir, opts...)
	}
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func intArgs(args []string, names ...string) ([]int, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("expected %d argument(s): %v", len(names), names)
	}
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
		out[i] = v
	}
	return out, nil
}

func (e *env) printRecord(m *gamecache.Manager, get recordFunc, args []string) error {
	ids, err := intArgs(args, "id")
	if err != nil {
		return err
	}
	rec, err := get(m, ids[0])
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(e.out)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	return enc.Close()
}

func (e *env) info(m *gamecache.Manager) error {
	st := m.Store()
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "blocks\t%d\n", st.BlockCount())
	fmt.Fprintf(tw, "codec\t%s\n", m.Codec().Name())
	for i := range st.IndexCount() {
		fmt.Fprintf(tw, "index %d\t%d files\n", i, st.FileCount(i))
	}

	for id := archive.Title; id <= archive.Sounds; id++ {
		a, err := m.Archive(id)
		if gamecache.IsNotFound(err) {
			continue
		}
		if err != nil {
			fmt.Fprintf(tw, "archive %d (%s)\terror: %v\n", id, archiveNames[id], err)
			continue
		}
		fmt.Fprintf(tw, "archive %d (%s)\t%d files\t%s\n", id, archiveNames[id], a.Len(), a.Digest())
	}

	t := m.Tables()
	for _, k := range versionlist.Kinds {
		fmt.Fprintf(tw, "%s files\t%d\n", k, t.Count(k))
	}
	fmt.Fprintf(tw, "regions\t%d\n", t.RegionCount())

	for _, c := range []struct {
		name  string
		count func() (int, error)
	}{
		{"items", m.ItemCount},
		{"objects", m.ObjectCount},
	} {
		n, err := c.count()
		if err != nil {
			if !gamecache.IsNotFound(err) {
				return err
			}
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\n", c.name, n)
	}
	return tw.Flush()
}

func (e *env) mapRegion(m *gamecache.Manager, args []string) error {
	xy, err := intArgs(args, "x", "y")
	if err != nil {
		return err
	}
	x, y := xy[0], xy[1]
	r, ok := m.Tables().Region(x, y)
	if !ok {
		return fmt.Errorf("%w: (%d, %d)", gamecache.ErrRegionNotFound, x, y)
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "region\t%d\n", r.ID())
	fmt.Fprintf(tw, "members\t%t\n", r.Members)
	for _, kind := range []struct {
		name string
		kind int
	}{
		{"objects", gamecache.MapObjects},
		{"landscape", gamecache.MapLandscape},
	} {
		id := m.MapID(x, y, kind.kind)
		data, err := m.MapFile(x, y, kind.kind)
		switch {
		case err == nil:
			fmt.Fprintf(tw, "%s\tfile %d\t%d bytes\n", kind.name, id, len(data))
		case gamecache.IsNotFound(err):
			fmt.Fprintf(tw, "%s\tfile %d\tmissing\n", kind.name, id)
		default:
			return err
		}
	}
	return tw.Flush()
}

func (e *env) listArchive(m *gamecache.Manager, args []string) error {
	ids, err := intArgs(args, "id")
	if err != nil {
		return err
	}
	a, err := m.Archive(ids[0])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "hash\tsize\tpacked\tname\t\n")
	for d := range a.Entries() {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t\n", d.Hash, d.Size, d.PackedSize, knownFiles[d.Hash])
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%d files, whole=%t, %s\n", a.Len(), a.ExtractedAsWhole(), a.Digest())
	return nil
}

func (e *env) verify(m *gamecache.Manager) error {
	var ok, missing, failed int
	t := m.Tables()
	for _, k := range versionlist.Kinds {
		for id := range t.Count(k) {
			err := m.VerifyFile(k, id)
			switch {
			case err == nil:
				ok++
			case gamecache.IsNotFound(err), errors.Is(err, versionlist.ErrNoEntry):
				missing++
			default:
				failed++
				fmt.Fprintf(e.out, "FAIL %s %d: %v\n", k, id, err)
			}
		}
	}
	fmt.Fprintf(e.out, "%d ok, %d missing, %d failed\n", ok, missing, failed)
	e.logger.Info("verify finished", "ok", ok, "missing", missing, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed verification: %w", failed, gamecache.ErrChecksum)
	}
	return nil
}
