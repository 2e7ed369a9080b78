package gamecache

import (
	"fmt"

	"github.com/meigma/gamecache/codec"
	"github.com/meigma/gamecache/config"
	"github.com/meigma/gamecache/versionlist"
)

// Map file kinds accepted by MapID and MapFile.
const (
	MapObjects   = 0
	MapLandscape = 1
)

// RawFile returns a loose file exactly as stored, including its version
// trailer.
func (m *Manager) RawFile(k versionlist.Kind, id int) ([]byte, error) {
	data, err := m.store.Read(k.Index(), id)
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", k, id, err)
	}
	return data, nil
}

// readLoose returns the decompressed body of a loose file.
func (m *Manager) readLoose(k versionlist.Kind, id int) ([]byte, error) {
	stored, err := m.RawFile(k, id)
	if err != nil {
		return nil, err
	}
	body, _ := versionlist.SplitTrailer(stored)
	out, err := codec.Gunzip(body, m.maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", k, id, err)
	}
	return out, nil
}

// Model returns the decompressed model file with the given id.
func (m *Manager) Model(id int) ([]byte, error) {
	return m.readLoose(versionlist.Model, id)
}

// FrameGroup returns the decompressed animation frame file with the given id.
func (m *Manager) FrameGroup(id int) ([]byte, error) {
	return m.readLoose(versionlist.Anim, id)
}

// Midi returns the decompressed midi file with the given id.
func (m *Manager) Midi(id int) ([]byte, error) {
	return m.readLoose(versionlist.Midi, id)
}

// SequenceFrame decodes the animation frame file with the given id.
func (m *Manager) SequenceFrame(id int) (*config.SequenceFrame, error) {
	if err := m.ensureOpen(); err != nil {
		return nil, err
	}
	data, err := m.FrameGroup(id)
	if err != nil {
		return nil, err
	}
	return m.decoder.SequenceFrame(id, data)
}

// MapID returns the map file id holding region (x, y) for kind MapObjects or
// MapLandscape, or -1 if the region or kind is unknown.
func (m *Manager) MapID(x, y, kind int) int {
	if m.tables == nil {
		return -1
	}
	return m.tables.MapID(x, y, kind)
}

// MapFile returns the decompressed map file for region (x, y).
func (m *Manager) MapFile(x, y, kind int) ([]byte, error) {
	id := m.MapID(x, y, kind)
	if id < 0 {
		return nil, fmt.Errorf("%w: (%d, %d) kind %d", ErrRegionNotFound, x, y, kind)
	}
	return m.readLoose(versionlist.Map, id)
}

// VerifyFile checks a stored loose file against the checksum and version
// recorded in the setup tables.
func (m *Manager) VerifyFile(k versionlist.Kind, id int) error {
	if err := m.ensureOpen(); err != nil {
		return err
	}
	stored, err := m.RawFile(k, id)
	if err != nil {
		return err
	}
	return m.tables.Verify(k, id, stored)
}
