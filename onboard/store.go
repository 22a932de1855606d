package onboard

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// StoreInterface is what the controller calls on a settle event. Kept
// narrow so tests can count writes.
type StoreInterface interface {
	Store(posA, posB int64) error
}

// PositionStore persists the identity tag and both positions as a three
// line text record. Encoder counts are volatile, so this record is the only
// way absolute position survives a power cycle. It is written on settle
// events only - never on a timer - which bounds flash wear to one write per
// completed move.
type PositionStore struct {
	path string
	tag  string
}

func NewPositionStore(path, tag string) (s *PositionStore) {
	s = new(PositionStore)
	s.path = path
	s.tag = tag
	return
}

// Load reads the record back. The tag is returned so callers can notice a
// record that belongs to a different unit.
func (s *PositionStore) Load() (tag string, posA, posB int64, err error) {
	raw, err := ioutil.ReadFile(s.path)
	if err != nil {
		return
	}

	lines := strings.Split(string(raw), "\n")
	if len(lines) < 3 {
		err = fmt.Errorf("position record %s: expected 3 lines, got %d", s.path, len(lines))
		return
	}

	tag = lines[0]
	posA, err = strconv.ParseInt(strings.TrimSpace(lines[1]), 10, 64)
	if err != nil {
		return
	}
	posB, err = strconv.ParseInt(strings.TrimSpace(lines[2]), 10, 64)
	return
}

// Store overwrites the record via a temp file and rename so a power loss
// mid-write leaves the previous record intact.
func (s *PositionStore) Store(posA, posB int64) (err error) {
	tmp := s.path + ".tmp"

	err = ioutil.WriteFile(tmp, []byte(fmt.Sprintf("%s\n%d\n%d\n", s.tag, posA, posB)), 0644)
	if err != nil {
		return
	}

	return os.Rename(tmp, s.path)
}

// Tag returns the identity tag the store writes.
func (s *PositionStore) Tag() string {
	return s.tag
}

// EnsureDir creates the directory holding the record. Used at startup for
// fresh installs.
func (s *PositionStore) EnsureDir() error {
	return os.MkdirAll(filepath.Dir(s.path), 0755)
}
