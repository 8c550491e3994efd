package query

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/aurora/date"
)

// disk persists entries as JSON files, one directory per day so that
// entries expire every day.
type disk struct {
	dir string
}

type diskEntry struct {
	Key     Key             `json:"key"`
	Fetched time.Time       `json:"fetched"`
	Data    json.RawMessage `json:"data"`
}

func (d *disk) day(now time.Time) string {
	return filepath.Join(d.dir, date.New(now.Date()).String())
}

func (d *disk) file(key Key, now time.Time) string {
	return filepath.Join(d.day(now), fmt.Sprintf("%x.json", sha1.Sum([]byte(key.String()))))
}

func (d *disk) get(key Key, now time.Time) (*entry, error) {
	content, err := os.ReadFile(d.file(key, now))
	if err != nil {
		return nil, err
	}
	var de diskEntry
	if err := json.Unmarshal(content, &de); err != nil {
		return nil, err
	}
	return &entry{key: de.Key, data: de.Data, fetched: de.Fetched}, nil
}

func (d *disk) put(e *entry) error {
	if err := os.MkdirAll(d.day(e.fetched), 0700); err != nil {
		return err
	}
	content, err := json.Marshal(diskEntry{Key: e.key, Fetched: e.fetched, Data: e.data})
	if err != nil {
		return err
	}
	return os.WriteFile(d.file(e.key, e.fetched), content, 0600)
}

// remove deletes today's entries under prefix.
func (d *disk) remove(prefix Key, now time.Time) error {
	dir := d.day(now)
	files, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var errs []error
	for _, f := range files {
		path := filepath.Join(dir, f.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		var de diskEntry
		if json.Unmarshal(content, &de) != nil || de.Key.HasPrefix(prefix) {
			errs = append(errs, os.Remove(path))
		}
	}
	return errors.Join(errs...)
}

// clear deletes every entry, of all days.
func (d *disk) clear() error {
	days, err := os.ReadDir(d.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var errs []error
	for _, day := range days {
		if _, err := date.Parse(day.Name()); day.IsDir() && err == nil {
			errs = append(errs, os.RemoveAll(filepath.Join(d.dir, day.Name())))
		}
	}
	return errors.Join(errs...)
}
