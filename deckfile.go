package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const deckFormat = "slidedeck/v1"

// deckFile is the on-disk form of a deck: the document plus the metadata
// last used to publish it.
type deckFile struct {
	Format   string        `json:"format"`
	Metadata SlideMetadata `json:"metadata"`
	Slides   []Slide       `json:"slides"`
}

// SaveDeck writes doc to filename through a temp file in the same
// directory, so a failed write never truncates the previous save.
func SaveDeck(filename string, meta SlideMetadata, doc Document) error {
	snap := doc.Clone()
	for i := range snap.Slides {
		for j := range snap.Slides[i].Elements {
			snap.Slides[i].Elements[j].IsEditing = false
		}
	}
	data, err := json.MarshalIndent(deckFile{Format: deckFormat, Metadata: meta, Slides: snap.Slides}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode deck")
	}

	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, ".slidedeck-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write deck")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close deck")
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return errors.Wrap(err, "replace deck")
	}
	return nil
}

// LoadDeck reads a deck saved by SaveDeck. The document is normalized, so
// a hand-edited file cannot break editor invariants.
func LoadDeck(filename string, newID func() string) (Document, SlideMetadata, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Document{}, SlideMetadata{}, errors.Wrapf(err, "read %s", filename)
	}
	var f deckFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Document{}, SlideMetadata{}, errors.Wrapf(err, "parse %s", filename)
	}
	if f.Format != "" && f.Format != deckFormat {
		return Document{}, SlideMetadata{}, errors.Errorf("%s: unsupported format %q", filename, f.Format)
	}
	doc := Document{Slides: f.Slides}
	doc.Normalize(newID)
	return doc, f.Metadata, nil
}
