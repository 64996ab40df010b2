// Package store implements a minimal flat-file term store: a sorted
// sequence of 8-byte big-endian terms (the same encoding
// spatial.Cell.TokenBytesWithLeaf produces) that TermReader.Seek binary
// searches into.
package store

import (
	"bufio"
	"encoding/binary"
	"os"
	"sort"

	"github.com/pkg/errors"

	"geocore/geoerr"
)

const termSize = 8

// TermWriter buffers terms in memory and flushes them, sorted ascending,
// as fixed-width big-endian records on Close. Big-endian is used because
// these bytes must sort the same way the underlying uint64 terms do; that
// sortedness is what lets TermReader.Seek binary search the file.
type TermWriter struct {
	file  *os.File
	terms []uint64
}

// NewTermWriter creates (or truncates) the term file at path.
func NewTermWriter(path string) (*TermWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create term file %s", path)
	}
	return &TermWriter{file: f}, nil
}

// Write buffers term for the eventual sorted flush.
func (w *TermWriter) Write(term uint64) {
	w.terms = append(w.terms, term)
}

// Close sorts every buffered term, writes them to disk, and closes the
// underlying file.
func (w *TermWriter) Close() error {
	sort.Slice(w.terms, func(i, j int) bool { return w.terms[i] < w.terms[j] })

	buffered := bufio.NewWriter(w.file)
	var buf [termSize]byte
	for _, term := range w.terms {
		binary.BigEndian.PutUint64(buf[:], term)
		if _, err := buffered.Write(buf[:]); err != nil {
			return errors.Wrapf(err, "unable to write term to %s", w.file.Name())
		}
	}
	if err := buffered.Flush(); err != nil {
		return errors.Wrapf(err, "unable to flush term file %s", w.file.Name())
	}
	return w.file.Close()
}

// TermReader opens a term file previously produced by TermWriter and
// serves range-seek reads against it.
type TermReader struct {
	file  *os.File
	count int64
}

// OpenTermReader opens path for reading. It returns
// geoerr.ErrInvariantViolation if the file's size is not a multiple of the
// 8-byte term width.
func OpenTermReader(path string) (*TermReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open term file %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to stat term file %s", path)
	}
	if info.Size()%termSize != 0 {
		return nil, errors.Wrapf(geoerr.ErrInvariantViolation, "term file %s has size %d, not a multiple of %d bytes", path, info.Size(), termSize)
	}
	return &TermReader{file: f, count: info.Size() / termSize}, nil
}

// Close releases the underlying file handle.
func (r *TermReader) Close() error {
	return r.file.Close()
}

// Len returns the number of terms stored.
func (r *TermReader) Len() int64 {
	return r.count
}

func (r *TermReader) readAt(index int64) (uint64, error) {
	var buf [termSize]byte
	if _, err := r.file.ReadAt(buf[:], index*termSize); err != nil {
		return 0, errors.Wrapf(err, "unable to read term at index %d from %s", index, r.file.Name())
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// Seek returns an Iterator positioned at the first stored term >= minTerm,
// found by binary search over the sorted file, so a range scan can skip
// every smaller term. The termenum filters do not call it themselves; the
// server and CLI query paths scan from Seek(0).
func (r *TermReader) Seek(minTerm uint64) (*Iterator, error) {
	lo, hi := int64(0), r.count
	for lo < hi {
		mid := (lo + hi) / 2
		v, err := r.readAt(mid)
		if err != nil {
			return nil, err
		}
		if v < minTerm {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return &Iterator{reader: r, pos: lo}, nil
}

// Iterator walks a TermReader's terms in ascending order from wherever
// Seek positioned it.
type Iterator struct {
	reader *TermReader
	pos    int64
}

// Next returns the next term in ascending order. The second return value
// is false once every term has been consumed.
func (it *Iterator) Next() (uint64, bool, error) {
	if it.pos >= it.reader.count {
		return 0, false, nil
	}
	v, err := it.reader.readAt(it.pos)
	if err != nil {
		return 0, false, err
	}
	it.pos++
	return v, true, nil
}
