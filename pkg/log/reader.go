package log

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter specifies criteria for filtering trace events.
// Empty/nil fields match all events for that criterion.
type Filter struct {
	// RegistryID filters by exact registry ID match.
	RegistryID string

	// Category filters by event category.
	Category *Category

	// URIPrefix filters events whose URI starts with this prefix.
	URIPrefix string

	// TimeStart filters events at or after this time.
	TimeStart *time.Time

	// TimeEnd filters events before this time.
	TimeEnd *time.Time
}

// matches returns true if the event matches all filter criteria.
func (f *Filter) matches(event Event) bool {
	if f.RegistryID != "" && event.RegistryID != f.RegistryID {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.URIPrefix != "" && !hasPathPrefix(event.URI, f.URIPrefix) {
		return false
	}
	if f.TimeStart != nil && event.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !event.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// hasPathPrefix matches whole path segments, so "/3/0" matches "/3/0/9"
// but not "/3/01".
func hasPathPrefix(uri, prefix string) bool {
	if len(uri) < len(prefix) || uri[:len(prefix)] != prefix {
		return false
	}
	return len(uri) == len(prefix) || uri[len(prefix)] == '/' || prefix[len(prefix)-1] == '/'
}

// Reader reads trace events from a CBOR-encoded file.
// It provides an iterator interface for streaming large files.
type Reader struct {
	file    *os.File
	decoder *cbor.Decoder
	filter  Filter
	header  Header
}

// NewReader creates a Reader that reads all events from the specified file.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader creates a Reader that reads events matching the filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		file:    f,
		decoder: traceDec.NewDecoder(f),
		filter:  filter,
	}
	r.header, err = readHeader(r.decoder)
	if err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Header returns the file header. It is zero for an empty file.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next event that matches the filter.
// Returns io.EOF when no more events are available.
func (r *Reader) Next() (Event, error) {
	for {
		var event Event
		if err := r.decoder.Decode(&event); err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		if r.filter.matches(event) {
			return event, nil
		}
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}
