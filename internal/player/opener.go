package player

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/reel/internal/catalog"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
)

const defaultHTTPTimeout = 30 * time.Second

// ErrUnsupportedFormat is wrapped by open errors for media the engine
// cannot decode (video containers in particular).
var ErrUnsupportedFormat = errors.New("unsupported format")

// IsSupported reports whether the engine can decode the locator's format.
func IsSupported(loc catalog.Locator) bool {
	switch loc.Ext() {
	case extMP3, extFLAC, extWAV:
		return true
	default:
		return false
	}
}

// Opener turns locators into decoded streams.
type Opener struct {
	// AssetRoot is the directory asset:/// locators are relative to.
	AssetRoot string
	// Client fetches http(s) locators. Nil uses a client with a 30s timeout.
	Client *http.Client
}

// window is one decoded locator.
type window struct {
	locator  catalog.Locator
	streamer beep.StreamSeekCloser
	format   beep.Format
	source   io.Closer
	tags     *TagInfo
}

func (w *window) Close() error {
	err := w.streamer.Close()
	if w.source != nil {
		// the decoder may already have closed it
		_ = w.source.Close()
	}
	return err
}

// LocalPath maps asset and file locators to a filesystem path.
func (o Opener) LocalPath(loc catalog.Locator) (string, error) {
	switch loc.Scheme() {
	case catalog.SchemeAsset:
		return filepath.Join(o.AssetRoot, filepath.FromSlash(loc.Path())), nil
	case catalog.SchemeFile:
		return filepath.FromSlash(loc.Path()), nil
	default:
		return "", fmt.Errorf("%s is not a local locator", loc)
	}
}

// open fetches and decodes loc.
func (o Opener) open(loc catalog.Locator) (*window, error) {
	if !IsSupported(loc) {
		return nil, fmt.Errorf("%s: %w: %s", loc, ErrUnsupportedFormat, loc.Ext())
	}

	var (
		rc   io.ReadCloser
		tags *TagInfo
	)
	if loc.IsRemote() {
		body, err := o.fetch(loc)
		if err != nil {
			return nil, err
		}
		rc = body
	} else {
		path, err := o.LocalPath(loc)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", loc, err)
		}
		tags = readTags(f, path)
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", loc, err)
		}
		rc = f
	}

	streamer, format, err := decode(loc.Ext(), rc)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("%s: decode: %w", loc, err)
	}

	return &window{
		locator:  loc,
		streamer: streamer,
		format:   format,
		source:   rc,
		tags:     tags,
	}, nil
}

func (o Opener) fetch(loc catalog.Locator) (io.ReadCloser, error) {
	client := o.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	resp, err := client.Get(string(loc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: unexpected status %s", loc, resp.Status)
	}
	return resp.Body, nil
}

func decode(ext string, rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case extMP3:
		return mp3.Decode(rc)
	case extFLAC:
		return flac.Decode(rc)
	case extWAV:
		return wav.Decode(rc)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// readTags returns nil when the file carries no readable tags.
func readTags(r io.ReadSeeker, path string) *TagInfo {
	m, err := tag.ReadFrom(r)
	if err != nil {
		return nil
	}
	title := m.Title()
	if title == "" {
		title = filepath.Base(path)
	}
	return &TagInfo{
		Title:  title,
		Artist: m.Artist(),
		Album:  m.Album(),
		Year:   m.Year(),
	}
}
