package icons

import "github.com/llehouerou/reel/internal/catalog"

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Audio    string
	Video    string
	Stream   string
	Playlist string
}

var (
	nerdIcons = Icons{
		Audio:    "\uf001 ",     // nf-fa-music
		Video:    "\uf03d ",     // nf-fa-video_camera
		Stream:   "\uf0ac ",     // nf-fa-globe
		Playlist: "\U000f0cb8 ", // nf-md-playlist_music
	}

	unicodeIcons = Icons{
		Audio:    "🎵 ",
		Video:    "🎬 ",
		Stream:   "🌐 ",
		Playlist: "📋 ",
	}

	noneIcons = Icons{}

	// current holds the active icon set
	current = noneIcons
)

var videoExts = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mkv":  true,
	".mov":  true,
	".webm": true,
}

// Valid reports whether style names a known icon style. Empty is valid and
// means none.
func Valid(style string) bool {
	switch Style(style) {
	case "", StyleNerd, StyleUnicode, StyleNone:
		return true
	}
	return false
}

// Init initializes the icons based on the style.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleUnicode:
		current = unicodeIcons
	default:
		current = noneIcons
	}
}

// ForLocator returns the icon for the media a locator points at. Remote
// video keeps the video icon.
func ForLocator(loc catalog.Locator) string {
	switch {
	case videoExts[loc.Ext()]:
		return current.Video
	case loc.IsRemote():
		return current.Stream
	default:
		return current.Audio
	}
}

// FormatSource formats a source label with the icon for its locator.
func FormatSource(label string, loc catalog.Locator) string {
	return ForLocator(loc) + label
}

// FormatPlaylist formats the aggregate source label.
func FormatPlaylist(label string) string {
	return current.Playlist + label
}
