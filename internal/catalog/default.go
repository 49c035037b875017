package catalog

// DefaultEntries returns the built-in sources: a bundled video and audio
// asset plus one streamed audio and video resource.
func DefaultEntries() []Entry {
	return []Entry{
		{
			ID:          LocalVideo,
			Locator:     "asset:///video/stock_footage_video.mp4",
			Title:       "Stock footage",
			Subtitle:    "Local video",
			Description: "MP4 loaded from assets folder",
		},
		{
			ID:          LocalAudio,
			Locator:     "asset:///audio/cielo.mp3",
			Title:       "Music",
			Subtitle:    "Local audio",
			Description: "MP3 loaded from assets folder",
		},
		{
			ID:          HTTPAudio,
			Locator:     "http://storage.googleapis.com/exoplayer-test-media-0/play.mp3",
			Title:       "Spoken track",
			Subtitle:    "Streaming audio",
			Description: "MP3 loaded over HTTP",
		},
		{
			ID:          HTTPVideo,
			Locator:     "http://download.blender.org/peach/bigbuckbunny_movies/BigBuckBunny_320x180.mp4",
			Title:       "Short film",
			Subtitle:    "Streaming video",
			Description: "MP4 loaded over HTTP",
		},
	}
}

// Default returns the built-in catalog with the playlist aggregate enabled.
func Default() *Catalog {
	return MustNew(DefaultEntries())
}
