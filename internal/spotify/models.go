package spotify

// Response DTOs for the slice of the Spotify Web API pollify touches.
// Fields mirror the wire names; anything the core does not read is omitted.

type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type Album struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Popularity int      `json:"popularity"`
	Genres     []string `json:"genres"`
	Images     []Image  `json:"images"`
	URI        string   `json:"uri"`
	Href       string   `json:"href"`
}

type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Album       Album    `json:"album"`
	Artists     []Artist `json:"artists"`
	Popularity  int      `json:"popularity"`
	DurationMs  int      `json:"duration_ms"`
	URI         string   `json:"uri"`
	TrackNumber int      `json:"track_number"`
	Explicit    bool     `json:"explicit"`
}

type Playlist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// PlaylistTrack is one entry of a playlist's current remote ordering.
type PlaylistTrack struct {
	Track Track `json:"track"`
}

// PlaybackContext describes what collection the owner's playback is bound
// to, e.g. uri "spotify:playlist:37i9dQZF1E34T4WDQivGe3".
type PlaybackContext struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

// PlaybackState is the owner's current playback snapshot. A nil state means
// the owner is not playing anything anywhere.
type PlaybackState struct {
	IsPlaying  bool             `json:"is_playing"`
	ProgressMs int              `json:"progress_ms"`
	Item       *Track           `json:"item"`
	Context    *PlaybackContext `json:"context"`
}

// SearchResults carries whichever buckets the search type asked for.
type SearchResults struct {
	Tracks  []Track  `json:"tracks"`
	Artists []Artist `json:"artists"`
}

type searchResponse struct {
	Tracks *struct {
		Items []Track `json:"items"`
	} `json:"tracks"`
	Artists *struct {
		Items []Artist `json:"items"`
	} `json:"artists"`
}

type topTracksResponse struct {
	Tracks []Track `json:"tracks"`
}

type playlistTracksResponse struct {
	Items []PlaylistTrack `json:"items"`
}
