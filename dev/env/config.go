package devenv

// YouTubeTestConfig is read from dev/.state/youtube.json5 by the live tests.
type YouTubeTestConfig struct {
	// CookieFile is a Netscape cookies.txt export of a signed in browser.
	CookieFile string `json:"cookie_file"`
	// PlaylistID is a playlist the tests list, it is never modified.
	PlaylistID string `json:"playlist_id"`
}

const YouTubeTestConfigFile = "youtube.json5"
