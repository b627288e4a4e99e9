package types

// Schedule holds the light timer cron specs. Empty means disabled.
type Schedule struct {
	On  string `json:"on"`
	Off string `json:"off"`
}
