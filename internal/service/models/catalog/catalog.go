package catalog

// Item represents an authoritative catalog record. Catalog items evolve
// independently of any order that references them.
type Item struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PictureURI string `json:"pictureUri"`
}
