package entity

// Book is one title of the local library as it travels through the pipeline.
// Dates are kept as the raw nominal strings found in the source.
type Book struct {
	Title           string `json:"title"`
	Author          string `json:"author,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	ASIN            string `json:"asin,omitempty"`
	ContentTag      string `json:"content_tag,omitempty"`
	PurchaseDate    string `json:"purchase_date,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`
}

// Key is the dedup identity: the ASIN when present, else the title.
func (b Book) Key() string {
	if b.ASIN != "" {
		return b.ASIN
	}
	return b.Title
}
