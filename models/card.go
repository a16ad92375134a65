package models

// Card is the render-ready projection of a ListingSummary.
type Card struct {
	ID          string   `json:"id"`
	Link        string   `json:"link"`
	CoverImage  string   `json:"coverImage"`
	Title       string   `json:"title"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	OfferBadge  bool     `json:"offer"`
	Features    []string `json:"features"`
}

// Section is one category block on the home page.
type Section struct {
	Category     Category `json:"category"`
	Heading      string   `json:"heading"`
	MoreLink     string   `json:"moreLink"`
	MoreLinkText string   `json:"moreLinkText"`
	Cards        []Card   `json:"cards"`
}

// SectionStats summarises the displayed prices of a section.
type SectionStats struct {
	Category     Category
	Count        int
	MinPrice     float64
	MaxPrice     float64
	AveragePrice float64
}
