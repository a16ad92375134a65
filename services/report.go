package services

import (
	"fmt"
	"io"
	"strings"

	"estate-browser/models"
	"estate-browser/utils"
)

// HomeReport renders the home feed to a terminal.
type HomeReport struct {
	cards   *CardBuilder
	queries []models.CategoryQuery
	logger  *utils.Logger
}

func NewHomeReport(cards *CardBuilder, queries []models.CategoryQuery, logger *utils.Logger) *HomeReport {
	return &HomeReport{cards: cards, queries: queries, logger: logger}
}

// Stats computes displayed-price statistics per category, in query order.
// Categories without listings are reported with zero values.
func (r *HomeReport) Stats(s models.AggregateViewState) []models.SectionStats {
	stats := make([]models.SectionStats, 0, len(r.queries))
	for _, q := range r.queries {
		listings := s.Results(q.Category)
		st := models.SectionStats{Category: q.Category, Count: len(listings)}
		if len(listings) > 0 {
			st.MinPrice = listings[0].EffectivePrice()
			st.MaxPrice = st.MinPrice
			var total float64
			for _, l := range listings {
				p := l.EffectivePrice()
				total += p
				if p < st.MinPrice {
					st.MinPrice = p
				}
				if p > st.MaxPrice {
					st.MaxPrice = p
				}
			}
			st.AveragePrice = round2(total / float64(len(listings)))
		}
		stats = append(stats, st)
	}
	return stats
}

// Print writes the view state: a loading line while pending, the error
// when failed, otherwise every non-empty section with its cards.
func (r *HomeReport) Print(w io.Writer, s models.AggregateViewState) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	switch s.Status {
	case models.StatusPending:
		fmt.Fprintln(w, "Loading...")
		return
	case models.StatusFailed:
		fmt.Fprintf(w, "\033[1;31mError: %s\033[0m\n", s.Error)
		return
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  Find your next perfect place with ease\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	sections := r.cards.Sections(s, r.queries)
	if len(sections) == 0 {
		fmt.Fprintf(w, "  No listings yet\n\n")
		return
	}

	stats := make(map[models.Category]models.SectionStats)
	for _, st := range r.Stats(s) {
		stats[st.Category] = st
	}

	for _, sec := range sections {
		st := stats[sec.Category]
		fmt.Fprintf(w, "\033[1;33m  %s\033[0m  (%d, avg $%.2f)\n", sec.Heading, st.Count, st.AveragePrice)
		fmt.Fprintf(w, "  %s\n", thin)
		for i, c := range sec.Cards {
			badge := ""
			if c.OfferBadge {
				badge = " \033[1;32m[Offer]\033[0m"
			}
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-38s %s%s\n", i+1, truncate(c.Title, 36), c.Price, badge)
			fmt.Fprintf(w, "     %s · %s\n", truncate(c.Address, 40), strings.Join(c.Features, " | "))
		}
		fmt.Fprintf(w, "  → %s: %s\n\n", sec.MoreLinkText, sec.MoreLink)
	}

	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
