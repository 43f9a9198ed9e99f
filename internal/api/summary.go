package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const summaryRule = "=================================================="

// handleSummary renders the current cache as a downloadable plain-text
// digest: the hero headline first, then every other story.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	articles, _ := s.cache.All(r.Context())

	date := time.Now().Format("2006-01-02")

	var b strings.Builder
	fmt.Fprintf(&b, "NewsHub Daily Summary - %s\n", date)
	b.WriteString(summaryRule + "\n\n")

	if len(articles) == 0 {
		b.WriteString("No articles available at this time.\n\n")
	} else {
		heroIdx := 0
		for i, a := range articles {
			if a.IsHero {
				heroIdx = i
				break
			}
		}
		hero := articles[heroIdx]

		fmt.Fprintf(&b, "HEADLINE: %s\n", hero.Title)
		fmt.Fprintf(&b, "SOURCE: %s\n", hero.Source.Name)
		fmt.Fprintf(&b, "LINK: %s\n\n", hero.Link)

		b.WriteString("OTHER STORIES:\n")
		b.WriteString(strings.Repeat("-", 50) + "\n\n")

		for i, a := range articles {
			if i == heroIdx {
				continue
			}
			fmt.Fprintf(&b, "TITLE: %s\n", a.Title)
			fmt.Fprintf(&b, "SOURCE: %s\n", a.Source.Name)
			fmt.Fprintf(&b, "LINK: %s\n\n", a.Link)
		}
	}

	b.WriteString(summaryRule + "\n")
	fmt.Fprintf(&b, "Generated by NewsHub on %s\n", date)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=newshub_summary_%s.txt", date))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(b.String())); err != nil {
		s.logger.Error("summary write failed", "error", err)
	}
}
