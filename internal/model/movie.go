package model

import (
	"strings"
	"time"
)

// Movie describes a film in the catalogue.  Movies have an
// independent lifecycle and are referenced by sessions.  Genres are
// persisted as a comma-separated list in the `genres` column; the
// repository converts between the column value and the slice form.
//
// Fields:
//  ID             – primary key identifier.
//  CustomID       – optional external identifier (nullable), kept so
//                   clients can address a movie by a short id like "1".
//  Title          – movie title.
//  Synopsis       – plot summary.
//  Director       – director name.
//  Genres         – list of genre labels.
//  DurationMin    – running time in minutes.
//  Classification – age rating label.
//  PosterURL      – reference to the poster image.
//  ReleaseDate    – theatrical release date.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Movie struct {
	ID             uint64    `json:"id"`                  // movies.id
	CustomID       *string   `json:"custom_id,omitempty"` // movies.custom_id (nullable)
	Title          string    `json:"title"`               // movies.title
	Synopsis       string    `json:"synopsis"`            // movies.synopsis
	Director       string    `json:"director"`            // movies.director
	Genres         []string  `json:"genres"`              // movies.genres (comma separated)
	DurationMin    uint32    `json:"duration"`            // movies.duration_min
	Classification string    `json:"classification"`      // movies.classification
	PosterURL      string    `json:"poster"`              // movies.poster_url
	ReleaseDate    time.Time `json:"release_date"`        // movies.release_date
	CreatedAt      time.Time `json:"created_at"`          // movies.created_at
	UpdatedAt      time.Time `json:"updated_at"`          // movies.updated_at
}

// JoinGenres flattens a genre list into the stored column form.
// Empty entries are dropped and surrounding whitespace is trimmed.
func JoinGenres(genres []string) string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g != "" {
			out = append(out, g)
		}
	}
	return strings.Join(out, ",")
}

// SplitGenres parses the stored column form back into a slice.  An
// empty column yields an empty, non-nil slice.
func SplitGenres(s string) []string {
	out := []string{}
	for _, g := range strings.Split(s, ",") {
		g = strings.TrimSpace(g)
		if g != "" {
			out = append(out, g)
		}
	}
	return out
}
