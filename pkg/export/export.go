// Package export renders archive and leaderboard data as CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/PancyStudios/VeilleBot/internal/xp"
	"github.com/PancyStudios/VeilleBot/pkg/models"
)

// Articles writes one row per article under a title,link,date header.
func Articles(w io.Writer, articles []models.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"title", "link", "date"}); err != nil {
		return err
	}
	for _, a := range articles {
		if err := cw.Write([]string{a.Title, a.Link, a.Date}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Leaderboard writes one row per user in rank order.
func Leaderboard(w io.Writer, entries []xp.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "user_id", "points", "level"}); err != nil {
		return err
	}
	for i, e := range entries {
		row := []string{
			strconv.Itoa(i + 1),
			e.UserID,
			strconv.Itoa(e.Points),
			strconv.Itoa(e.Level),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
