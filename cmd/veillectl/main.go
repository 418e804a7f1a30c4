// Command veillectl inspects the bot's data files: XP totals, warn records
// and the article archive. `xp show --live` asks the running bot instead.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/PancyStudios/VeilleBot/internal/moderation"
	"github.com/PancyStudios/VeilleBot/internal/xp"
	"github.com/PancyStudios/VeilleBot/pkg/config"
	"github.com/PancyStudios/VeilleBot/pkg/database"
	"github.com/PancyStudios/VeilleBot/pkg/export"
	"github.com/PancyStudios/VeilleBot/pkg/leveling"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
	"github.com/PancyStudios/VeilleBot/pkg/models"
	"github.com/PancyStudios/VeilleBot/pkg/mqtt"
)

func main() {
	logger.Init(logger.Options{Console: os.Stderr})
	newApp().RunAndExitOnError()
}

func newApp() *cli.App {
	app := &cli.App{
		Name:    "veillectl",
		Usage:   "inspect VeilleBot data files",
		Version: config.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "xp-file",
				Usage:   "XP data file",
				Value:   "xp_data.json",
				EnvVars: []string{"XP_FILE"},
			},
			&cli.StringFlag{
				Name:    "warns-file",
				Usage:   "warns data file",
				Value:   "warns_data.json",
				EnvVars: []string{"WARNS_FILE"},
			},
			&cli.StringFlag{
				Name:    "archive",
				Usage:   "article archive database",
				Value:   "veille.db",
				EnvVars: []string{"ARCHIVE_PATH"},
			},
			&cli.IntFlag{
				Name:    "xp-per-level",
				Usage:   "points needed per level",
				Value:   100,
				EnvVars: []string{"XP_PER_LEVEL"},
			},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:  "xp",
			Usage: "read XP totals",
			Subcommands: []*cli.Command{
				{
					Name:      "show",
					Usage:     "show a user's points and level",
					ArgsUsage: "<user-id>",
					Flags: []cli.Flag{
						&cli.BoolFlag{
							Name:  "live",
							Usage: "ask the running bot over MQTT instead of reading the XP file",
						},
						&cli.StringFlag{Name: "mqtt-host", EnvVars: []string{"MQTT_HOST"}},
						&cli.StringFlag{Name: "mqtt-port", Value: "1883", EnvVars: []string{"MQTT_PORT"}},
						&cli.StringFlag{Name: "mqtt-user", EnvVars: []string{"MQTT_USER"}},
						&cli.StringFlag{Name: "mqtt-password", EnvVars: []string{"MQTT_PASSWORD"}},
						&cli.DurationFlag{Name: "timeout", Value: 5 * time.Second},
					},
					Action: runXPShow,
				},
				{
					Name:  "top",
					Usage: "print the leaderboard",
					Flags: []cli.Flag{
						&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10},
					},
					Action: runXPTop,
				},
				{
					Name:  "export",
					Usage: "write the full leaderboard as CSV",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, stdout when empty"},
					},
					Action: runXPExport,
				},
			},
		},
		{
			Name:  "warns",
			Usage: "read warn records",
			Subcommands: []*cli.Command{
				{
					Name:      "list",
					Usage:     "list a user's warns",
					ArgsUsage: "<user-id>",
					Action:    runWarnsList,
				},
			},
		},
		{
			Name:  "articles",
			Usage: "read the article archive",
			Subcommands: []*cli.Command{
				{
					Name:  "recent",
					Usage: "print the most recent articles",
					Flags: []cli.Flag{
						&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 5},
					},
					Action: runArticlesRecent,
				},
				{
					Name:  "add",
					Usage: "archive an article by hand",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "title", Required: true},
						&cli.StringFlag{Name: "link", Required: true},
						&cli.StringFlag{Name: "date", Usage: "publication date, YYYY-MM-DD"},
					},
					Action: runArticlesAdd,
				},
			},
		},
	}
	return app
}

func openTracker(cctx *cli.Context) (*xp.Tracker, error) {
	perLevel := cctx.Int("xp-per-level")
	if perLevel <= 0 {
		return nil, fmt.Errorf("--xp-per-level must be positive, got %d", perLevel)
	}
	return xp.NewTracker(database.NewFileStore[int]("xp", cctx.String("xp-file")), perLevel), nil
}

func userArg(cctx *cli.Context) (string, error) {
	id := cctx.Args().First()
	if id == "" {
		return "", fmt.Errorf("need to provide a user id as an argument")
	}
	return id, nil
}

// botClient is the part of the MQTT communicator veillectl needs.
type botClient interface {
	RequestInto(topic string, payload interface{}, timeout time.Duration, out interface{}) error
	Destroy()
}

var dialBot = func(cctx *cli.Context) (botClient, error) {
	host := cctx.String("mqtt-host")
	if host == "" {
		return nil, fmt.Errorf("--live needs --mqtt-host or MQTT_HOST")
	}
	return mqtt.Dial(host, cctx.String("mqtt-port"), cctx.String("mqtt-user"), cctx.String("mqtt-password"),
		"veillectl", cctx.Duration("timeout"))
}

func runXPShow(cctx *cli.Context) error {
	id, err := userArg(cctx)
	if err != nil {
		return err
	}
	if cctx.Bool("live") {
		return runXPShowLive(cctx, id)
	}
	t, err := openTracker(cctx)
	if err != nil {
		return err
	}

	points := t.Points(id)
	fmt.Fprintf(cctx.App.Writer, "%s: %d XP, level %d, %d XP to next level\n",
		id, points, t.Level(id), leveling.ToNext(points, t.PerLevel()))
	return nil
}

func runXPShowLive(cctx *cli.Context, id string) error {
	perLevel := cctx.Int("xp-per-level")
	if perLevel <= 0 {
		return fmt.Errorf("--xp-per-level must be positive, got %d", perLevel)
	}

	client, err := dialBot(cctx)
	if err != nil {
		return err
	}
	defer client.Destroy()

	var e xp.Entry
	if err := client.RequestInto("xp/get", map[string]string{"userId": id}, cctx.Duration("timeout"), &e); err != nil {
		return err
	}
	fmt.Fprintf(cctx.App.Writer, "%s: %d XP, level %d, %d XP to next level (live)\n",
		e.UserID, e.Points, e.Level, leveling.ToNext(e.Points, perLevel))
	return nil
}

func runXPTop(cctx *cli.Context) error {
	t, err := openTracker(cctx)
	if err != nil {
		return err
	}

	entries := t.Leaderboard(cctx.Int("limit"))
	if len(entries) == 0 {
		fmt.Fprintln(cctx.App.Writer, "no XP recorded")
		return nil
	}

	tw := tabwriter.NewWriter(cctx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tPOINTS\tLEVEL")
	for i, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", i+1, e.UserID, e.Points, e.Level)
	}
	return tw.Flush()
}

func runXPExport(cctx *cli.Context) error {
	t, err := openTracker(cctx)
	if err != nil {
		return err
	}

	var w io.Writer = cctx.App.Writer
	if out := cctx.String("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return export.Leaderboard(w, t.Leaderboard(0))
}

func runWarnsList(cctx *cli.Context) error {
	id, err := userArg(cctx)
	if err != nil {
		return err
	}

	ledger := moderation.NewLedger(database.NewFileStore[[]models.WarnRecord]("warns", cctx.String("warns-file")))
	warns := ledger.List(id)
	if len(warns) == 0 {
		fmt.Fprintf(cctx.App.Writer, "%s has no warns\n", id)
		return nil
	}

	tw := tabwriter.NewWriter(cctx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDATE\tMOD\tREASON")
	for i, w := range warns {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, w.Date, w.Mod, w.Reason)
	}
	return tw.Flush()
}

func runArticlesRecent(cctx *cli.Context) error {
	path := cctx.String("archive")
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("archive %s not found", path)
	}

	archive, err := database.OpenArchive(path)
	if err != nil {
		return err
	}
	defer archive.Close()

	articles, err := archive.Recent(context.Background(), cctx.Int("limit"))
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		fmt.Fprintln(cctx.App.Writer, "archive is empty")
		return nil
	}

	tw := tabwriter.NewWriter(cctx.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTITLE\tLINK")
	for _, a := range articles {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Date, a.Title, a.Link)
	}
	return tw.Flush()
}

func runArticlesAdd(cctx *cli.Context) error {
	archive, err := database.OpenArchive(cctx.String("archive"))
	if err != nil {
		return err
	}
	defer archive.Close()

	art := models.Article{
		Title: cctx.String("title"),
		Link:  cctx.String("link"),
		Date:  cctx.String("date"),
	}
	added, err := archive.Add(context.Background(), art)
	if err != nil {
		return err
	}
	if !added {
		fmt.Fprintf(cctx.App.Writer, "%s is already archived\n", art.Link)
		return nil
	}
	fmt.Fprintf(cctx.App.Writer, "archived %q\n", art.Title)
	return nil
}
