package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/urfave/cli/v2"

	"eventsnap/config"
	"eventsnap/internal/adapters/geocode"
	"eventsnap/internal/domain"
	"eventsnap/internal/repository/postgres"
	"eventsnap/internal/services"
)

// snapctl is the operator's companion to the HTTP API: the same snapshot
// engine, driven directly against the database for backups, restores and
// cleanups without going through auth.
func main() {
	app := &cli.App{
		Name:  "snapctl",
		Usage: "export, import, reset and delete event snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "postgres connection string (defaults to DATABASE_URL)",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.BoolFlag{
				Name:  "geocode",
				Usage: "resolve missing event coordinates during import",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "export",
				Usage:     "write an event snapshot to a file or stdout",
				ArgsUsage: "<event-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
				},
				Action: exportAction,
			},
			{
				Name:      "import",
				Usage:     "merge a snapshot file into an event",
				ArgsUsage: "<event-id> <file>",
				Action:    importAction,
			},
			{
				Name:      "reset",
				Usage:     "wipe an event's rooms, meetings and attendee links",
				ArgsUsage: "<event-id>",
				Action:    resetAction,
			},
			{
				Name:      "delete",
				Usage:     "delete an event and everything scoped to it",
				ArgsUsage: "<event-id>",
				Action:    deleteAction,
			},
			{
				Name:  "export-system",
				Usage: "write a snapshot of every event to a file or stdout",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
				},
				Action: exportSystemAction,
			},
			{
				Name:      "import-system",
				Usage:     "import a system-wide snapshot file",
				ArgsUsage: "<file>",
				Action:    importSystemAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "snapctl:", err)
		os.Exit(1)
	}
}

func newService(c *cli.Context) (domain.SnapshotService, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	dbURL := c.String("database-url")
	if dbURL == "" {
		dbURL = cfg.DBUrl
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database unreachable: %w", err)
	}

	var geocoder domain.Geocoder
	if c.Bool("geocode") {
		geocoder = geocode.NewNominatimGeocoder(&http.Client{Timeout: 10 * time.Second}, cfg.GeocoderBase)
	}

	svc := services.NewSnapshotService(
		postgres.NewEventRepository(db),
		postgres.NewRoomRepository(db),
		postgres.NewAttendeeRepository(db),
		postgres.NewMeetingRepository(db),
		postgres.NewMaintenanceRepository(db),
		geocoder,
		config.NewLogger(),
		5*time.Minute,
	)
	return svc, db, nil
}

func writeDoc(doc *domain.SnapshotDocument, out string) error {
	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func readDoc(path string) (*domain.SnapshotDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var doc domain.SnapshotDocument
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &doc, nil
}

func exportAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: snapctl export <event-id>", 2)
	}
	svc, db, err := newService(c)
	if err != nil {
		return err
	}
	defer db.Close()
	doc, err := svc.Export(context.Background(), c.Args().Get(0))
	if err != nil {
		return err
	}
	return writeDoc(doc, c.String("out"))
}

func importAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: snapctl import <event-id> <file>", 2)
	}
	svc, db, err := newService(c)
	if err != nil {
		return err
	}
	defer db.Close()
	doc, err := readDoc(c.Args().Get(1))
	if err != nil {
		return err
	}
	// Direct database access; the operator acts with root authority.
	result, err := svc.Import(context.Background(), c.Args().Get(0), "snapctl", true, doc)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func resetAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: snapctl reset <event-id>", 2)
	}
	svc, db, err := newService(c)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := svc.Reset(context.Background(), c.Args().Get(0), "snapctl", true); err != nil {
		return err
	}
	fmt.Println("reset done")
	return nil
}

func deleteAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: snapctl delete <event-id>", 2)
	}
	svc, db, err := newService(c)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := svc.Delete(context.Background(), c.Args().Get(0)); err != nil {
		return err
	}
	fmt.Println("deleted")
	return nil
}

func exportSystemAction(c *cli.Context) error {
	svc, db, err := newService(c)
	if err != nil {
		return err
	}
	defer db.Close()
	doc, err := svc.ExportSystem(context.Background())
	if err != nil {
		return err
	}
	return writeDoc(doc, c.String("out"))
}

func importSystemAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: snapctl import-system <file>", 2)
	}
	svc, db, err := newService(c)
	if err != nil {
		return err
	}
	defer db.Close()
	doc, err := readDoc(c.Args().Get(0))
	if err != nil {
		return err
	}
	result, err := svc.ImportSystem(context.Background(), doc)
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func printResult(result *domain.ImportResult) {
	fmt.Printf("imported %d, skipped %d\n", result.Imported, result.Skipped)
	for _, warning := range result.Warnings {
		fmt.Println("warning:", warning)
	}
}
