package main

import (
	"fmt"
	"os"

	"github.com/jnystrom/contentpipe/internal/ingest"
	"github.com/jnystrom/contentpipe/internal/library"
	"github.com/urfave/cli/v2"
)

const defaultStoreDir = "contentpipe-data"

func main() {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "store-dir",
			Value: defaultStoreDir,
			Usage: "root directory of the content store",
		},
		&cli.StringFlag{
			Name:  "config",
			Value: "contentpipe.yaml",
			Usage: "path to the configuration file",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "only log errors",
		},
	}

	app := &cli.App{
		Name:  "contentpipe",
		Usage: "process scraped web content into an organized markdown library",
		Commands: []*cli.Command{
			{
				Name:  "process",
				Usage: "run the transformation pipeline over a captures file and store the results",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "captures file (YAML list of scraped pages)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "number of concurrent pipeline workers (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "no-history",
						Usage: "skip recording the run in the history database",
					},
				}, commonFlags...),
				Action: ingest.ProcessAction,
			},
			{
				Name:  "list",
				Usage: "list stored file records",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "domain", Usage: "only records from this domain"},
					&cli.StringFlag{Name: "content-type", Usage: "only records with this content type"},
					&cli.StringFlag{Name: "tags", Usage: "comma-separated tags; records must carry all of them"},
					&cli.Float64Flag{Name: "min-quality", Usage: "minimum quality score"},
				}, commonFlags...),
				Action: library.ListAction,
			},
			{
				Name:  "export",
				Usage: "bundle stored files into a zip archive",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "ids", Usage: "comma-separated file IDs to export"},
					&cli.StringFlag{Name: "domain", Usage: "export every record under this domain"},
					&cli.BoolFlag{Name: "no-metadata", Usage: "omit the metadata manifest from the archive"},
				}, commonFlags...),
				Action: library.ExportAction,
			},
			{
				Name:   "stats",
				Usage:  "print aggregate store statistics",
				Flags:  commonFlags,
				Action: library.StatsAction,
			},
			{
				Name:   "cleanup",
				Usage:  "remove files on disk that no index entry references",
				Flags:  commonFlags,
				Action: library.CleanupAction,
			},
			{
				Name:      "delete",
				Usage:     "delete one stored file and its record",
				ArgsUsage: "<file-id>",
				Flags:     commonFlags,
				Action:    library.DeleteAction,
			},
			{
				Name:  "runs",
				Usage: "list recorded batch runs",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "show at most N runs"},
					&cli.IntFlag{Name: "run", Usage: "show one run and its items"},
				}, commonFlags...),
				Action: library.RunsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
