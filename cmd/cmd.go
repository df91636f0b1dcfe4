package main

import (
	"github.com/urfave/cli/v3"
)

func infoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Show video or playlist metadata",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "url"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Info,
	}
}

func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "download",
		Aliases: []string{"dl"},
		Usage:   "Download a video or playlist as MP3 and follow its progress",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "url"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Download type (video or playlist); detected from the URL info when omitted",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory the finished file is saved to",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Leave the result on the server",
			},
		},
		Action: r.Download,
	}
}

func queueCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "queue",
		Aliases: []string{"q"},
		Usage:   "Manage the server's batch download queue",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add one or more URLs to the queue",
				ArgsUsage: "<url...>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read URLs from a file, one per line",
					},
				},
				Action: r.QueueAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "Show the queue",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.QueueList,
			},
			{
				Name:   "watch",
				Usage:  "Follow the queue until nothing is left to process",
				Action: r.QueueWatch,
			},
			{
				Name:  "remove",
				Usage: "Remove a queued item",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "task-id"},
				},
				Action: r.QueueRemove,
			},
			{
				Name:   "clear",
				Usage:  "Remove every item from the queue",
				Action: r.QueueClear,
			},
			{
				Name:  "get",
				Usage: "Save the result of a completed task",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "task-id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory the file is saved to",
						Value:   ".",
					},
				},
				Action: r.QueueGet,
			},
		},
	}
}

func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Browse, play and manage downloaded files",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List downloaded files, newest first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (csv, markdown, text, json)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the export to a file instead of stdout",
					},
				},
				Action: r.LibraryList,
			},
			{
				Name:  "play",
				Usage: "Play a file, or the whole library with --all",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Queue every file, starting from name when given",
					},
				},
				Action: r.LibraryPlay,
			},
			{
				Name:  "get",
				Usage: "Save a downloaded file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory the file is saved to",
						Value:   ".",
					},
				},
				Action: r.LibraryGet,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete files from the server",
				ArgsUsage: "<name...>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Do not ask for confirmation",
					},
				},
				Action: r.LibraryDelete,
			},
			{
				Name:      "zip",
				Usage:     "Save several files as one zip archive",
				ArgsUsage: "<name...>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the zip file",
					},
				},
				Action: r.LibraryZip,
			},
		},
	}
}

func cookiesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cookies",
		Usage: "Manage the cookies sent with info and download requests",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show whether cookies are saved",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reveal",
						Usage: "Print the stored value",
					},
				},
				Action: r.CookiesShow,
			},
			{
				Name:  "set",
				Usage: "Save a cookie string or a pasted cURL command",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "value"},
				},
				Action: r.CookiesSet,
			},
			{
				Name:  "import",
				Usage: "Import cookies from a browser \"Copy as cURL\" dump",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "curl-file",
						Usage:    "File containing the cURL command",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "netscape",
						Usage: "Store the cookies in cookies.txt format",
					},
				},
				Action: r.CookiesImport,
			},
			{
				Name:   "clear",
				Usage:  "Remove the saved cookies",
				Action: r.CookiesClear,
			},
		},
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show downloads started from this machine",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of entries to show (0 for all)",
				Value:   20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// apiCommand handles direct backend API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the download backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   r.configPath,
			},
		},
		Action: r.Setup,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory finished downloads are saved to",
				Value:   ".",
			},
		},
		Action: r.TUI,
	}
}
