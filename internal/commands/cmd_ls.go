package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/postbox/internal/core/message"
	"github.com/hay-kot/postbox/internal/printer"
	"github.com/hay-kot/postbox/internal/styles"
)

type LsCmd struct {
	flags  *Flags
	asJSON bool
	last   int
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "ls",
		Usage:       "List stored messages",
		UsageText:   "postbox ls [options]",
		Description: "Displays stored messages in arrival order. Output is a table on a terminal and JSON otherwise.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the stored document as JSON",
				Destination: &cmd.asJSON,
			},
			&cli.IntFlag{
				Name:        "last",
				Aliases:     []string{"n"},
				Usage:       "show only the last N messages",
				Destination: &cmd.last,
			},
		},
		Action: cmd.run,
	})

	return app
}

// listEntry is one stored message with its key.
type listEntry struct {
	Key      string `json:"timestamp"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	store, closeStore, err := openStore(cmd.flags.Config)
	if err != nil {
		return err
	}
	defer closeStore() //nolint:errcheck

	res := store.Load(ctx)
	if res.Corrupt() {
		p.Warnf("Message store is corrupted; the listener will start it over on the next message")
	} else if !res.OK() {
		return fmt.Errorf("load messages: %w", res.Err)
	}

	entries := listEntries(res.OrEmpty(), cmd.last)
	out := c.Root().Writer

	if cmd.asJSON || !isTerminal(out) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		p.Infof("No messages found")
		return nil
	}

	_, err = fmt.Fprintln(out, renderTable(entries))
	return err
}

// listEntries orders doc by key and keeps the last n entries when n > 0.
func listEntries(doc message.Document, n int) []listEntry {
	keys := doc.Keys()
	if n > 0 && len(keys) > n {
		keys = keys[len(keys)-n:]
	}

	return lo.Map(keys, func(k string, _ int) listEntry {
		rec := doc[k]
		return listEntry{Key: k, Username: rec.Username, Message: rec.Message}
	})
}

func renderTable(entries []listEntry) string {
	t := table.New().
		Border(styles.TableBorder).
		BorderStyle(styles.DividerStyle).
		Headers("TIMESTAMP", "USERNAME", "MESSAGE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeaderStyle
			}
			if col == 0 {
				return styles.TimestampStyle
			}
			return styles.CellStyle
		})

	for _, e := range entries {
		t.Row(e.Key, e.Username, e.Message)
	}

	return t.String()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
