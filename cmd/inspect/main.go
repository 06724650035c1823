// Command inspect dumps stored message rows as a table, for debugging the
// database of a stopped or running node.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"swapchat/gateway"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	Prefix         string `envconfig:"INSPECT_PREFIX" default:"msg:"`
	Colours        bool   `envconfig:"INSPECT_COLOURS" default:"true"`
}

func main() {
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := openDB(cfg.BadgerFilepath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Sender", "Receiver", "Created", "Read", "Edits", "Text"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(cfg.Prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Secondary indexes hold primary keys, not rows.
			if strings.HasPrefix(key, "id:") || strings.HasPrefix(key, "usr:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				m, err := gateway.DecodeMessage(v)
				if err != nil {
					fmt.Printf("Error decoding key %s: %v\n", key, err)
					return nil
				}

				readMark := "unread"
				if m.Read {
					readMark = "read"
				}
				if cfg.Colours {
					if m.Read {
						readMark = color.Green.Render(readMark)
					} else {
						readMark = color.Yellow.Render(readMark)
					}
				}

				text := m.Text
				if len(text) > 48 {
					text = text[:48] + "..."
				}

				table.Append([]string{
					shorten(key),
					shorten(m.SenderID),
					shorten(m.ReceiverID),
					m.CreatedAt.Format("2006-01-02 15:04:05"),
					readMark,
					fmt.Sprintf("%d", len(m.EditHistory)),
					text,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func shorten(s string) string {
	if len(s) > 24 {
		return s[:24] + "..."
	}
	return s
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
