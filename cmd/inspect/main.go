// Inspect dumps the relay's author documents and their pending
// notifications straight from BadgerDB, for operators debugging
// offline delivery.
//
// Usage: inspect -db /path/to/badger [-author email]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/YUGESHKARAN/web-socket.io/domain"
)

func main() {
	dbPath := flag.String("db", "", "Path to badger DB")
	authorFilter := flag.String("author", "", "Only show this author email")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("Missing -db flag")
	}

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	authors, err := loadAuthors(db, *authorFilter)
	if err != nil {
		log.Fatal("Error while scanning authors: ", err)
	}

	color.Bold.Println("Authors")
	authorTable := newTable([]string{"Email", "Name", "Posts", "Messages", "Pending Notifications"})
	for _, a := range authors {
		messages := 0
		for _, p := range a.Posts {
			messages += len(p.Messages)
		}
		authorTable.Append([]string{
			a.Email, a.Name,
			fmt.Sprint(len(a.Posts)),
			fmt.Sprint(messages),
			fmt.Sprint(len(a.Notifications)),
		})
	}
	authorTable.Render()

	color.Bold.Println("\nPending notifications")
	pendingTable := newTable([]string{"Author", "Post", "From", "Message", "At"})
	for _, a := range authors {
		for _, n := range a.Notifications {
			pendingTable.Append([]string{
				a.Email, string(n.PostID), n.User, n.Message,
				n.Timestamp.Format("2006-01-02 15:04:05"),
			})
		}
	}
	pendingTable.Render()
}

func loadAuthors(db *badger.DB, filter string) ([]domain.Author, error) {
	var authors []domain.Author
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("author:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			email := strings.TrimPrefix(string(item.Key()), "author:")
			if filter != "" && email != filter {
				continue
			}
			err := item.Value(func(v []byte) error {
				var a domain.Author
				if err := json.Unmarshal(v, &a); err != nil {
					// Log and keep scanning instead of stopping the whole dump
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}
				authors = append(authors, a)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return authors, err
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
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
	return table
}
