package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"ytfeed/lib/platforms/youtube/account"
	"ytfeed/lib/platforms/youtube/feed"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type outputFlags struct {
	json  bool
	table bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "Print records as a JSON array.")
	cmd.Flags().BoolVar(&o.table, "table", false, "Print records as a table.")
	cmd.MarkFlagsMutuallyExclusive("json", "table")
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printIDs streams video ids one per line as they are read.
func printIDs(ctx context.Context, seq *feed.Seq[string]) error {
	for seq.Next(ctx) {
		fmt.Println(seq.Value())
	}
	return seq.Err()
}

func printHistory(ctx context.Context, client *account.Client, o outputFlags) error {
	if !o.json && !o.table {
		seq, err := client.HistoryVideoIDs(ctx)
		if err != nil {
			return err
		}
		return printIDs(ctx, seq)
	}

	seq, err := client.HistoryRecords(ctx)
	if err != nil {
		return err
	}
	records, err := feed.Collect(ctx, seq)
	if err != nil {
		return err
	}
	if o.json {
		return printJSON(records)
	}

	t := newTable()
	t.AppendHeader(table.Row{"Video", "Title", "Channel", "Length", "Views"})
	for _, r := range records {
		t.AppendRow(table.Row{r.VideoID, r.Title, r.OwnerText, r.Length, r.ShortViewCountText})
	}
	t.Render()
	return nil
}

func printPlaylist(ctx context.Context, client *account.Client, playlistID string, o outputFlags) error {
	if !o.json && !o.table {
		seq, err := client.PlaylistVideoIDs(ctx, playlistID)
		if err != nil {
			return err
		}
		return printIDs(ctx, seq)
	}

	seq, err := client.PlaylistRecords(ctx, playlistID)
	if err != nil {
		return err
	}
	records, err := feed.Collect(ctx, seq)
	if err != nil {
		return err
	}
	if o.json {
		return printJSON(records)
	}

	t := newTable()
	t.AppendHeader(table.Row{"Video", "Title", "Owner"})
	for _, r := range records {
		t.AppendRow(table.Row{r.VideoID, r.Title, r.Owner})
	}
	t.Render()
	return nil
}
