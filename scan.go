package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"

	"github.com/olivier-w/climpd/internal/media"
	"github.com/olivier-w/climpd/internal/tags"
	"github.com/olivier-w/climpd/internal/util"
)

func runScan(dir string, out io.Writer) error {
	reader := tags.NewReader()

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Reading tags"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}

	tracks, err := media.Scan(context.Background(), dir, reader.Extract, progress)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tARTIST\tYEAR\tLENGTH\tPATH")
	for _, t := range tracks {
		year := ""
		if t.Year > 0 {
			year = fmt.Sprint(t.Year)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.DisplayTitle(), t.Artist, year, util.FormatDuration(t.Duration), t.Path)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d tracks\n", len(tracks))
	return nil
}
