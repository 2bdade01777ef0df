package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/arscan/archive"
	"github.com/nguyengg/arscan/internal"
	"golang.org/x/time/rate"
)

type List struct {
	SourceOptions
	Patterns []string `short:"p" long:"pattern" description:"regular expressions matched against entry names; [scan] patterns from .arscan or all entries by default"`

	Args struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the local files or S3 URIs (s3://bucket/key) of the archives" required:"yes"`
	} `positional-args:"yes"`

	logger *log.Logger
}

func (c *List) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	patterns, err := patterns(c.Patterns)
	if err != nil {
		return err
	}

	success := 0
	n := len(c.Args.Files)
	for i, file := range c.Args.Files {
		c.logger = internal.NewLogger(i, n, string(file))

		if err = c.list(ctx, string(file), patterns); err == nil {
			success++
			continue
		}

		if errors.Is(err, context.Canceled) {
			break
		}

		c.logger.Printf("list error: %v", err)
	}

	log.Printf("successfully listed %d/%d files", success, n)
	return nil
}

func (c *List) list(ctx context.Context, name string, patterns *archive.Patterns) error {
	format, src, closer, err := c.open(ctx, name, c.logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	var (
		count     int
		size      int64
		out       = c.stdout()
		sometimes = rate.Sometimes{Interval: 5 * time.Second}
	)

	for e, err := range format.Entries(ctx, src, patterns) {
		if err != nil {
			return err
		}

		count++
		size += e.Size()
		_, _ = fmt.Fprintf(out, "%s\t%s\n", humanize.IBytes(uint64(e.Size())), e.Name)

		sometimes.Do(func() {
			c.logger.Printf("listed %d entries so far", count)
		})
	}

	c.logger.Printf("found %d matching %s entries (%s)", count, format.Name(), humanize.IBytes(uint64(size)))
	return nil
}
