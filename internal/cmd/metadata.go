package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/arscan/archive"
	"github.com/nguyengg/arscan/internal"
)

type Metadata struct {
	SourceOptions
	Control bool `long:"control" description:"parse the control file inside Debian packages instead of reading only the ar headers"`

	Args struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the local files or S3 URIs (s3://bucket/key) of the archives" required:"yes"`
	} `positional-args:"yes"`

	logger *log.Logger
}

func (c *Metadata) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	success := 0
	n := len(c.Args.Files)
	for i, file := range c.Args.Files {
		c.logger = internal.NewLogger(i, n, string(file))

		err := c.print(ctx, string(file))
		if err == nil {
			success++
			continue
		}

		if errors.Is(err, context.Canceled) {
			break
		}

		c.logger.Printf("read metadata error: %v", err)
	}

	log.Printf("successfully read metadata from %d/%d files", success, n)
	return nil
}

func (c *Metadata) print(ctx context.Context, name string) error {
	format, src, closer, err := c.open(ctx, name, c.logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	if !format.SupportsMetadata() {
		return fmt.Errorf("%s archives have no metadata", format.Name())
	}

	if _, ok := format.(archive.Ar); ok && c.Control {
		format = archive.Ar{Control: true}
	}

	m, err := format.Metadata(ctx, src)
	if err != nil {
		return err
	}

	out := c.stdout()
	_, _ = fmt.Fprintf(out, "%s:\n", name)
	_, _ = fmt.Fprintf(out, "\tPackage: %s\n", m.Package)
	_, _ = fmt.Fprintf(out, "\tVersion: %s\n", m.Version)
	if m.Architecture != "" {
		_, _ = fmt.Fprintf(out, "\tArchitecture: %s\n", m.Architecture)
	}
	if m.Description != "" {
		_, _ = fmt.Fprintf(out, "\tDescription: %s\n", strings.ReplaceAll(m.Description, "\n", "\n\t  "))
	}

	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		switch k {
		case "Package", "Version", "Architecture", "Description":
		default:
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	for _, k := range keys {
		_, _ = fmt.Fprintf(out, "\t%s: %s\n", k, m.Fields[k])
	}

	return nil
}
