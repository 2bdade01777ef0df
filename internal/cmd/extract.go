package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/arscan/archive"
	"github.com/nguyengg/arscan/internal"
	"github.com/nguyengg/arscan/internal/source"
	"github.com/nguyengg/arscan/util"
	"github.com/schollz/progressbar/v3"
)

type Extract struct {
	SourceOptions
	Patterns     []string `short:"p" long:"pattern" description:"regular expressions matched against entry names; [scan] patterns from .arscan or all entries by default"`
	Dir          string   `short:"C" long:"directory" default:"." description:"parent directory of the extracted contents"`
	NoUnwrapRoot bool     `long:"no-unwrap-root" description:"keep the common root directory of the entries instead of removing it"`

	Args struct {
		Files []flags.Filename `positional-arg-name:"file" description:"the local files or S3 URIs (s3://bucket/key) of the archives" required:"yes"`
	} `positional-args:"yes"`

	logger *log.Logger
	// bar overrides the progress bar in tests.
	bar func(description string) *progressbar.ProgressBar
}

func (c *Extract) Execute(args []string) error {
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
		c.logger.Printf("start extracting")

		var dir string
		if dir, err = c.extract(ctx, string(file), patterns); err == nil {
			c.logger.Printf(`extracted to "%s"`, dir)
			success++
			continue
		}

		if errors.Is(err, context.Canceled) {
			break
		}

		c.logger.Printf("extract error: %v", err)
	}

	log.Printf("successfully extracted %d/%d files", success, n)
	return nil
}

// findRootDir makes a first pass over the archive to find the common root directory of the matching entries.
func (c *Extract) findRootDir(ctx context.Context, name string, patterns *archive.Patterns) (rootDir internal.RootDir, err error) {
	format, src, closer, err := c.open(ctx, name, c.logger)
	if err != nil {
		return "", err
	}
	defer closer.Close()

	fn := internal.NewRootDirFinder()
	for e, err := range format.Entries(ctx, src, patterns) {
		if err != nil {
			return "", err
		}

		if isRootEntry(e.Name) {
			continue
		}

		name := e.Name
		if e.Mode.IsDir() && !strings.HasSuffix(name, "/") && !strings.HasSuffix(name, "\\") {
			name += "/"
		}

		var ok bool
		if rootDir, ok = fn(name); !ok {
			return "", nil
		}
	}

	return rootDir, nil
}

// extract writes the matching entries to a new directory named after the archive and returns that directory.
func (c *Extract) extract(ctx context.Context, name string, patterns *archive.Patterns) (string, error) {
	var (
		rootDir internal.RootDir
		err     error
	)
	if !c.NoUnwrapRoot {
		if rootDir, err = c.findRootDir(ctx, name, patterns); err != nil {
			return "", err
		}
	}

	format, src, closer, err := c.open(ctx, name, c.logger)
	if err != nil {
		return "", err
	}
	defer closer.Close()

	base := source.Base(name)
	stem, _ := util.StemAndExt(base)
	out, err := util.MkExclDir(c.Dir, stem, 0755)
	if err != nil {
		return "", err
	}

	success := false
	defer func() {
		if !success {
			_ = os.RemoveAll(out)
		}
	}()

	var bar *progressbar.ProgressBar
	if c.bar != nil {
		bar = c.bar(fmt.Sprintf(`extracting "%s"`, base))
	} else {
		bar = internal.StderrBytes(-1, fmt.Sprintf(`extracting "%s"`, base))
	}
	defer bar.Close()

	buf := make([]byte, 32*1024)
	for e, err := range format.Entries(ctx, src, patterns) {
		if err != nil {
			return "", err
		}

		name := e.Name
		if e.Mode.IsDir() {
			name += "/"
		}

		if err = c.write(ctx, rootDir.Join(out, name), out, e, bar, buf); err != nil {
			return "", err
		}
	}

	_ = bar.Finish()
	success = true
	return out, nil
}

// isRootEntry returns true if the entry name refers to the archive root such as "." in cpio or the GNU ar symbol and
// string tables "/" and "//".
func isRootEntry(name string) bool {
	return path.Clean("/"+strings.ReplaceAll(name, "\\", "/")) == "/"
}

func (c *Extract) write(ctx context.Context, dst, dir string, e *archive.Entry, bar io.Writer, buf []byte) error {
	rel, err := filepath.Rel(dir, dst)
	switch {
	case err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)):
		return fmt.Errorf(`entry "%s" is outside the output directory`, e.Name)
	case rel == ".":
		return nil
	case e.Mode.IsDir():
		if err = os.MkdirAll(dst, 0755); err != nil {
			return fmt.Errorf("create directory error: %w", err)
		}
		return nil
	case !e.Mode.IsRegular():
		c.logger.Printf(`skipping "%s" of type %s`, e.Name, e.Mode.Type())
		return nil
	}

	if err = os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create directory error: %w", err)
	}

	perm := e.Mode.Perm()
	if perm == 0 {
		perm = 0644
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file error: %w", err)
	}

	src := e.Open()
	_, err = util.CopyBufferWithContext(ctx, io.MultiWriter(f, bar), src, buf)
	_ = src.Close()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf(`write "%s" error: %w`, e.Name, err)
	}

	return nil
}
