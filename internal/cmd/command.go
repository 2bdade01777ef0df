package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/arscan/internal/config"
)

type Arscan struct {
	Profile string `long:"profile" description:"override the AWS profile for all S3 buckets"`
	Config  string `long:"config" description:"path to the .arscan config file; by default the first .arscan found walking up from the working directory"`

	List     List     `command:"list" alias:"ls" description:"list the matching entries of archives"`
	Extract  Extract  `command:"extract" alias:"x" description:"extract the matching entries of archives"`
	Metadata Metadata `command:"metadata" alias:"meta" description:"print package metadata of ar and Debian archives"`
}

// NewParser returns the parser for all commands.
//
// Config is loaded into config.DefaultLoader before any command is executed.
func NewParser() (*flags.Parser, error) {
	opts := &Arscan{}

	p := flags.NewParser(opts, flags.Default)
	p.Name = "arscan"

	p.CommandHandler = func(command flags.Commander, args []string) error {
		if err := opts.load(context.Background()); err != nil {
			return err
		}

		return command.Execute(args)
	}

	return p, nil
}

func (o *Arscan) load(ctx context.Context) error {
	config.DefaultLoader.Profile = o.Profile

	if o.Config != "" {
		if err := config.DefaultLoader.LoadFile(o.Config); err != nil {
			return fmt.Errorf(`load config "%s" error: %w`, o.Config, err)
		}

		return nil
	}

	name, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config error: %w", err)
	}
	if name != "" {
		log.Printf(`loaded config from "%s"`, name)
	}

	return nil
}
