package archive

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

var (
	// debianControlTar matches the control member of a Debian package, compressed or not.
	debianControlTar = MustPatterns(`^control\.tar(\.(gz|bz2|lz|xz|zst))?$`)
	// debianControlFile matches the control file inside the control member.
	debianControlFile = MustPatterns(`^(\./)?control$`)
)

// readDebianControl finds the control file from the given control.tar content and parses its fields.
func readDebianControl(ctx context.Context, controlTar []byte) (map[string]string, error) {
	for e, err := range (Tar{}).Entries(ctx, bytes.NewReader(controlTar), debianControlFile) {
		if err != nil {
			return nil, err
		}

		return parseDebianControl(e.Content)
	}

	return nil, fmt.Errorf("%w: no control file found", ErrInvalidFormat)
}

// parseDebianControl parses the first paragraph of a deb822 control file.
//
// Continuation lines have their leading whitespace character removed and are joined with "\n"; a continuation line
// consisting of a single "." stands for an empty line.
func parseDebianControl(b []byte) (map[string]string, error) {
	var (
		fields  = make(map[string]string)
		key     string
		scanner = bufio.NewScanner(bytes.NewReader(b))
		lineNo  int
	)

	// a single line may be as long as the whole control file.
	scanner.Buffer(nil, max(len(b)+1, bufio.MaxScanTokenSize))

	for scanner.Scan() {
		line := scanner.Text()
		lineNo++

		switch {
		case strings.TrimSpace(line) == "":
			if len(fields) != 0 {
				return fields, nil
			}
		case strings.HasPrefix(line, "#"):
		case line[0] == ' ' || line[0] == '\t':
			if key == "" {
				return nil, fmt.Errorf("%w: line %d: continuation line without field", ErrMalformedField, lineNo)
			}

			if value := line[1:]; value == "." {
				fields[key] += "\n"
			} else {
				fields[key] += "\n" + value
			}
		default:
			k, v, ok := strings.Cut(line, ":")
			if !ok || k == "" {
				return nil, fmt.Errorf("%w: line %d: expected \"Field: value\", got %q", ErrMalformedField, lineNo, line)
			}

			key = k
			fields[key] = strings.TrimSpace(v)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan control file error: %w", err)
	}

	return fields, nil
}
