package lookup

import (
	"fmt"
	"regexp"
	"strings"
)

// Opts configures a lookup run.  All fields are resolved and validated
// before any reference queries are issued, then treated as immutable.
type Opts struct {
	// Parallelism is the maximum number of chunks processed concurrently.
	Parallelism int
	// ChunkSize is the maximum number of input records per chunk.
	ChunkSize int
	// Info is a comma-delimited list of INFO field names to append to each
	// output line, e.g. "AC,AF".
	Info string
	// InDelim selects the input delimiter: "tab", "space", or "auto".
	InDelim string
	// OutDelim selects the output delimiter; "auto" mirrors the input.
	OutDelim string
	// Report enables the plain-text summary report.
	Report bool
	// ReportPath is the report destination.
	ReportPath string
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	Parallelism: 8,
	ChunkSize:   4096,
	InDelim:     DelimAuto,
	OutDelim:    DelimAuto,
	Report:      true,
}

var infoFieldRegExp = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// parseInfoFields splits and validates a comma-delimited INFO field list.
func parseInfoFields(info string) ([]string, error) {
	if info == "" {
		return nil, nil
	}
	fields := strings.Split(info, ",")
	for _, f := range fields {
		if !infoFieldRegExp.MatchString(f) {
			return nil, fmt.Errorf("invalid INFO field name %q (alphanumeric/underscore only)", f)
		}
	}
	return fields, nil
}

// validate rejects configurations the engine cannot run with.  Violations
// are fatal and must be reported before any processing begins.
func (o *Opts) validate() error {
	if o.Parallelism < 1 {
		return fmt.Errorf("parallelism must be a positive integer: %d", o.Parallelism)
	}
	if o.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be a positive integer: %d", o.ChunkSize)
	}
	if _, err := parseInfoFields(o.Info); err != nil {
		return err
	}
	for _, sel := range []string{o.InDelim, o.OutDelim} {
		if _, err := resolveDelim(sel, '\t'); err != nil {
			return err
		}
	}
	return nil
}
