// Copyright 2026 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lookup

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
)

// Delimiter selectors accepted on the configuration surface.
const (
	DelimAuto  = "auto"
	DelimTab   = "tab"
	DelimSpace = "space"
)

// delimSampleLines is the number of leading lines inspected by delimiter
// auto-detection.
const delimSampleLines = 100

// maxInputLineBytes bounds input line length.
const maxInputLineBytes = 1 << 20

// RawRecord is one validated input line: the chromosome token exactly as
// written, and the 1-based position.  A record's index in the parsed slice
// is its ordering key for the rest of the run.
type RawRecord struct {
	Chrom string
	Pos   uint64
}

// DetectDelim picks tab or space by majority count over a sample of leading
// lines, defaulting to tab on a tie.
func DetectDelim(sample []string) byte {
	nTab, nSpace := 0, 0
	for _, line := range sample {
		nTab += strings.Count(line, "\t")
		nSpace += strings.Count(line, " ")
	}
	if nSpace > nTab {
		return ' '
	}
	return '\t'
}

// resolveDelim maps a delimiter selector to its byte, with detected standing
// in for "auto".
func resolveDelim(selector string, detected byte) (byte, error) {
	switch selector {
	case DelimAuto, "":
		return detected, nil
	case DelimTab:
		return '\t', nil
	case DelimSpace:
		return ' ', nil
	}
	return 0, fmt.Errorf("invalid delimiter selector %q (want %q, %q or %q)", selector, DelimTab, DelimSpace, DelimAuto)
}

// ParseRecords parses "chromosome position [ignored...]" lines.  Blank
// lines, "#" comments, and lines whose position column is not an unsigned
// integer are silently excluded; they appear in no output and no count.
func ParseRecords(lines []string, delim byte) []RawRecord {
	records := make([]RawRecord, 0, len(lines))
	for _, line := range lines {
		if line == "" || line[0] == '#' {
			continue
		}
		var chrom, posStr string
		if delim == ' ' {
			// Space-delimited sources routinely pad with runs of spaces;
			// treat them as one separator.
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			chrom, posStr = fields[0], fields[1]
		} else {
			fields := strings.SplitN(line, string(delim), 3)
			if len(fields) < 2 {
				continue
			}
			chrom, posStr = fields[0], fields[1]
		}
		pos, err := strconv.ParseUint(posStr, 10, 64)
		if err != nil || chrom == "" {
			continue
		}
		records = append(records, RawRecord{Chrom: chrom, Pos: pos})
	}
	return records
}

// readInputLines slurps the input stream (transparently decompressing), so
// that delimiter detection and parsing can run over the same lines.
func readInputLines(ctx context.Context, path string) (lines []string, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, in, &err)
	reader, _ := compress.NewReader(in.Reader(ctx))
	defer func() {
		if e := reader.Close(); e != nil && err == nil {
			err = e
		}
	}()
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(nil, maxInputLineBytes)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	err = scanner.Err()
	return
}

// readRecords loads and parses the input file, returning the records and the
// delimiter that was detected from the leading sample (used as the "auto"
// output delimiter).
func readRecords(ctx context.Context, path, inDelim string) ([]RawRecord, byte, error) {
	lines, err := readInputLines(ctx, path)
	if err != nil {
		return nil, 0, err
	}
	sample := lines
	if len(sample) > delimSampleLines {
		sample = sample[:delimSampleLines]
	}
	detected := DetectDelim(sample)
	delim, err := resolveDelim(inDelim, detected)
	if err != nil {
		return nil, 0, err
	}
	return ParseRecords(lines, delim), delim, nil
}
