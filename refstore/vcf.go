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

package refstore

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// VCF body columns.  Per-sample columns, if any, are ignored.
const (
	colChrom = iota
	colPos
	colID
	colRef
	colAlt
	colQual
	colFilter
	colInfo
	nVCFCol
)

// parseVCFLine parses one tab-separated VCF data line into a Locus and a
// Record carrying the requested INFO fields.
func parseVCFLine(line string, infoFields []string) (Locus, Record, error) {
	cols := strings.SplitN(line, "\t", nVCFCol+1)
	if len(cols) < nVCFCol {
		return Locus{}, Record{}, errors.Errorf("malformed VCF line (%d columns): %.80s", len(cols), line)
	}
	pos, err := strconv.ParseUint(cols[colPos], 10, 64)
	if err != nil {
		return Locus{}, Record{}, errors.Wrapf(err, "malformed VCF POS %q", cols[colPos])
	}
	rec := Record{
		ID:  cols[colID],
		Ref: cols[colRef],
		Alt: cols[colAlt],
	}
	if len(infoFields) > 0 {
		rec.Info = extractInfo(cols[colInfo], infoFields)
	}
	return Locus{Chrom: cols[colChrom], Pos: pos}, rec, nil
}

// extractInfo pulls the requested keys out of a semicolon-delimited VCF INFO
// column.  Key=value entries yield the value, bare flag keys yield "1", and
// absent keys yield ".".
func extractInfo(info string, fields []string) []string {
	values := make([]string, len(fields))
	for i := range values {
		values[i] = "."
	}
	if info == "" || info == "." {
		return values
	}
	for _, entry := range strings.Split(info, ";") {
		key := entry
		value := "1"
		if eq := strings.IndexByte(entry, '='); eq >= 0 {
			key = entry[:eq]
			value = entry[eq+1:]
		}
		for i, f := range fields {
			if f == key {
				values[i] = value
			}
		}
	}
	return values
}

// collectMatches merges one reference line into found, keeping only loci the
// caller asked for and the first record seen per locus.
func collectMatches(line string, want map[Locus]struct{}, infoFields []string, found map[Locus]Record) error {
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	locus, rec, err := parseVCFLine(line, infoFields)
	if err != nil {
		return err
	}
	if _, ok := want[locus]; !ok {
		// A region query may also return records merely overlapping the
		// position (e.g. an upstream deletion); only exact POS matches count.
		return nil
	}
	if _, dup := found[locus]; dup {
		return nil
	}
	found[locus] = rec
	return nil
}
