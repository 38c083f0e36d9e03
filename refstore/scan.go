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
	"bufio"
	"context"
	"path/filepath"
	"strings"
)

// Scan is a Store that answers each batch with one sequential pass over the
// reference text.  It needs no index and accepts bgzf, gzip, or plain files,
// at the cost of full-file reads; prefer Tabix whenever a .tbi index exists.
type Scan struct {
	path string

	// probeLimit caps the number of data lines Probe inspects, so that
	// naming-convention detection stays cheap even on a multi-gigabyte
	// reference.
	probeLimit int
}

const defaultProbeLimit = 100000

// NewScan returns a Scan reading the reference at path.
func NewScan(path string) *Scan {
	return &Scan{path: path, probeLimit: defaultProbeLimit}
}

// Name implements Store.
func (s *Scan) Name() string {
	return filepath.Base(s.path)
}

// Probe implements Store.  It inspects at most probeLimit leading data lines.
func (s *Scan) Probe(ctx context.Context, chrom string) (hit bool, err error) {
	in, closeAll, err := openText(ctx, s.path)
	if err != nil {
		return false, err
	}
	defer func() {
		if e := closeAll(); e != nil && err == nil {
			err = e
		}
	}()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(nil, maxLineBytes)
	nData := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, chrom) && len(line) > len(chrom) && line[len(chrom)] == '\t' {
			return true, nil
		}
		nData++
		if nData >= s.probeLimit {
			break
		}
	}
	return false, scanner.Err()
}

// FirstChrom implements Store.
func (s *Scan) FirstChrom(ctx context.Context) (string, error) {
	return firstDataChrom(ctx, s.path)
}

// Query implements Store.
func (s *Scan) Query(ctx context.Context, loci []Locus, infoFields []string) (found map[Locus]Record, err error) {
	want := make(map[Locus]struct{}, len(loci))
	for _, l := range loci {
		want[l] = struct{}{}
	}
	found = make(map[Locus]Record, len(loci))
	in, closeAll, err := openText(ctx, s.path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := closeAll(); e != nil && err == nil {
			err = e
		}
	}()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(nil, maxLineBytes)
	for scanner.Scan() {
		if err = collectMatches(scanner.Text(), want, infoFields, found); err != nil {
			return nil, err
		}
		if len(found) == len(want) {
			break
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return found, nil
}
