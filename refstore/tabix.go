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
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Tabix is a Store backed by an external tabix executable and a
// bgzip-compressed, .tbi-indexed reference file.  Each Query is one tabix
// invocation over a temporary BED region file, so a chunk of input costs a
// single process spawn regardless of how many loci it contains.
type Tabix struct {
	path string // reference .vcf.gz
	exe  string // tabix binary

	// probeSpan is the width (in bases) of the leading region Probe asks
	// tabix for.
	probeSpan uint64
}

const defaultProbeSpan = 2000000

// DefaultExe is the tabix executable resolved from PATH.
const DefaultExe = "tabix"

// NewTabix returns a Tabix store for the reference at path, invoking exe
// (DefaultExe when empty).
func NewTabix(path, exe string) *Tabix {
	if exe == "" {
		exe = DefaultExe
	}
	return &Tabix{path: path, exe: exe, probeSpan: defaultProbeSpan}
}

// IndexPath returns the conventional .tbi path for a reference file.
func IndexPath(refPath string) string {
	return refPath + ".tbi"
}

// Name implements Store.
func (t *Tabix) Name() string {
	return filepath.Base(t.path)
}

// Probe implements Store.
func (t *Tabix) Probe(ctx context.Context, chrom string) (bool, error) {
	region := fmt.Sprintf("%s:1-%d", chrom, t.probeSpan)
	out, err := t.run(ctx, t.exe, t.path, region)
	if err != nil {
		return false, err
	}
	return len(bytes.TrimSpace(out)) > 0, nil
}

// FirstChrom implements Store.
func (t *Tabix) FirstChrom(ctx context.Context) (string, error) {
	return firstDataChrom(ctx, t.path)
}

// Query implements Store.
func (t *Tabix) Query(ctx context.Context, loci []Locus, infoFields []string) (map[Locus]Record, error) {
	found := make(map[Locus]Record, len(loci))
	if len(loci) == 0 {
		return found, nil
	}
	want := make(map[Locus]struct{}, len(loci))
	for _, l := range loci {
		want[l] = struct{}{}
	}
	bedPath, err := writeRegionBed(loci)
	if bedPath != "" {
		// The region file is chunk-local scratch; remove it on every path.
		defer os.Remove(bedPath) // nolint: errcheck
	}
	if err != nil {
		return nil, err
	}
	out, err := t.run(ctx, t.exe, "-R", bedPath, t.path)
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(nil, maxLineBytes)
	for scanner.Scan() {
		if err = collectMatches(scanner.Text(), want, infoFields, found); err != nil {
			return nil, err
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return found, nil
}

func (t *Tabix) run(ctx context.Context, exe string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, exe, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "%s %v: %s", exe, args, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// writeRegionBed writes the loci as sorted single-base BED intervals
// (0-based half-open, as tabix -R expects) to a temporary file and returns
// its path.  A non-empty path may be returned along with an error, in which
// case the caller owns removal.
func writeRegionBed(loci []Locus) (string, error) {
	sorted := make([]Locus, len(loci))
	copy(sorted, loci)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Chrom != sorted[j].Chrom {
			return sorted[i].Chrom < sorted[j].Chrom
		}
		return sorted[i].Pos < sorted[j].Pos
	})
	f, err := ioutil.TempFile("", "varlookup_regions_*.bed")
	if err != nil {
		return "", err
	}
	w := bufio.NewWriter(f)
	for _, l := range sorted {
		if l.Pos == 0 {
			// 1-based input; position 0 cannot be expressed as a BED
			// interval and cannot match anything.
			continue
		}
		// bufio.Writer errors surface at Flush.
		w.WriteString(l.Chrom)
		w.WriteByte('\t')
		w.WriteString(strconv.FormatUint(l.Pos-1, 10))
		w.WriteByte('\t')
		w.WriteString(strconv.FormatUint(l.Pos, 10))
		w.WriteByte('\n')
	}
	if err = w.Flush(); err != nil {
		_ = f.Close()
		return f.Name(), err
	}
	return f.Name(), f.Close()
}
