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
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bgzf"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// openText opens a reference file for sequential text reads, decompressing
// as needed.  Tabix-indexed files are bgzf by construction, so that is tried
// first for .gz/.bgz paths; plain gzip is the fallback since references do
// occasionally get recompressed by hand.
func openText(ctx context.Context, path string) (io.Reader, func() error, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	rd := f.Reader(ctx)
	closers := []func() error{func() error { return f.Close(ctx) }}
	closeAll := func() (err error) {
		for i := len(closers) - 1; i >= 0; i-- {
			if e := closers[i](); e != nil && err == nil {
				err = e
			}
		}
		return
	}
	if !strings.HasSuffix(path, ".gz") && !strings.HasSuffix(path, ".bgz") {
		return rd, closeAll, nil
	}
	if bz, err := bgzf.NewReader(rd, 1); err == nil {
		closers = append(closers, bz.Close)
		return bz, closeAll, nil
	}
	if _, err = rd.Seek(0, io.SeekStart); err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	gz, err := gzip.NewReader(rd)
	if err != nil {
		_ = closeAll()
		return nil, nil, errors.Wrapf(err, "%v: not bgzf or gzip", path)
	}
	closers = append(closers, gz.Close)
	return gz, closeAll, nil
}

// firstDataChrom returns the CHROM column of the first non-header line of
// the reference at path.
func firstDataChrom(ctx context.Context, path string) (chrom string, err error) {
	in, closeAll, err := openText(ctx, path)
	if err != nil {
		return "", err
	}
	defer func() {
		if e := closeAll(); e != nil && err == nil {
			err = e
		}
	}()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(nil, maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if tab := strings.IndexByte(line, '\t'); tab >= 0 {
			return line[:tab], nil
		}
		return line, nil
	}
	if err = scanner.Err(); err != nil {
		return "", err
	}
	return "", errors.Errorf("%v: no data rows", path)
}

// maxLineBytes bounds bufio.Scanner line length; dbSNP INFO columns can get
// long but stay well under this.
const maxLineBytes = 16 << 20
