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
	"context"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/varlookup/refstore"
)

// runConfig is the process-wide immutable state handed to every chunk
// worker: the detected reference naming convention plus the resolved output
// options.  It is built once, before scheduling, and never mutated.
type runConfig struct {
	refFormat  RefFormat
	infoFields []string
	outDelim   byte
}

// Event records the outcome for one input record, in the input's own
// chromosome convention.
type Event struct {
	Found bool
	Chrom string
	Pos   uint64
}

// resultBlock is one chunk's output: lines and report events in the chunk's
// original record order.
type resultBlock struct {
	lines  []string
	events []Event
}

// processChunk handles one chunk end to end: normalize, deduplicate, issue
// one batched store query, and reconstruct per-record results in the
// chunk's original order.  A store failure degrades the whole chunk to
// not-found rather than aborting the run; the chunk-local locus map and
// query scratch are dropped when the block is returned.
func processChunk(ctx context.Context, store refstore.Store, seq int, records []RawRecord, cfg *runConfig) resultBlock {
	loci := make([]refstore.Locus, len(records))
	seen := make(map[refstore.Locus]struct{}, len(records))
	distinct := make([]refstore.Locus, 0, len(records))
	for i, rec := range records {
		loci[i] = refstore.Locus{Chrom: NormalizeChrom(rec.Chrom, cfg.refFormat), Pos: rec.Pos}
		if _, dup := seen[loci[i]]; !dup {
			seen[loci[i]] = struct{}{}
			distinct = append(distinct, loci[i])
		}
	}
	found, err := store.Query(ctx, distinct, cfg.infoFields)
	if err != nil {
		// Partial-failure policy: report every record in this chunk as
		// not-found and let the rest of the run proceed.  A half-parsed
		// response is never trusted.
		log.Error.Printf("chunk %d: reference query failed, reporting all %d record(s) as not found: %v", seq, len(records), err)
		found = nil
	}
	block := resultBlock{
		lines:  make([]string, len(records)),
		events: make([]Event, len(records)),
	}
	for i, rec := range records {
		outChrom := DenormalizeChrom(loci[i].Chrom, rec.Chrom)
		result, ok := found[loci[i]]
		block.lines[i] = renderLine(outChrom, rec.Pos, result, ok, len(cfg.infoFields), cfg.outDelim)
		block.events[i] = Event{Found: ok, Chrom: outChrom, Pos: rec.Pos}
	}
	return block
}

// renderLine formats one output line: CHROM POS ID REF ALT [INFO...], with
// "." for every value a missing record cannot supply.
func renderLine(chrom string, pos uint64, rec refstore.Record, found bool, nInfo int, delim byte) string {
	var b strings.Builder
	b.WriteString(chrom)
	b.WriteByte(delim)
	b.WriteString(strconv.FormatUint(pos, 10))
	if !found {
		for i := 0; i < nInfo+3; i++ {
			b.WriteByte(delim)
			b.WriteByte('.')
		}
		return b.String()
	}
	for _, col := range []string{rec.ID, rec.Ref, rec.Alt} {
		b.WriteByte(delim)
		if col == "" {
			col = "."
		}
		b.WriteString(col)
	}
	for i := 0; i < nInfo; i++ {
		b.WriteByte(delim)
		if i < len(rec.Info) && rec.Info[i] != "" {
			b.WriteString(rec.Info[i])
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
