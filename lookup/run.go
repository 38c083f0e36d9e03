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

// Package lookup implements the parallel chunked variant-locus lookup
// engine: it reads "chromosome position" records, normalizes heterogeneous
// chromosome naming to the reference's own convention, queries the
// reference in deduplicated per-chunk batches with bounded concurrency, and
// reconstructs results in the exact input order, together with a summary
// report.
package lookup

import (
	"bufio"
	"context"
	"os"
	"sync"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/varlookup/refstore"
)

// chunkRequest carries one chunk to a worker, stamped with its sequence
// index so blocks can be reassembled in input order.
type chunkRequest struct {
	seq     int
	records []RawRecord
}

// runChunks partitions records into contiguous chunks of at most
// opts.ChunkSize and processes them on at most opts.Parallelism workers.
// Chunks are dispatched in sequence order; blocks land in their sequence
// slot no matter which worker finishes first, so the returned slice is
// already in input order.
func runChunks(ctx context.Context, store refstore.Store, records []RawRecord, cfg *runConfig, opts *Opts) []resultBlock {
	nChunk := (len(records) + opts.ChunkSize - 1) / opts.ChunkSize
	blocks := make([]resultBlock, nChunk)
	parallelism := opts.Parallelism
	if parallelism > nChunk {
		parallelism = nChunk
	}
	reqCh := make(chan chunkRequest, parallelism)
	wg := sync.WaitGroup{}
	for wi := 0; wi < parallelism; wi++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range reqCh {
				blocks[req.seq] = processChunk(ctx, store, req.seq, req.records, cfg)
			}
		}()
	}
	for seq := 0; seq < nChunk; seq++ {
		start := seq * opts.ChunkSize
		end := start + opts.ChunkSize
		if end > len(records) {
			end = len(records)
		}
		reqCh <- chunkRequest{seq: seq, records: records[start:end]}
	}
	close(reqCh)
	wg.Wait()
	return blocks
}

// Run executes one lookup: detect the reference's chromosome naming, chunk
// the input, query with bounded concurrency, and write one output line per
// valid input record to outPath ("" or "-" for stdout), in input order.
// Reference failures degrade the affected chunks to not-found; Run returns
// an error only for configuration, input, or output-stream problems.
func Run(ctx context.Context, inPath, outPath string, store refstore.Store, opts *Opts) (Stats, error) {
	if err := opts.validate(); err != nil {
		return Stats{}, err
	}
	infoFields, err := parseInfoFields(opts.Info)
	if err != nil {
		return Stats{}, err
	}
	records, inDelim, err := readRecords(ctx, inPath, opts.InDelim)
	if err != nil {
		return Stats{}, err
	}
	outDelim, err := resolveDelim(opts.OutDelim, inDelim)
	if err != nil {
		return Stats{}, err
	}

	refFormat := DetectRefFormat(ctx, store)
	log.Printf("lookup.Run: %d record(s) in %d-record chunks, parallelism %d, reference %s uses %s chromosome names",
		len(records), opts.ChunkSize, opts.Parallelism, store.Name(), refFormat)
	cfg := runConfig{
		refFormat:  refFormat,
		infoFields: infoFields,
		outDelim:   outDelim,
	}
	blocks := runChunks(ctx, store, records, &cfg, opts)

	events := make([]Event, 0, len(records))
	err = writeBlocks(ctx, outPath, blocks, func(block resultBlock) {
		events = append(events, block.events...)
	})
	stats := aggregate(events)
	if err != nil {
		return stats, err
	}
	log.Printf("lookup.Run: done: %d found, %d not found (%d%%)",
		stats.Found, stats.NotFound, stats.SuccessRatePercent())

	if opts.Report && opts.ReportPath != "" {
		if err := writeReport(ctx, opts.ReportPath, inPath, store.Name(), stats, events, outDelim); err != nil {
			// The report is advisory; its loss never fails a finished run.
			log.Error.Printf("lookup.Run: report write to %s failed: %v", opts.ReportPath, err)
		}
	}
	return stats, nil
}

// writeBlocks concatenates the blocks, already in chunk-sequence order, to
// the output stream.  visit is called per block after its lines are
// written.
func writeBlocks(ctx context.Context, outPath string, blocks []resultBlock, visit func(resultBlock)) (err error) {
	var w *bufio.Writer
	if outPath == "" || outPath == "-" {
		w = bufio.NewWriter(os.Stdout)
	} else {
		var out file.File
		if out, err = file.Create(ctx, outPath); err != nil {
			return
		}
		defer file.CloseAndReport(ctx, out, &err)
		w = bufio.NewWriter(out.Writer(ctx))
	}
	for _, block := range blocks {
		for _, line := range block.lines {
			w.WriteString(line)
			w.WriteByte('\n')
		}
		visit(block)
	}
	return w.Flush()
}
