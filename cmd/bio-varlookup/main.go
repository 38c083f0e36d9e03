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
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/varlookup/lookup"
	"github.com/grailbio/varlookup/refstore"
)

var (
	parallelism = flag.Int("parallelism", lookup.DefaultOpts.Parallelism, "Maximum number of simultaneous reference-query jobs")
	chunkSize   = flag.Int("chunk-size", lookup.DefaultOpts.ChunkSize, "Number of input records per reference query batch")
	info        = flag.String("info", lookup.DefaultOpts.Info, "Comma-delimited INFO fields to append to each output line, e.g. 'AC,AF'")
	inDelim     = flag.String("in-delim", lookup.DefaultOpts.InDelim, "Input field delimiter; 'tab', 'space', or 'auto'")
	outDelim    = flag.String("out-delim", lookup.DefaultOpts.OutDelim, "Output field delimiter; 'tab', 'space', or 'auto' (mirrors input)")
	outPath     = flag.String("out", "", "Output path; empty or '-' writes to stdout")
	report      = flag.Bool("report", lookup.DefaultOpts.Report, "Write a plain-text summary report")
	reportPath  = flag.String("report-out", "bio-varlookup.report.txt", "Report destination path")
	tabixExe    = flag.String("tabix", refstore.DefaultExe, "tabix executable to use for indexed references")
	unindexed   = flag.Bool("unindexed", false, "Skip tabix and scan the reference file directly")
)

func bioVarlookupUsage() {
	fmt.Printf("Usage: %s [OPTIONS] refpath inputpath\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

// newStore picks the indexed store when it is usable, otherwise warns and
// degrades to sequential scans.
func newStore(ctx context.Context, refPath string) refstore.Store {
	if *unindexed {
		return refstore.NewScan(refPath)
	}
	if _, err := os.Stat(refstore.IndexPath(refPath)); err != nil {
		log.Error.Printf("%s: no .tbi index found, falling back to unindexed scans (slower): %v", refPath, err)
		return refstore.NewScan(refPath)
	}
	if _, err := exec.LookPath(*tabixExe); err != nil {
		log.Error.Printf("%s not found, falling back to unindexed scans (slower): %v", *tabixExe, err)
		return refstore.NewScan(refPath)
	}
	return refstore.NewTabix(refPath, *tabixExe)
}

func main() {
	flag.Usage = bioVarlookupUsage
	shutdown := grail.Init()
	defer shutdown()

	allArgs := flag.Args()
	nPositionalArgs := flag.NArg()
	positionalArgs := allArgs[len(allArgs)-nPositionalArgs:]
	if nPositionalArgs != 2 {
		if nPositionalArgs < 2 {
			log.Fatalf("Missing positional arguments (refpath and inputpath required); please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
		} else {
			log.Fatalf("Too many positional arguments (only refpath and inputpath expected); please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
		}
	}
	ctx := vcontext.Background()
	opts := lookup.Opts{
		Parallelism: *parallelism,
		ChunkSize:   *chunkSize,
		Info:        *info,
		InDelim:     *inDelim,
		OutDelim:    *outDelim,
		Report:      *report,
		ReportPath:  *reportPath,
	}
	store := newStore(ctx, positionalArgs[0])
	if _, err := lookup.Run(ctx, positionalArgs[1], *outPath, store, &opts); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
