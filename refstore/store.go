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

// Package refstore provides access to a pre-sorted variant reference file
// (dbSNP-style VCF) queried by genomic locus.  Two implementations are
// provided: Tabix, which drives an external tabix executable against a
// bgzip-compressed, indexed file, and Scan, which streams the file text and
// works without an index.
package refstore

import "context"

// Locus is a (chromosome, 1-based position) coordinate pair.  The chromosome
// string must already be in the reference file's own naming convention.
type Locus struct {
	Chrom string
	Pos   uint64
}

// Record holds the reference data for one matched locus.  Info has exactly
// one entry per requested INFO field, in request order, with "." for fields
// absent from the record.
type Record struct {
	ID   string
	Ref  string
	Alt  string
	Info []string
}

// Store answers batched point queries against a variant reference.
type Store interface {
	// Name identifies the store in logs and reports.
	Name() string

	// Probe reports whether any record exists in a short leading region of
	// the given chromosome.  It is used only for naming-convention
	// detection, so false negatives on an unusually sparse reference are
	// acceptable.
	Probe(ctx context.Context, chrom string) (bool, error)

	// FirstChrom returns the chromosome name of the first data row in the
	// reference, for use when probing is inconclusive.
	FirstChrom(ctx context.Context) (string, error)

	// Query looks up every locus in loci and returns a map holding one
	// Record per matched locus.  Unmatched loci are simply absent from the
	// map.  When the reference holds several records overlapping one locus,
	// the first one in file order wins.
	Query(ctx context.Context, loci []Locus, infoFields []string) (map[Locus]Record, error)
}
