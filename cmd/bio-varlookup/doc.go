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

/*
Given a file of genomic positions (chromosome and 1-based coordinate, one per
line) and a position-sorted variant reference such as a dbSNP VCF,
bio-varlookup reports the identifier and allele columns for every position,
in the input's own order and chromosome naming convention.  "chr1"-style and
bare names are accepted and may differ from the reference's convention;
23/24/25 are understood as X/Y/MT.

The reference is queried through tabix when the file carries a .tbi index
and a tabix executable is available; otherwise bio-varlookup falls back to
slower full-file scans.

Sample usage:
bio-varlookup \
    -info AC,AF \
    -out annotated.tsv \
    dbsnp.vcf.gz \
    positions.tsv
*/
package main
