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
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/varlookup/refstore"
)

// detectProbeChrom is the chromosome used for naming-convention probes.
// Chromosome 1 is present, densely covered, and first in file order in every
// mainstream reference.
const detectProbeChrom = "1"

// DetectRefFormat determines, once per run, whether the reference uses
// "chr"-prefixed chromosome names.  It probes a leading region of chromosome
// 1 under both spellings, then falls back to inspecting the reference's
// first data row.  Detection never fails the run: if every probe is
// inconclusive it assumes bare names and logs the low confidence.
func DetectRefFormat(ctx context.Context, store refstore.Store) RefFormat {
	hit, err := store.Probe(ctx, chrPrefix+detectProbeChrom)
	if err != nil {
		log.Error.Printf("DetectRefFormat: prefixed probe failed: %v", err)
	} else if hit {
		return RefFormatPrefixed
	}
	hit, err = store.Probe(ctx, detectProbeChrom)
	if err != nil {
		log.Error.Printf("DetectRefFormat: bare probe failed: %v", err)
	} else if hit {
		return RefFormatBare
	}
	chrom, err := store.FirstChrom(ctx)
	if err != nil {
		log.Error.Printf("DetectRefFormat: first-row inspection failed: %v", err)
	} else if chrom != "" {
		if strings.HasPrefix(chrom, chrPrefix) {
			return RefFormatPrefixed
		}
		return RefFormatBare
	}
	log.Error.Printf("DetectRefFormat: all probes inconclusive, assuming bare chromosome names (low confidence)")
	return RefFormatBare
}
