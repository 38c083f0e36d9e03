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
	"strconv"
	"strings"
)

// RefFormat describes the chromosome naming convention used by the variant
// reference: "1"/"X"-style bare names, or UCSC-style "chr1"/"chrX".
type RefFormat int

const (
	// RefFormatBare means the reference names chromosomes without a prefix.
	RefFormatBare RefFormat = iota
	// RefFormatPrefixed means the reference uses "chr"-prefixed names.
	RefFormatPrefixed
)

// String returns a human-readable name for the format.
func (f RefFormat) String() string {
	if f == RefFormatPrefixed {
		return "prefixed"
	}
	return "bare"
}

const chrPrefix = "chr"

// PLINK and some array manifests encode the sex and mitochondrial
// chromosomes numerically.
var numericAlias = map[string]string{"23": "X", "24": "Y", "25": "MT"}
var letterAlias = map[string]string{"X": "23", "Y": "24", "MT": "25"}

// isKnownChrom reports whether bare is a recognized human chromosome name
// (1-22, X, Y, MT) after numeric aliases have been applied.
func isKnownChrom(bare string) bool {
	if _, ok := letterAlias[bare]; ok {
		return true
	}
	n, err := strconv.Atoi(bare)
	return err == nil && n >= 1 && n <= 22
}

// NormalizeChrom converts a raw input chromosome token to the reference's
// own convention: the "chr" prefix is stripped, numeric sex/mitochondrial
// encodings (23/24/25) become X/Y/MT, and the reference's prefix convention
// is re-applied.  Unrecognized tokens (patch contigs, typos) pass through
// unchanged; queries for them are expected to simply miss.
func NormalizeChrom(token string, format RefFormat) string {
	bare := strings.TrimPrefix(token, chrPrefix)
	if mapped, ok := numericAlias[bare]; ok {
		bare = mapped
	}
	if !isKnownChrom(bare) {
		return token
	}
	if format == RefFormatPrefixed {
		return chrPrefix + bare
	}
	return bare
}

// DenormalizeChrom converts a canonical chromosome back to the convention of
// the original input token, token-for-token: the prefix is kept or dropped
// to mirror the token, and X/Y/MT revert to 23/24/25 only when the token
// itself used the numeric form.
func DenormalizeChrom(canonical, token string) string {
	bare := strings.TrimPrefix(canonical, chrPrefix)
	if num, ok := letterAlias[bare]; ok && strings.TrimPrefix(token, chrPrefix) == num {
		bare = num
	}
	if strings.HasPrefix(token, chrPrefix) {
		return chrPrefix + bare
	}
	return bare
}
