package lookup_test

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/varlookup/lookup"
)

func TestDetectDelim(t *testing.T) {
	tests := []struct {
		sample []string
		want   byte
	}{
		{[]string{"chr1\t100", "chr2\t200"}, '\t'},
		{[]string{"chr1 100", "chr2 200"}, ' '},
		{[]string{"# a header with words and spaces", "chr1\t100\tx\ty"}, '\t'},
		// Tie (and the empty sample) defaults to tab.
		{[]string{"chr1 100\t"}, '\t'},
		{nil, '\t'},
	}
	for _, tt := range tests {
		expect.EQ(t, lookup.DetectDelim(tt.sample), tt.want)
	}
}

func TestParseRecords(t *testing.T) {
	lines := []string{
		"chr1\t998371\textra\tcolumns ignored",
		"",
		"# comment",
		"23\t123456",
		"chr2\tnot-a-number",
		"chr2\t-5",
		"onlyonefield",
		"chrX\t77",
	}
	got := lookup.ParseRecords(lines, '\t')
	expect.EQ(t, got, []lookup.RawRecord{
		{Chrom: "chr1", Pos: 998371},
		{Chrom: "23", Pos: 123456},
		{Chrom: "chrX", Pos: 77},
	})
}

func TestParseRecordsSpace(t *testing.T) {
	// Runs of spaces count as a single separator.
	lines := []string{
		"chr1   998371",
		"chr2 17 trailing junk",
	}
	got := lookup.ParseRecords(lines, ' ')
	expect.EQ(t, got, []lookup.RawRecord{
		{Chrom: "chr1", Pos: 998371},
		{Chrom: "chr2", Pos: 17},
	})
}
