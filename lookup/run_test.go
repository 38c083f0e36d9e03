package lookup_test

import (
	"context"
	"errors"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/grailbio/varlookup/lookup"
	"github.com/grailbio/varlookup/refstore"
)

var errFake = errors.New("synthetic store failure")

func testContext() context.Context {
	return vcontext.Background()
}

// fakeStore is an in-memory refstore.Store that records every Query batch
// it receives.
type fakeStore struct {
	name       string
	records    map[refstore.Locus]refstore.Record
	probeHits  map[string]bool
	probeErr   error
	firstChrom string
	firstErr   error
	// failLocus makes Query fail for any batch containing this locus.
	failLocus *refstore.Locus

	mu      sync.Mutex
	queries [][]refstore.Locus
}

func (s *fakeStore) Name() string {
	if s.name == "" {
		return "fake.vcf.gz"
	}
	return s.name
}

func (s *fakeStore) Probe(ctx context.Context, chrom string) (bool, error) {
	if s.probeErr != nil {
		return false, s.probeErr
	}
	return s.probeHits[chrom], nil
}

func (s *fakeStore) FirstChrom(ctx context.Context) (string, error) {
	return s.firstChrom, s.firstErr
}

func (s *fakeStore) Query(ctx context.Context, loci []refstore.Locus, infoFields []string) (map[refstore.Locus]refstore.Record, error) {
	s.mu.Lock()
	s.queries = append(s.queries, append([]refstore.Locus(nil), loci...))
	s.mu.Unlock()
	if s.failLocus != nil {
		for _, l := range loci {
			if l == *s.failLocus {
				return nil, errFake
			}
		}
	}
	found := make(map[refstore.Locus]refstore.Record, len(loci))
	for _, l := range loci {
		if rec, ok := s.records[l]; ok {
			found[l] = rec
		}
	}
	return found, nil
}

// runLookup writes input to a temp file, runs the lookup into another temp
// file, and returns the stats and output lines.
func runLookup(t *testing.T, store refstore.Store, input string, opts lookup.Opts) (lookup.Stats, []string) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	inPath := filepath.Join(tmpdir, "in.tsv")
	assert.NoError(t, ioutil.WriteFile(inPath, []byte(input), 0644))
	outPath := filepath.Join(tmpdir, "out.tsv")
	if opts.Report && opts.ReportPath == "" {
		opts.ReportPath = filepath.Join(tmpdir, "report.txt")
	}
	stats, err := lookup.Run(testContext(), inPath, outPath, store, &opts)
	assert.NoError(t, err)
	data, err := ioutil.ReadFile(outPath)
	assert.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return stats, lines
}

func TestRunFound(t *testing.T) {
	store := &fakeStore{
		probeHits: map[string]bool{"chr1": true},
		records: map[refstore.Locus]refstore.Record{
			{Chrom: "chr1", Pos: 998371}: {ID: "rs7526076", Ref: "A", Alt: "G"},
		},
	}
	stats, lines := runLookup(t, store, "chr1\t998371\n", lookup.DefaultOpts)
	expect.EQ(t, lines, []string{"chr1\t998371\trs7526076\tA\tG"})
	expect.EQ(t, stats, lookup.Stats{Total: 1, Found: 1, NotFound: 0})
}

func TestRunNotFound(t *testing.T) {
	store := &fakeStore{probeHits: map[string]bool{"1": true}}
	stats, lines := runLookup(t, store, "23\t123456\n", lookup.DefaultOpts)
	expect.EQ(t, lines, []string{"23\t123456\t.\t.\t."})
	expect.EQ(t, stats, lookup.Stats{Total: 1, Found: 0, NotFound: 1})
}

func TestRunInfoFields(t *testing.T) {
	store := &fakeStore{
		probeHits: map[string]bool{"chr1": true},
		records: map[refstore.Locus]refstore.Record{
			{Chrom: "chr1", Pos: 100}: {ID: "rs1", Ref: "T", Alt: "C", Info: []string{"5", "0.25"}},
		},
	}
	opts := lookup.DefaultOpts
	opts.Info = "AC,AF"
	_, lines := runLookup(t, store, "chr1\t100\nchr1\t998371\n", opts)
	expect.EQ(t, lines, []string{
		"chr1\t100\trs1\tT\tC\t5\t0.25",
		// One "." placeholder per requested INFO field on a miss.
		"chr1\t998371\t.\t.\t.\t.\t.",
	})
}

func TestRunReport(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)

	store := &fakeStore{
		probeHits: map[string]bool{"1": true},
		records: map[refstore.Locus]refstore.Record{
			{Chrom: "2", Pos: 20}: {ID: "rs2", Ref: "C", Alt: "A"},
		},
	}
	opts := lookup.DefaultOpts
	opts.ReportPath = filepath.Join(tmpdir, "report.txt")
	stats, _ := runLookup(t, store, "1\t10\n2\t20\n3\t30\n", opts)
	expect.EQ(t, stats, lookup.Stats{Total: 3, Found: 1, NotFound: 2})
	expect.EQ(t, stats.SuccessRatePercent(), uint64(33))

	data, err := ioutil.ReadFile(opts.ReportPath)
	assert.NoError(t, err)
	report := string(data)
	for _, want := range []string{
		"# input:",
		"# reference: fake.vcf.gz",
		"total records:\t3",
		"found:\t1",
		"not found:\t2",
		"success rate:\t33%",
		"FOUND\t2\t20",
		"NOT_FOUND\t1\t10",
		"NOT_FOUND\t3\t30",
		"warnings:",
		"missing loci:",
		"1\t10",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("missing %q in report:\n%s", want, report)
		}
	}
}

func TestRunChunkDegradation(t *testing.T) {
	// Five records, chunk size 2: chunks are {1,2} {3,4} {5}.  The store
	// fails the middle chunk; record 5's locus is absent from the store.
	records := map[refstore.Locus]refstore.Record{}
	for _, pos := range []uint64{10, 20, 30, 40} {
		records[refstore.Locus{Chrom: "1", Pos: pos}] = refstore.Record{ID: "rs", Ref: "A", Alt: "G"}
	}
	store := &fakeStore{
		probeHits: map[string]bool{"1": true},
		records:   records,
		failLocus: &refstore.Locus{Chrom: "1", Pos: 30},
	}
	opts := lookup.DefaultOpts
	opts.ChunkSize = 2
	opts.Parallelism = 2
	stats, lines := runLookup(t, store, "1\t10\n1\t20\n1\t30\n1\t40\n1\t50\n", opts)
	expect.EQ(t, lines, []string{
		"1\t10\trs\tA\tG",
		"1\t20\trs\tA\tG",
		"1\t30\t.\t.\t.",
		"1\t40\t.\t.\t.",
		"1\t50\t.\t.\t.",
	})
	expect.EQ(t, stats, lookup.Stats{Total: 5, Found: 2, NotFound: 3})
}

func TestRunOrderInvariance(t *testing.T) {
	records := map[refstore.Locus]refstore.Record{}
	var input strings.Builder
	for i := 0; i < 100; i++ {
		chrom := []string{"1", "2", "X"}[i%3]
		pos := uint64(1000 + i)
		input.WriteString(chrom)
		input.WriteByte('\t')
		input.WriteString(strconv.FormatUint(pos, 10))
		input.WriteByte('\n')
		if i%2 == 0 {
			records[refstore.Locus{Chrom: chrom, Pos: pos}] = refstore.Record{ID: "rs", Ref: "A", Alt: "T"}
		}
	}
	var runs [][]string
	for _, parallelism := range []int{1, 8} {
		store := &fakeStore{probeHits: map[string]bool{"1": true}, records: records}
		opts := lookup.DefaultOpts
		opts.ChunkSize = 7
		opts.Parallelism = parallelism
		stats, lines := runLookup(t, store, input.String(), opts)
		assert.EQ(t, len(lines), 100)
		expect.EQ(t, stats, lookup.Stats{Total: 100, Found: 50, NotFound: 50})
		// The Nth output line belongs to the Nth input record.
		for i, line := range lines {
			wantPrefix := []string{"1", "2", "X"}[i%3] + "\t" + strconv.FormatUint(uint64(1000+i), 10) + "\t"
			if !strings.HasPrefix(line, wantPrefix) {
				t.Errorf("line %d: got %q, want prefix %q", i, line, wantPrefix)
			}
		}
		runs = append(runs, lines)
	}
	expect.EQ(t, runs[0], runs[1])
}

func TestRunDedupWithinChunk(t *testing.T) {
	store := &fakeStore{
		probeHits: map[string]bool{"1": true},
		records: map[refstore.Locus]refstore.Record{
			{Chrom: "1", Pos: 42}: {ID: "rs42", Ref: "G", Alt: "C"},
		},
	}
	opts := lookup.DefaultOpts
	opts.ChunkSize = 10
	// The same locus twice, in two spellings, plus one other record.
	_, lines := runLookup(t, store, "1\t42\nchr1\t42\n1\t7\n", opts)
	expect.EQ(t, lines, []string{
		"1\t42\trs42\tG\tC",
		"chr1\t42\trs42\tG\tC",
		"1\t7\t.\t.\t.",
	})
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.EQ(t, len(store.queries), 1)
	n := 0
	for _, l := range store.queries[0] {
		if (l == refstore.Locus{Chrom: "1", Pos: 42}) {
			n++
		}
	}
	// Both spellings collapse to one queried locus.
	expect.EQ(t, n, 1)
}

func TestRunEmptyInput(t *testing.T) {
	store := &fakeStore{probeHits: map[string]bool{"1": true}}
	stats, lines := runLookup(t, store, "# nothing but comments\n\n", lookup.DefaultOpts)
	expect.EQ(t, len(lines), 0)
	expect.EQ(t, stats, lookup.Stats{})
	expect.EQ(t, stats.SuccessRatePercent(), uint64(0))
}
