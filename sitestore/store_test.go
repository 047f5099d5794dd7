package sitestore

import (
	"context"
	"math"
	"os/user"
	"path/filepath"
	"testing"
	"time"

	"github.com/carbocation/pedcall"
	"github.com/carbocation/pedcall/mendel"
	"github.com/stretchr/testify/require"
)

func testSites() []*Site {
	inf := math.Inf(-1)
	return []*Site{
		{
			ID: "rs2", Chromosome: "1", Position: 200, NAlleles: 2,
			Likelihoods: []*SampleLikelihood{
				{Ploidy: mendel.Diploid, LogLikelihoods: []float64{-0.1, -5, -2.5}},
				{Ploidy: mendel.Diploid, LogLikelihoods: []float64{0, inf, -3}},
				{Missing: true, Ploidy: mendel.Diploid, LogLikelihoods: []float64{}},
			},
		},
		{
			ID: "rs1", Chromosome: "1", Position: 100, NAlleles: 3,
			Likelihoods: []*SampleLikelihood{
				{Ploidy: mendel.Diploid, LogLikelihoods: []float64{-1, -2, -3, -4, -5, -6}},
				{Ploidy: mendel.Diploid, LogLikelihoods: []float64{-6, -5, -4, -3, -2, -1}},
				{Ploidy: mendel.Diploid, LogLikelihoods: []float64{0, 0, 0, 0, 0, 0}},
			},
		},
		{
			ID: "rsY", Chromosome: "Y", Position: 50, NAlleles: 2,
			Likelihoods: []*SampleLikelihood{
				{Ploidy: mendel.Haploid, LogLikelihoods: []float64{-0.5, -1}},
				{Ploidy: mendel.None, LogLikelihoods: []float64{}},
				{Ploidy: mendel.Haploid, LogLikelihoods: []float64{-2, 0}},
			},
		},
	}
}

var testSamples = []Sample{
	{Ordinal: 0, SampleID: "father", Sex: pedcall.Male, Diseased: true},
	{Ordinal: 1, SampleID: "mother", Sex: pedcall.Female},
	{Ordinal: 2, SampleID: "son", Sex: pedcall.Male, Diseased: true},
}

func createTestStore(t *testing.T, c Compression) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sites.db")

	s, err := Create(path)
	require.NoError(t, err)
	for _, sample := range testSamples {
		require.NoError(t, s.InsertSample(sample))
	}
	for _, site := range testSites() {
		require.NoError(t, s.InsertSite(site, c))
	}
	require.NoError(t, s.Close())

	return path
}

func TestStoreRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionDisabled, CompressionZLIB, CompressionZStandard} {
		t.Run(c.String(), func(t *testing.T) {
			before := time.Now().Add(-time.Second)
			path := createTestStore(t, c)

			s, err := Open(path)
			require.NoError(t, err)
			defer s.Close()

			require.Equal(t, "sites.db", s.Metadata.Filename)
			require.GreaterOrEqual(t, time.Time(s.Metadata.IndexCreationTime).Unix(), before.Unix())

			samples, err := ReadSamples(s)
			require.NoError(t, err)
			require.Equal(t, testSamples, samples)

			n, err := s.Count()
			require.NoError(t, err)
			require.Equal(t, 3, n)

			want := testSites()
			var got []*Site
			sr := s.NewSiteReader()
			for site := sr.Read(); site != nil; site = sr.Read() {
				got = append(got, site)
			}
			require.NoError(t, sr.Error())
			require.EqualValues(t, 3, sr.SitesSeen)

			// Ordered by chromosome then position.
			require.Equal(t, []*Site{want[1], want[0], want[2]}, got)
		})
	}
}

func TestCreateRefusesExisting(t *testing.T) {
	path := createTestStore(t, CompressionDisabled)
	_, err := Create(path)
	require.Error(t, err)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
}

func TestReaderStopsEarly(t *testing.T) {
	s, err := Open(createTestStore(t, CompressionZStandard))
	require.NoError(t, err)
	defer s.Close()

	sr := s.NewSiteReader()
	require.NotNil(t, sr.Read())
	require.NoError(t, sr.Close())
	require.Nil(t, sr.Read())
	require.NoError(t, sr.Error())
}

func TestCorruptBlock(t *testing.T) {
	path := createTestStore(t, CompressionDisabled)
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.DB.Exec("UPDATE Site SET likelihoods = ? WHERE site_id = ?", []byte{1, 0}, "rs1")
	require.NoError(t, err)

	sr := s.NewSiteReader()
	require.Nil(t, sr.Read())
	require.Error(t, sr.Error())
}

func TestDecodeLikelihoodsTruncated(t *testing.T) {
	block, err := encodeLikelihoods(testSites()[0].Likelihoods)
	require.NoError(t, err)

	for _, n := range []int{0, 3, 6, 12, len(block) - 1} {
		_, err := decodeLikelihoods(block[:n])
		require.Error(t, err, "length %d", n)
	}
	_, err = decodeLikelihoods(append(block, 0))
	require.Error(t, err)
}

func TestCompressionNames(t *testing.T) {
	for _, c := range []Compression{CompressionDisabled, CompressionZLIB, CompressionZStandard} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		require.Equal(t, c, got)
	}
	_, err := ParseCompression("lz4")
	require.Error(t, err)

	_, err = Compression(7).compress([]byte("x"))
	require.Error(t, err)
}

func TestTimeScan(t *testing.T) {
	var tm Time
	require.NoError(t, tm.Scan(int64(1600000000)))
	require.Equal(t, int64(1600000000), time.Time(tm).Unix())

	require.NoError(t, tm.Scan([]byte("2020-09-13 12:26:40")))
	require.Equal(t, int64(1600000000), time.Time(tm).Unix())

	require.NoError(t, tm.Scan("2020-09-13 12:26:40"))
	require.Equal(t, int64(1600000000), time.Time(tm).Unix())

	require.Error(t, tm.Scan(3.5))

	v, err := tm.Value()
	require.NoError(t, err)
	require.Equal(t, int64(1600000000), v)
}

func TestFetchLocal(t *testing.T) {
	path, cleanup, err := Fetch(context.Background(), "/data/sites.db")
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, "/data/sites.db", path)

	usr, err := user.Current()
	require.NoError(t, err)
	path, cleanup, err = Fetch(context.Background(), "~/sites.db")
	require.NoError(t, err)
	defer cleanup()
	require.Equal(t, filepath.Join(usr.HomeDir, "sites.db"), path)
}

func TestFetchMalformedBucket(t *testing.T) {
	_, _, err := Fetch(context.Background(), "gs://bucket-only")
	require.Error(t, err)
}
