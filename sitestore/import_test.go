package sitestore

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carbocation/pedcall"
	"github.com/carbocation/pedcall/mendel"
	"github.com/stretchr/testify/require"
)

const samplesTSV = `# id	sex	diseased
dad	male	1
mom	F	0
son	1	false
`

const sitesTSV = `site	chromosome	position	alleles	mom	dad	son
rs1	1	100	2	0,-3,-1.5	-2,-inf,0	.
rsX	X	200	2	0,-4,-2	-1,0	-3,0
rsY	Y	300	2	-	0,-2	.
`

func TestParseSamples(t *testing.T) {
	samples, err := ParseSamples(strings.NewReader(samplesTSV))
	require.NoError(t, err)
	require.Equal(t, []Sample{
		{Ordinal: 0, SampleID: "dad", Sex: pedcall.Male, Diseased: true},
		{Ordinal: 1, SampleID: "mom", Sex: pedcall.Female},
		{Ordinal: 2, SampleID: "son", Sex: pedcall.Male},
	}, samples)

	_, err = ParseSamples(strings.NewReader("dad\tmale\n"))
	require.Error(t, err)
	_, err = ParseSamples(strings.NewReader("dad\tmale\tyes\n"))
	require.Error(t, err)
}

func TestImport(t *testing.T) {
	samples, err := ParseSamples(strings.NewReader(samplesTSV))
	require.NoError(t, err)

	s, err := Create(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	defer s.Close()

	n, err := Import(s, strings.NewReader(sitesTSV), samples, CompressionZLIB)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	// Ordinals follow the column order of the import file.
	stored, err := ReadSamples(s)
	require.NoError(t, err)
	require.Equal(t, []string{"mom", "dad", "son"}, []string{stored[0].SampleID, stored[1].SampleID, stored[2].SampleID})
	require.Equal(t, 1, stored[1].Ordinal)

	sr := s.NewSiteReader()
	var sites []*Site
	for site := sr.Read(); site != nil; site = sr.Read() {
		sites = append(sites, site)
	}
	require.NoError(t, sr.Error())
	require.Len(t, sites, 3)

	rs1 := sites[0]
	require.Equal(t, "rs1", rs1.ID)
	require.Equal(t, []float64{-2, math.Inf(-1), 0}, rs1.Likelihoods[1].LogLikelihoods)
	require.True(t, rs1.Likelihoods[2].Missing)
	require.Equal(t, mendel.Diploid, rs1.Likelihoods[2].Ploidy)

	rsX := sites[1]
	require.Equal(t, mendel.Diploid, rsX.Likelihoods[0].Ploidy)
	require.Equal(t, mendel.Haploid, rsX.Likelihoods[1].Ploidy)
	require.Equal(t, []float64{-1, 0}, rsX.Likelihoods[1].LogLikelihoods)

	rsY := sites[2]
	require.Equal(t, mendel.None, rsY.Likelihoods[0].Ploidy)
	require.Equal(t, mendel.Haploid, rsY.Likelihoods[1].Ploidy)
}

func TestImportErrors(t *testing.T) {
	samples, err := ParseSamples(strings.NewReader(samplesTSV))
	require.NoError(t, err)

	for name, input := range map[string]string{
		"bad header":     "id\tchr\tpos\talleles\tdad\n",
		"unknown sample": "site\tchromosome\tposition\talleles\tuncle\n",
		"wrong count":    "site\tchromosome\tposition\talleles\tdad\nrs1\t1\t5\t2\t0,0\n",
		"bad number":     "site\tchromosome\tposition\talleles\tdad\nrs1\t1\t5\t2\t0,x,0\n",
		"data on absent": "site\tchromosome\tposition\talleles\tmom\nrs1\tY\t5\t2\t0,0\n",
		"zero alleles":   "site\tchromosome\tposition\talleles\tdad\nrs1\t1\t5\t0\t.\n",
		"ragged row":     "site\tchromosome\tposition\talleles\tdad\nrs1\t1\t5\t2\n",
		"bad position":   "site\tchromosome\tposition\talleles\tdad\nrs1\t1\t-5\t2\t.\n",
	} {
		s, err := Create(filepath.Join(t.TempDir(), "import.db"))
		require.NoError(t, err)
		_, err = Import(s, strings.NewReader(input), samples, CompressionDisabled)
		require.Error(t, err, name)
		require.NoError(t, s.Close())
	}
}
