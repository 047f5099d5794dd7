package pedcall

import (
	"testing"

	"github.com/carbocation/pedcall/mendel"
	"github.com/stretchr/testify/require"
)

func TestPloidyOn(t *testing.T) {
	cases := []struct {
		chromosome string
		sex        Sex
		want       mendel.Ploidy
	}{
		{"1", Male, mendel.Diploid},
		{"chr22", Female, mendel.Diploid},
		{"X", Male, mendel.Haploid},
		{"chrX", Female, mendel.Diploid},
		{"0X", SexUnknown, mendel.Diploid},
		{"Y", Male, mendel.Haploid},
		{"chrY", Female, mendel.None},
		{"0Y", SexUnknown, mendel.None},
		{"MT", Female, mendel.Haploid},
		{"chrM", Male, mendel.Haploid},
		{"XY", Male, mendel.Diploid},
	}
	for _, c := range cases {
		require.Equal(t, c.want, PloidyOn(c.chromosome, c.sex), "%s %s", c.chromosome, c.sex)
	}
}

func TestChromosomeName(t *testing.T) {
	require.Equal(t, "01", ChromosomeName(1))
	require.Equal(t, "22", ChromosomeName(22))
	require.Equal(t, "0X", ChromosomeName(23))
	require.Equal(t, "0Y", ChromosomeName(24))
	require.Equal(t, "XY", ChromosomeName(253))
	require.Equal(t, "MT", ChromosomeName(254))
	require.Equal(t, "NA", ChromosomeName(0))
	require.Equal(t, "NA", ChromosomeName(100))

	require.Equal(t, mendel.Haploid, PloidyOn(ChromosomeName(23), Male))
}

func TestParseSex(t *testing.T) {
	for in, want := range map[string]Sex{
		"male":   Male,
		"M":      Male,
		"1":      Male,
		"Female": Female,
		"f":      Female,
		"2":      Female,
		"0":      SexUnknown,
		"":       SexUnknown,
	} {
		got, err := ParseSex(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseSex("3")
	require.Error(t, err)
}
