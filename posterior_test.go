package pedcall_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/carbocation/pedcall"
	"github.com/carbocation/pedcall/lattice"
	"github.com/carbocation/pedcall/mendel"
	"github.com/stretchr/testify/require"
)

var (
	refPrior    = math.Log(1e-9)
	nonRefPrior = math.Log(1e-8)
)

func diploid(lls ...float64) pedcall.Model {
	return pedcall.NewLikelihoodModel(mendel.Diploid, 0, lls)
}

func haploid(lls ...float64) pedcall.Model {
	return pedcall.NewLikelihoodModel(mendel.Haploid, 0, lls)
}

func absent() pedcall.Model {
	return pedcall.NewLikelihoodModel(mendel.None, 0, nil)
}

func nuclear(children int) *pedcall.Family {
	fam := &pedcall.Family{
		Father: pedcall.Member{ID: "father", Ploidy: mendel.Diploid},
		Mother: pedcall.Member{ID: "mother", Ploidy: mendel.Diploid},
	}
	for i := 0; i < children; i++ {
		fam.Children = append(fam.Children, pedcall.Member{ID: fmt.Sprintf("child%d", i), Ploidy: mendel.Diploid})
	}
	return fam
}

func TestAllReferenceTrio(t *testing.T) {
	code := mendel.NewDiploidCode(2)
	inf := math.Inf(-1)

	fp, err := pedcall.NewFamilyPosterior(nuclear(2), code, []pedcall.Model{
		diploid(0, inf, inf),
		diploid(0, inf, inf),
		diploid(0, inf, inf),
		diploid(0, inf, inf),
	}, pedcall.WithDenovoPriors(refPrior, nonRefPrior))
	require.NoError(t, err)

	require.True(t, math.IsInf(fp.NonIdentityPosterior(), -1), "got %v", fp.NonIdentityPosterior())
	for i, score := range fp.Scores() {
		require.Equal(t, 0, score.Hypothesis, "member %d", i)
	}
}

func TestMostlyReferenceTrio(t *testing.T) {
	code := mendel.NewDiploidCode(2)

	fp, err := pedcall.NewFamilyPosterior(nuclear(1), code, []pedcall.Model{
		diploid(0, -60, -30),
		diploid(0, -60, -30),
		diploid(0, -60, -30),
	})
	require.NoError(t, err)

	require.Less(t, fp.NonIdentityPosterior(), -20.0)
	for i, score := range fp.Scores() {
		require.Equal(t, 0, score.Hypothesis, "member %d", i)
		require.Greater(t, score.Posterior, 20.0, "member %d", i)
	}
}

func TestHomRefByHetChild(t *testing.T) {
	code := mendel.NewDiploidCode(2)
	homRef, homAlt, het := code.Hypothesis(0, 0), code.Hypothesis(1, 1), code.Hypothesis(0, 1)
	inf := math.Inf(-1)

	fp, err := pedcall.NewFamilyPosterior(nuclear(1), code, []pedcall.Model{
		diploid(0, inf, inf),
		diploid(inf, inf, 0),
		diploid(0, 0, 0),
	})
	require.NoError(t, err)

	require.Equal(t, homRef, fp.Score(pedcall.FatherIndex).Hypothesis)
	require.Equal(t, het, fp.Score(pedcall.MotherIndex).Hypothesis)

	child := fp.Marginal(pedcall.FirstChild)
	require.InDelta(t, child[homRef], child[het], 1e-12)
	require.True(t, math.IsInf(child[homAlt], -1))
	require.InDelta(t, math.Log(0.5), child[het]-fp.Total(), 1e-12)
	require.Greater(t, fp.NonIdentityPosterior(), 20.0)
}

func TestMendelianConstraint(t *testing.T) {
	code := mendel.NewDiploidCode(2)
	homRef, het := code.Hypothesis(0, 0), code.Hypothesis(0, 1)

	parents := func() []pedcall.Model {
		return []pedcall.Model{diploid(0, -100, -100), diploid(0, -100, -100)}
	}

	t.Run("weak child evidence is overruled", func(t *testing.T) {
		models := append(parents(), diploid(-2, -10, 0))
		fp, err := pedcall.NewFamilyPosterior(nuclear(1), code, models, pedcall.WithDenovoPriors(refPrior, nonRefPrior))
		require.NoError(t, err)

		score := fp.Score(pedcall.FirstChild)
		require.Equal(t, homRef, score.Hypothesis)
		require.True(t, score.DenovoScored)
		require.False(t, score.Denovo)
		require.Less(t, score.DenovoPosterior, 0.0)
	})

	t.Run("strong child evidence is a de novo", func(t *testing.T) {
		models := append(parents(), diploid(-100, -100, 0))
		fp, err := pedcall.NewFamilyPosterior(nuclear(1), code, models, pedcall.WithDenovoPriors(refPrior, nonRefPrior))
		require.NoError(t, err)

		score := fp.Score(pedcall.FirstChild)
		require.Equal(t, het, score.Hypothesis)
		require.True(t, score.Denovo)
		require.Greater(t, score.DenovoPosterior, 20.0)
		require.Greater(t, fp.DenovoPosterior(0), 20.0)
	})

	t.Run("without de novo scoring the parents explain the child", func(t *testing.T) {
		models := append(parents(), diploid(-100, -100, 0))
		fp, err := pedcall.NewFamilyPosterior(nuclear(1), code, models)
		require.NoError(t, err)

		score := fp.Score(pedcall.FirstChild)
		require.Equal(t, het, score.Hypothesis)
		require.False(t, score.DenovoScored)
		require.False(t, score.Denovo)
		require.Equal(t, 0.0, fp.DenovoPosterior(0))

		// The only Mendelian route to a het child is a het parent, so that
		// genotype keeps finite mass even though hom-ref parents win.
		require.False(t, math.IsInf(fp.Marginal(pedcall.FatherIndex)[het], -1))
		require.False(t, math.IsInf(fp.Marginal(pedcall.MotherIndex)[het], -1))
		require.Equal(t, homRef, fp.Score(pedcall.FatherIndex).Hypothesis)
	})
}

func TestContraryAdjustment(t *testing.T) {
	code := mendel.NewDiploidCode(2)
	het := code.Hypothesis(0, 1)

	var calls int
	contrary := func(child, father, mother, h int) float64 {
		calls++
		require.Equal(t, 0, child)
		if h == het {
			return math.Inf(-1)
		}
		return 0
	}

	fp, err := pedcall.NewFamilyPosterior(nuclear(1), code, []pedcall.Model{
		diploid(0, 0, 0),
		diploid(0, 0, 0),
		diploid(-5, -5, 0),
	}, pedcall.WithContrary(contrary))
	require.NoError(t, err)

	require.Equal(t, 3*3*3, calls)
	require.True(t, math.IsInf(fp.Marginal(pedcall.FirstChild)[het], -1))
	require.NotEqual(t, het, fp.Score(pedcall.FirstChild).Hypothesis)
}

func TestSexChromosomes(t *testing.T) {
	code := mendel.NewDiploidCode(2)

	t.Run("Y", func(t *testing.T) {
		fam := &pedcall.Family{
			Father: pedcall.Member{ID: "father", Ploidy: mendel.Haploid},
			Mother: pedcall.Member{ID: "mother", Ploidy: mendel.None},
			Children: []pedcall.Member{
				{ID: "son", Ploidy: mendel.Haploid},
				{ID: "daughter", Ploidy: mendel.None},
			},
		}
		fp, err := pedcall.NewFamilyPosterior(fam, code, []pedcall.Model{
			haploid(-10, 0),
			absent(),
			haploid(0, 0),
			absent(),
		})
		require.NoError(t, err)

		require.Equal(t, 1, fp.Score(pedcall.FatherIndex).Hypothesis)
		require.Equal(t, 1, fp.Score(pedcall.FirstChild).Hypothesis)
		require.Nil(t, fp.Score(pedcall.MotherIndex))
		require.Nil(t, fp.Score(pedcall.FirstChild+1))
		require.Equal(t, []int{1, mendel.Missing, 1, mendel.Missing}, fp.Calls())
	})

	t.Run("X", func(t *testing.T) {
		fam := &pedcall.Family{
			Father: pedcall.Member{ID: "father", Ploidy: mendel.Haploid},
			Mother: pedcall.Member{ID: "mother", Ploidy: mendel.Diploid},
			Children: []pedcall.Member{
				{ID: "son", Ploidy: mendel.Haploid},
				{ID: "daughter", Ploidy: mendel.Diploid},
			},
		}
		inf := math.Inf(-1)
		fp, err := pedcall.NewFamilyPosterior(fam, code, []pedcall.Model{
			haploid(inf, 0),
			diploid(0, inf, inf),
			haploid(0, 0),
			diploid(0, 0, 0),
		})
		require.NoError(t, err)

		// The son takes his X from his mother, the daughter one from each parent.
		require.Equal(t, 0, fp.Score(pedcall.FirstChild).Hypothesis)
		require.Equal(t, code.Hypothesis(0, 1), fp.Score(pedcall.FirstChild+1).Hypothesis)
	})
}

func TestFamilyPosteriorErrors(t *testing.T) {
	code := mendel.NewDiploidCode(2)

	_, err := pedcall.NewFamilyPosterior(nuclear(0), code, []pedcall.Model{diploid(0, 0, 0), diploid(0, 0, 0)})
	require.ErrorIs(t, err, pedcall.ErrInvalidPedigree)

	_, err = pedcall.NewFamilyPosterior(nuclear(1), code, []pedcall.Model{diploid(0, 0, 0), diploid(0, 0, 0)})
	require.ErrorIs(t, err, pedcall.ErrModelMismatch)

	_, err = pedcall.NewFamilyPosterior(nuclear(1), code, []pedcall.Model{diploid(0, 0, 0), diploid(0, 0, 0), haploid(0, 0)})
	require.ErrorIs(t, err, pedcall.ErrModelMismatch)

	// Six diploid hypotheses belong to a three-allele site, not this one.
	_, err = pedcall.NewFamilyPosterior(nuclear(1), code, []pedcall.Model{diploid(0, 0, 0), diploid(0, 0, 0), diploid(0, 0, 0, 0, 0, 0)})
	require.ErrorIs(t, err, pedcall.ErrModelMismatch)

	_, err = pedcall.NewFamilyPosterior(nuclear(1), code, []pedcall.Model{diploid(0, 0), diploid(0, 0, 0), diploid(0, 0, 0)})
	require.ErrorIs(t, err, pedcall.ErrModelMismatch)

	_, err = pedcall.NewFamilyPosterior(nuclear(1), code, []pedcall.Model{
		diploid(0, 0, 0),
		pedcall.NewLikelihoodModel(mendel.Diploid, 2, []float64{0, 0, 0}),
		diploid(0, 0, 0),
	})
	require.ErrorIs(t, err, pedcall.ErrReferenceMismatch)

	fam := nuclear(1)
	fam.Mother.Ploidy = mendel.None
	_, err = pedcall.NewFamilyPosterior(fam, code, []pedcall.Model{diploid(0, 0, 0), absent(), diploid(0, 0, 0)})
	require.ErrorIs(t, err, mendel.ErrUnsupportedPloidy)
}

// TestMatchesEnumeration checks the prefix/suffix combination of children
// against direct enumeration of every joint genotype assignment.
func TestMatchesEnumeration(t *testing.T) {
	code := mendel.NewDiploidCode(2)
	table, err := mendel.Lookup(mendel.Diploid, mendel.Diploid, mendel.Diploid)
	require.NoError(t, err)
	comb := mendel.NewCombiner(table, code, 0, refPrior, nonRefPrior)

	lls := [][]float64{
		{-1, -4, -0.5},
		{-0.2, -6, -1.5},
		{-3, -7, -0.1},
		{-0.3, -2, -2},
		{-5, -0.4, -1},
	}
	models := make([]pedcall.Model, len(lls))
	for i, l := range lls {
		models[i] = diploid(l...)
	}

	fp, err := pedcall.NewFamilyPosterior(nuclear(3), code, models, pedcall.WithDenovoPriors(refPrior, nonRefPrior))
	require.NoError(t, err)

	n := code.Size(mendel.Diploid)
	want := make([][]float64, len(lls))
	for i := range want {
		want[i] = []float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	}
	total, identity := math.Inf(-1), math.Inf(-1)
	denovo, nonDenovo := math.Inf(-1), math.Inf(-1)

	g := make([]int, len(lls))
	var walk func(k int)
	walk = func(k int) {
		if k < len(g) {
			for h := 0; h < n; h++ {
				g[k] = h
				walk(k + 1)
			}
			return
		}
		v := lls[0][g[0]] + lls[1][g[1]]
		for c := 2; c < len(g); c++ {
			v += lls[c][g[c]] + comb.LogProbability(g[0], g[1], g[c])
		}
		total = lattice.LogAdd(total, v)
		allRef := true
		for i, h := range g {
			want[i][h] = lattice.LogAdd(want[i][h], v)
			allRef = allRef && h == 0
		}
		if allRef {
			identity = lattice.LogAdd(identity, v)
		}
		if comb.IsDenovo(g[0], g[1], g[2]) {
			denovo = lattice.LogAdd(denovo, v)
		} else {
			nonDenovo = lattice.LogAdd(nonDenovo, v)
		}
	}
	walk(0)

	require.InDelta(t, total, fp.Total(), 1e-9)
	for i := range want {
		require.InDeltaSlice(t, want[i], fp.Marginal(i), 1e-9, "member %d", i)
	}
	require.InDelta(t, lattice.LogSub(total, identity)-identity, fp.NonIdentityPosterior(), 1e-9)
	require.InDelta(t, denovo-nonDenovo, fp.DenovoPosterior(0), 1e-9)
}
