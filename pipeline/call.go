package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/carbocation/pedcall"
	"github.com/carbocation/pedcall/mendel"
	"github.com/carbocation/pedcall/sitestore"
)

// Result is everything called at one site.
type Result struct {
	Site     *sitestore.Site
	Pedigree *Pedigree
	Code     mendel.Code

	Scores      []*pedcall.HypothesisScore
	NonIdentity float64

	// Disease and Explanation are set when the disease model is on and the
	// site has at most pedcall.MaxDiseaseAlleles alleles.
	Disease     *pedcall.HypothesisScore
	Explanation int
	diseaseMode bool

	// Segregation is set when both parents were called and at least one
	// child is diploid.
	Segregation *float64

	precision int
}

// CallSite scores one site for ped. Samples with missing data get flat
// likelihoods.
func CallSite(cfg *Config, ped *Pedigree, site *sitestore.Site) (*Result, error) {
	if site.NAlleles < 1 {
		return nil, fmt.Errorf("site %s has no alleles", site.ID)
	}
	code := mendel.NewDiploidCode(int(site.NAlleles))

	models := make([]pedcall.Model, ped.Size())
	for i := range models {
		m, err := model(code, ped.Member(i), site, ped.Ordinals[i])
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.ID, err)
		}
		models[i] = m
	}

	fp, err := pedcall.NewFamilyPosterior(ped.Family, code, models, cfg.options()...)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", site.ID, err)
	}

	res := &Result{
		Site:        site,
		Pedigree:    ped,
		Code:        code,
		Scores:      fp.Scores(),
		NonIdentity: fp.NonIdentityPosterior(),
		precision:   cfg.Precision,
		diseaseMode: cfg.Disease,
	}

	if cfg.Disease && code.RangeSize() <= pedcall.MaxDiseaseAlleles {
		d, err := pedcall.NewDiseasedFamilyPosterior(ped.Family, code, fp, cfg.arithmetic())
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.ID, err)
		}
		res.Disease = d.Disease()
		res.Explanation = d.Explanation(fp.Reference())
	}

	if err := res.segregate(fp.Calls()); err != nil {
		return nil, fmt.Errorf("site %s: %w", site.ID, err)
	}

	return res, nil
}

func model(code *mendel.DiploidCode, member pedcall.Member, site *sitestore.Site, ordinal int) (pedcall.Model, error) {
	if member.Ploidy == mendel.None {
		return pedcall.NewLikelihoodModel(mendel.None, 0, nil), nil
	}
	if ordinal < 0 || ordinal >= len(site.Likelihoods) {
		return nil, fmt.Errorf("%s has ordinal %d but the site holds %d samples: %w", member.ID, ordinal, len(site.Likelihoods), pedcall.ErrModelMismatch)
	}

	n := code.Size(member.Ploidy)
	sl := site.Likelihoods[ordinal]
	if sl.Missing {
		return pedcall.NewLikelihoodModel(member.Ploidy, 0, make([]float64, n)), nil
	}
	if sl.Ploidy != member.Ploidy || len(sl.LogLikelihoods) != n {
		return nil, fmt.Errorf("%s is %s with %d hypotheses, stored as %s with %d: %w",
			member.ID, member.Ploidy, n, sl.Ploidy, len(sl.LogLikelihoods), pedcall.ErrModelMismatch)
	}
	return pedcall.NewLikelihoodModel(member.Ploidy, 0, sl.LogLikelihoods), nil
}

func (r *Result) segregate(calls []int) error {
	fam := r.Pedigree.Family
	if fam.Father.Ploidy == mendel.None || fam.Mother.Ploidy == mendel.None {
		return nil
	}

	seg, err := pedcall.NewSegregation(r.Code, fam.Father.Ploidy, calls[pedcall.FatherIndex], fam.Mother.Ploidy, calls[pedcall.MotherIndex])
	if err != nil {
		return err
	}
	for k, child := range fam.Children {
		if child.Ploidy == mendel.Diploid {
			seg.Add(calls[pedcall.FirstChild+k])
		}
	}
	if seg.Total() == 0 {
		return nil
	}

	ll := seg.LogLikelihood()
	r.Segregation = &ll
	return nil
}

// Header names the columns written by Format for ped.
func Header(cfg *Config, ped *Pedigree) string {
	fields := []string{"site", "chromosome", "position", "non_identity"}
	for i := 0; i < ped.Size(); i++ {
		fields = append(fields, ped.Member(i).ID)
	}
	if cfg.Disease {
		fields = append(fields, "disease", "explanation")
	}
	fields = append(fields, "segregation")
	return strings.Join(fields, "\t")
}

// Format renders the result as one tab-separated line. Each member column is
// genotype:posterior, followed by :denovo_posterior when de novo scoring is
// on and :DN when the call is not Mendelian. Members without the locus and
// unavailable values are written as ".".
func (r *Result) Format() string {
	fields := []string{
		r.Site.ID,
		r.Site.Chromosome,
		strconv.FormatUint(uint64(r.Site.Position), 10),
		r.float(r.NonIdentity),
	}
	for i, s := range r.Scores {
		fields = append(fields, r.member(i, s))
	}
	switch {
	case r.Disease != nil:
		fields = append(fields,
			strconv.Itoa(r.Disease.Hypothesis)+":"+r.float(r.Disease.Posterior),
			strconv.Itoa(r.Explanation))
	case r.diseaseMode:
		fields = append(fields, ".", ".")
	}
	if r.Segregation != nil {
		fields = append(fields, pedcall.FormatSegregation(*r.Segregation))
	} else {
		fields = append(fields, ".")
	}
	return strings.Join(fields, "\t")
}

func (r *Result) member(i int, s *pedcall.HypothesisScore) string {
	if s == nil {
		return "."
	}
	out := Genotype(r.Code, r.Pedigree.Member(i).Ploidy, s.Hypothesis) + ":" + r.float(s.Posterior)
	if s.DenovoScored {
		out += ":" + r.float(s.DenovoPosterior)
		if s.Denovo {
			out += ":DN"
		}
	}
	return out
}

func (r *Result) float(v float64) string {
	return strconv.FormatFloat(v, 'f', r.precision, 64)
}

// Genotype writes hypothesis h as allele indices, "a" for haploid and "a/b"
// for diploid.
func Genotype(code mendel.Code, ploidy mendel.Ploidy, h int) string {
	switch {
	case h == mendel.Missing:
		return "."
	case ploidy == mendel.Haploid:
		return strconv.Itoa(code.Allele1(h))
	case ploidy == mendel.Diploid:
		return strconv.Itoa(code.Allele1(h)) + "/" + strconv.Itoa(code.Allele2(h))
	}
	return "."
}
