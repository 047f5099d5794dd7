package sitestore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/pedcall"
	"github.com/carbocation/pedcall/mendel"
	"github.com/carbocation/pfx"
)

// siteColumns precede the per-sample columns of an import file.
var siteColumns = []string{"site", "chromosome", "position", "alleles"}

func newTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.ReuseRecord = true
	return cr
}

// ParseSamples reads tab-separated "id sex diseased" lines. Sex takes any
// form ParseSex accepts; diseased is a boolean such as 0/1 or true/false.
func ParseSamples(r io.Reader) ([]Sample, error) {
	cr := newTSVReader(r)
	cr.FieldsPerRecord = 3

	var samples []Sample
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		sex, err := pedcall.ParseSex(rec[1])
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("sample %s: %w", rec[0], err))
		}
		diseased, err := strconv.ParseBool(rec[2])
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("sample %s: %w", rec[0], err))
		}
		samples = append(samples, Sample{
			Ordinal:  len(samples),
			SampleID: rec[0],
			Sex:      sex,
			Diseased: diseased,
		})
	}
	return samples, nil
}

// Import reads a tab-separated likelihood file into s and returns the number
// of sites written. The header names the site columns followed by one column
// per sample; each sample must be described in samples. A sample cell holds
// comma-separated natural-log likelihoods, one per genotype of the sample's
// ploidy on that chromosome, "." when the data is missing, or "-" where the
// sample lacks the chromosome.
func Import(s *Store, r io.Reader, samples []Sample, c Compression) (int, error) {
	cr := newTSVReader(r)

	header, err := cr.Read()
	if err != nil {
		return 0, pfx.Err(fmt.Errorf("reading header: %w", err))
	}
	if len(header) < len(siteColumns) || strings.Join(header[:len(siteColumns)], "\t") != strings.Join(siteColumns, "\t") {
		return 0, pfx.Err(fmt.Errorf("header must start with %s", strings.Join(siteColumns, ", ")))
	}

	byID := make(map[string]Sample, len(samples))
	for _, sample := range samples {
		byID[sample.SampleID] = sample
	}
	ordered := make([]Sample, 0, len(header)-len(siteColumns))
	for i, id := range header[len(siteColumns):] {
		sample, ok := byID[id]
		if !ok {
			return 0, pfx.Err(fmt.Errorf("sample %s has no sex or disease status", id))
		}
		sample.Ordinal = i
		if err := s.InsertSample(sample); err != nil {
			return 0, err
		}
		ordered = append(ordered, sample)
	}

	n := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return n, pfx.Err(err)
		}

		site, err := parseSite(rec, ordered)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return n, pfx.Err(fmt.Errorf("line %d: %w", line, err))
		}
		if err := s.InsertSite(site, c); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func parseSite(rec []string, samples []Sample) (*Site, error) {
	position, err := strconv.ParseUint(rec[2], 10, 32)
	if err != nil {
		return nil, err
	}
	nAlleles, err := strconv.ParseUint(rec[3], 10, 16)
	if err != nil {
		return nil, err
	}
	if nAlleles < 1 {
		return nil, fmt.Errorf("site %s has no alleles", rec[0])
	}

	site := &Site{
		ID:         rec[0],
		Chromosome: rec[1],
		Position:   uint32(position),
		NAlleles:   uint16(nAlleles),
	}
	code := mendel.NewDiploidCode(int(nAlleles))
	for i, cell := range rec[len(siteColumns):] {
		ploidy := pedcall.PloidyOn(site.Chromosome, samples[i].Sex)
		sl, err := parseCell(cell, ploidy, code.Size(ploidy))
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", samples[i].SampleID, err)
		}
		site.Likelihoods = append(site.Likelihoods, sl)
	}
	return site, nil
}

func parseCell(cell string, ploidy mendel.Ploidy, n int) (*SampleLikelihood, error) {
	sl := &SampleLikelihood{Ploidy: ploidy, LogLikelihoods: []float64{}}
	switch {
	case ploidy == mendel.None:
		if cell != "-" && cell != "." {
			return nil, fmt.Errorf("expected no data, got %q", cell)
		}
		return sl, nil
	case cell == ".":
		sl.Missing = true
		return sl, nil
	}

	parts := strings.Split(cell, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%s sample has %d likelihoods, expected %d", ploidy, len(parts), n)
	}
	sl.LogLikelihoods = make([]float64, n)
	for h, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		sl.LogLikelihoods[h] = v
	}
	return sl, nil
}
