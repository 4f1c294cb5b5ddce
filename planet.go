package kplr

import (
	"context"
	"fmt"
)

// Planet is a confirmed Kepler planet. It is identified by its Kepler
// name and lazily resolves its KOI and host star.
type Planet struct {
	gw  Gateway
	row Row

	// KeplerName is the planet's name, for example "Kepler-62 b".
	KeplerName string

	// KOINumber is the number of the planet's KOI, or 0 when the row
	// lacks one.
	KOINumber float64

	// KepID is the host star's Kepler ID, or 0 when the row lacks one.
	KepID int64

	koi  relation[*KOI]
	star relation[*Star]
}

func newPlanet(gw Gateway, row Row) (*Planet, error) {
	name, err := row.Str("kepler_name")
	if err != nil {
		return nil, err
	}
	p := &Planet{gw: gw, row: row, KeplerName: name}
	p.KOINumber, _ = row.Float("koi_number")
	p.KepID, _ = row.Int("kepid")
	return p, nil
}

// Row returns the full row mapping the planet was built from.
func (p *Planet) Row() Row {
	return p.row
}

// ID returns the planet's identity, its Kepler name.
func (p *Planet) ID() string {
	return p.KeplerName
}

func (p *Planet) String() string {
	return fmt.Sprintf("Planet(%q)", p.ID())
}

// KOI returns the planet's KOI. The KOI is resolved through the owning
// gateway on first call and memoized.
func (p *Planet) KOI(ctx context.Context) (*KOI, error) {
	return p.koi.resolve(func() (*KOI, error) {
		if p.KOINumber == 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, "koi_number")
		}
		return p.gw.KOI(ctx, p.KOINumber)
	})
}

// Star returns the planet's host star. The star is resolved through the
// owning gateway on first call and memoized.
func (p *Planet) Star(ctx context.Context) (*Star, error) {
	return p.star.resolve(func() (*Star, error) {
		if p.KepID == 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, "kepid")
		}
		return p.gw.Star(ctx, p.KepID)
	})
}
