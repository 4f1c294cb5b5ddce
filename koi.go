package kplr

import (
	"context"
	"fmt"
)

// KOI is a Kepler Object of Interest, a planetary candidate from the
// cumulative catalog. It is identified by its catalog name (for example
// "K00752.01") and lazily resolves its host star.
type KOI struct {
	gw  Gateway
	row Row

	// Name is the catalog name, for example "K00752.01".
	Name string

	// KepID is the host star's Kepler ID, or 0 when the row lacks one.
	KepID int64

	star relation[*Star]
}

func newKOI(gw Gateway, row Row) (*KOI, error) {
	name, err := row.Str("kepoi_name")
	if err != nil {
		return nil, err
	}
	k := &KOI{gw: gw, row: row, Name: name}
	// kepid is not part of the KOI's identity; without it only the lazy
	// star relation and the data file accessors are unavailable.
	k.KepID, _ = row.Int("kepid")
	return k, nil
}

// Row returns the full row mapping the KOI was built from.
func (k *KOI) Row() Row {
	return k.row
}

// ID returns the KOI's identity, its catalog name.
func (k *KOI) ID() string {
	return k.Name
}

func (k *KOI) String() string {
	return fmt.Sprintf("KOI(%q)", k.ID())
}

// Star returns the KOI's host star. The star is resolved through the
// owning gateway on first call and memoized.
func (k *KOI) Star(ctx context.Context) (*Star, error) {
	return k.star.resolve(func() (*Star, error) {
		if k.KepID == 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, "kepid")
		}
		return k.gw.Star(ctx, k.KepID)
	})
}

// LightCurves lists the light curve data sets for the KOI's host star.
func (k *KOI) LightCurves(ctx context.Context, opts ...DataSearchOption) ([]*LightCurve, error) {
	if k.KepID == 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, "kepid")
	}
	return k.gw.LightCurves(ctx, k.KepID, opts...)
}

// TargetPixelFiles lists the target pixel file data sets for the KOI's
// host star.
func (k *KOI) TargetPixelFiles(ctx context.Context, opts ...DataSearchOption) ([]*TargetPixelFile, error) {
	if k.KepID == 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, "kepid")
	}
	return k.gw.TargetPixelFiles(ctx, k.KepID, opts...)
}
