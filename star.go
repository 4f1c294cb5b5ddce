package kplr

import (
	"context"
	"fmt"
	"strconv"
)

// Star is a KIC target. It is identified by its Kepler ID and lazily
// resolves the KOIs it hosts through the gateway that produced it.
type Star struct {
	gw  Gateway
	row Row

	// KepID is the target's Kepler Input Catalog ID.
	KepID int64

	kois relation[[]*KOI]
}

func newStar(gw Gateway, row Row) (*Star, error) {
	kepid, err := row.Int("kic_kepler_id")
	if err != nil {
		return nil, err
	}
	return &Star{gw: gw, row: row, KepID: kepid}, nil
}

// Row returns the full row mapping the star was built from.
func (s *Star) Row() Row {
	return s.row
}

// ID returns the star's identity, its Kepler ID rendered in decimal.
func (s *Star) ID() string {
	return strconv.FormatInt(s.KepID, 10)
}

func (s *Star) String() string {
	return fmt.Sprintf("Star(%s)", s.ID())
}

// KOIs returns the KOIs hosted by this star. The list is resolved through
// the owning gateway on first call and memoized.
func (s *Star) KOIs(ctx context.Context) ([]*KOI, error) {
	return s.kois.resolve(func() ([]*KOI, error) {
		return s.gw.koisForStar(ctx, s.KepID)
	})
}

// LightCurves lists the light curve data sets for this star.
func (s *Star) LightCurves(ctx context.Context, opts ...DataSearchOption) ([]*LightCurve, error) {
	return s.gw.LightCurves(ctx, s.KepID, opts...)
}

// TargetPixelFiles lists the target pixel file data sets for this star.
func (s *Star) TargetPixelFiles(ctx context.Context, opts ...DataSearchOption) ([]*TargetPixelFile, error) {
	return s.gw.TargetPixelFiles(ctx, s.KepID, opts...)
}
