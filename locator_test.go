package kplr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPadKepID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "000758591", padKepID(758591))
	assert.Equal(t, "010797460", padKepID(10797460))
	assert.Equal(t, "100000000", padKepID(100000000))
}

func TestLocalDataPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		prod       product
		targetType string
		want       string
	}{
		{
			name:       "long cadence light curve",
			prod:       lightCurveProduct,
			targetType: "LC",
			want:       "/data/data/lightcurves/000758591/kplr008561063-2013011073258_llc.fits",
		},
		{
			name:       "short cadence light curve",
			prod:       lightCurveProduct,
			targetType: "SC",
			want:       "/data/data/lightcurves/000758591/kplr008561063-2013011073258_slc.fits",
		},
		{
			name:       "long cadence target pixel file",
			prod:       targetPixelProduct,
			targetType: "LC",
			want:       "/data/data/target_pixel_files/000758591/kplr008561063-2013011073258_lpd-targ.fits.gz",
		},
		{
			name:       "short cadence target pixel file",
			prod:       targetPixelProduct,
			targetType: "SC",
			want:       "/data/data/target_pixel_files/000758591/kplr008561063-2013011073258_spd-targ.fits.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := localDataPath("/data", tt.prod, 758591, "kplr008561063-2013011073258", tt.targetType)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemoteDataURL(t *testing.T) {
	t.Parallel()

	got := remoteDataURL(DefaultDataURL, lightCurveProduct, 758591, "kplr008561063-2013011073258", "LC")
	assert.Equal(t,
		"http://archive.stsci.edu/pub/kepler/lightcurves/0007/000758591/kplr008561063-2013011073258_llc.fits",
		got)
}

func TestFilenameLowercased(t *testing.T) {
	t.Parallel()

	// MAST reports dataset names in upper case; cache filenames are lower.
	got := lightCurveProduct.filename("KPLR008561063-2013011073258", "LC")
	assert.Equal(t, "kplr008561063-2013011073258_llc.fits", got)
}
