package kplr

import (
	"fmt"
	"strconv"
)

// Adapter shapes one raw survey-service row into the canonical field set
// shared with the catalog service. MAST returns display column labels
// ("Kepler ID", "Dataset Name", ...); an adapter maps each label to its
// canonical field name and type so entity field names are independent of
// which gateway produced them. Labels without a mapping are dropped.
type Adapter func(raw map[string]any) Row

type fieldKind int

const (
	fieldString fieldKind = iota
	fieldInt
	fieldFloat
)

type fieldSpec struct {
	name string
	kind fieldKind
}

// adapterFor builds an Adapter from a label-to-field mapping. Empty values
// map to null regardless of the declared kind; values that fail to parse
// as the declared kind are kept as strings rather than failing the row.
func adapterFor(fields map[string]fieldSpec) Adapter {
	return func(raw map[string]any) Row {
		row := make(Row, len(fields))
		for label, spec := range fields {
			v, ok := raw[label]
			if !ok {
				continue
			}
			row[spec.name] = convertField(v, spec.kind)
		}
		return row
	}
}

func convertField(v any, kind fieldKind) any {
	if v == nil {
		return nil
	}
	s, isString := v.(string)
	if isString && s == "" {
		return nil
	}
	switch kind {
	case fieldInt:
		if isString {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i
			}
			return s
		}
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			return int64(f)
		}
		return v
	case fieldFloat:
		if isString {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
			return s
		}
		return v
	default:
		if isString {
			return s
		}
		return fmt.Sprint(v)
	}
}

// starAdapter shapes rows from the kic10 table.
var starAdapter = adapterFor(map[string]fieldSpec{
	"Kepler ID":   {"kic_kepler_id", fieldInt},
	"RA (J2000)":  {"kic_degree_ra", fieldFloat},
	"Dec (J2000)": {"kic_dec", fieldFloat},
	"Kepler Mag":  {"kic_kepmag", fieldFloat},
	"Teff":        {"kic_teff", fieldInt},
	"Log G":       {"kic_logg", fieldFloat},
	"Metallicity": {"kic_feh", fieldFloat},
	"E(B-V)":      {"kic_ebminusv", fieldFloat},
	"A_V":         {"kic_av", fieldFloat},
	"Radius":      {"kic_radius", fieldFloat},
	"2MASS ID":    {"kic_2mass_id", fieldString},
})

// planetAdapter shapes rows from the confirmed_planets table.
var planetAdapter = adapterFor(map[string]fieldSpec{
	"Planet Name":      {"planet_name", fieldString},
	"Kepler Name":      {"kepler_name", fieldString},
	"KOI":              {"koi_number", fieldFloat},
	"Kepler ID":        {"kepid", fieldInt},
	"RA (J2000)":       {"degree_ra", fieldFloat},
	"Dec (J2000)":      {"degree_dec", fieldFloat},
	"Period":           {"period", fieldFloat},
	"Transit Epoch":    {"transit_epoch", fieldFloat},
	"Transit Duration": {"transit_duration", fieldFloat},
	"Planet Radius":    {"planet_radius", fieldFloat},
	"Semi-major Axis":  {"semi_major_axis", fieldFloat},
	"Equilibrium Temp": {"equilibrium_temp", fieldFloat},
	"Kepler Mag":       {"kepmag", fieldFloat},
	"Stellar Temp":     {"stellar_temp", fieldInt},
	"Stellar Radius":   {"stellar_radius", fieldFloat},
	"Stellar Log G":    {"stellar_logg", fieldFloat},
})

// datasetAdapter shapes rows from the data_search table.
var datasetAdapter = adapterFor(map[string]fieldSpec{
	"Kepler ID":         {"ktc_kepler_id", fieldInt},
	"Investigation ID":  {"ktc_investigation_id", fieldString},
	"Dataset Name":      {"sci_data_set_name", fieldString},
	"Target Type":       {"ktc_target_type", fieldString},
	"Quarter":           {"sci_data_quarter", fieldInt},
	"Actual Start Time": {"sci_start_time", fieldString},
	"Actual End Time":   {"sci_end_time", fieldString},
	"Release Date":      {"sci_release_date", fieldString},
	"RA (J2000)":        {"sci_ra", fieldFloat},
	"Dec (J2000)":       {"sci_dec", fieldFloat},
})
