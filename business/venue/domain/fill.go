package domain

import "github.com/rosegoldcruz/theatom-sub000/internal/asset"

// Fill is the realized result of one executed hop: the amount actually paid
// in, the amount actually received, and the resource units the venue charged.
type Fill struct {
	HopIndex      int
	VenueID       string
	Kind          Kind
	In            asset.Amount
	Out           asset.Amount
	ResourceUnits uint64
}
