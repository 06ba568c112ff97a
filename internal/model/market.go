package model

import "time"

// ListingStatus tracks a MarketListing's lifecycle.
type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingSold      ListingStatus = "sold"
	ListingCancelled ListingStatus = "cancelled"
)

// ListingSubject names what a MarketListing is selling: a bare tile or a
// built BuildingInstance.
type ListingSubject string

const (
	SubjectTile     ListingSubject = "tile"
	SubjectBuilding ListingSubject = "building"
)

// MarketListing is an asking price published by an owner (spec.md §3).
type MarketListing struct {
	ID         string
	MapID      string
	Coordinate Coordinate
	Subject    ListingSubject
	SellerID   string
	AskingPrice Cents
	Status     ListingStatus
	CreatedAt  time.Time
}
