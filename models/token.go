package models

import (
	"github.com/shopspring/decimal"
)

// TokenProperty is one (key, value) pair of a token's NFT-style properties.
type TokenProperty struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TokenMetadata is the read-only NFT-style projection of a ticket.
// IsApproved is always false; an approval workflow does not exist here.
type TokenMetadata struct {
	TokenID      uint64          `json:"token_id"`
	Owner        Principal       `json:"owner"`
	MetadataBlob []byte          `json:"metadata_blob,omitempty"`
	Properties   []TokenProperty `json:"properties"`
	IsApproved   bool            `json:"is_approved"`
}

// EventStats aggregates sales for a single event. PlatformFees is the
// platform's nominal cut of the revenue; it is reporting only, no funds move.
type EventStats struct {
	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	ValidTickets int             `json:"valid_tickets"`
	PlatformFees decimal.Decimal `json:"platform_fees"`
}
