package models

import "time"

// VoucherType indicates what the voucher buys.
type VoucherType string

const (
	VoucherTypeDiscount   VoucherType = "discount"
	VoucherTypeExperience VoucherType = "experience"
)

// VoucherSource records which engine path minted the voucher.
type VoucherSource string

const (
	VoucherSourceLevelUp    VoucherSource = "LEVEL_UP"
	VoucherSourceXPExchange VoucherSource = "XP_EXCHANGE"
)

// Voucher is a redeemable partner discount. It flips exactly once from
// unused to used; after ExpiryDate it is inert but kept for history.
type Voucher struct {
	ID             string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code           string `gorm:"uniqueIndex;not null" json:"code"`
	ExternalUserID string `gorm:"index;not null" json:"external_user_id"`

	DiscountPercentage int       `json:"discount_percentage"`
	ExpiryDate         time.Time `json:"expiry_date"`

	IsUsed bool       `gorm:"default:false;index" json:"is_used"`
	UsedAt *time.Time `json:"used_at,omitempty"`

	LinkedPartner string        `json:"linked_partner"`
	VoucherType   VoucherType   `gorm:"not null" json:"voucher_type"`
	SourceType    VoucherSource `gorm:"not null" json:"source_type"`
	SourceID      string        `json:"source_id,omitempty"`

	Timestamps
}

// Expired is a computed state, never stored: unused and past expiry.
func (v *Voucher) Expired(now time.Time) bool {
	return !v.IsUsed && now.After(v.ExpiryDate)
}

// Available reports whether the voucher can still be redeemed.
func (v *Voucher) Available(now time.Time) bool {
	return !v.IsUsed && !now.After(v.ExpiryDate)
}
