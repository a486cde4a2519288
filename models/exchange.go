package models

import "fmt"

// ExchangeRate is one row of the fixed XP-to-voucher exchange table,
// addressed by index from the API.
type ExchangeRate struct {
	XPCost             int64       `json:"xp_cost"`
	DiscountPercentage int         `json:"discount_percentage"`
	ExpiryDays         int         `json:"expiry_days"`
	Partner            string      `json:"partner"`
	VoucherType        VoucherType `json:"voucher_type"`
}

// Template converts the rate into the voucher template minted on exchange.
func (r ExchangeRate) Template() VoucherTemplate {
	return VoucherTemplate{
		DiscountPercentage: r.DiscountPercentage,
		ExpiryDays:         r.ExpiryDays,
		Partner:            r.Partner,
		Type:               r.VoucherType,
	}
}

// ExchangeRateTable holds the administered rates.
type ExchangeRateTable []ExchangeRate

// Validate rejects malformed rate entries at startup.
func (t ExchangeRateTable) Validate() error {
	for i, r := range t {
		if r.XPCost <= 0 {
			return fmt.Errorf("exchange rate %d has non-positive xp cost %d", i, r.XPCost)
		}
		if r.DiscountPercentage <= 0 || r.DiscountPercentage > 100 {
			return fmt.Errorf("exchange rate %d has invalid discount %d", i, r.DiscountPercentage)
		}
		if r.ExpiryDays <= 0 {
			return fmt.Errorf("exchange rate %d has invalid expiry %d", i, r.ExpiryDays)
		}
	}
	return nil
}

// DefaultExchangeRates is the shipped exchange table.
var DefaultExchangeRates = ExchangeRateTable{
	{XPCost: 500, DiscountPercentage: 5, ExpiryDays: 30, Partner: "Island Hopper Tours", VoucherType: VoucherTypeDiscount},
	{XPCost: 1200, DiscountPercentage: 10, ExpiryDays: 45, Partner: "Summit Trek Co", VoucherType: VoucherTypeDiscount},
	{XPCost: 2500, DiscountPercentage: 20, ExpiryDays: 60, Partner: "Coastline Resorts", VoucherType: VoucherTypeDiscount},
	{XPCost: 5000, DiscountPercentage: 30, ExpiryDays: 90, Partner: "Grand Heritage Hotels", VoucherType: VoucherTypeExperience},
}
