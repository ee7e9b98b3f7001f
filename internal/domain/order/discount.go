package order

import (
	"github.com/shopspring/decimal"

	"github.com/ikram-javatech/product-order-service/internal/domain/user"
)

// DiscountKind selects the role-based discount variant.
type DiscountKind int

const (
	// DiscountNone applies no role-based discount.
	DiscountNone DiscountKind = iota
	// DiscountPremium grants PREMIUM_USER holders 10% of the subtotal.
	DiscountPremium
)

var (
	premiumRate        = decimal.RequireFromString("0.10")
	surchargeRate      = decimal.RequireFromString("0.05")
	surchargeThreshold = decimal.RequireFromString("500")
)

// DiscountKindFor selects the discount variant for a role set.
func DiscountKindFor(roles []string) DiscountKind {
	for _, r := range roles {
		if r == user.RolePremium {
			return DiscountPremium
		}
	}
	return DiscountNone
}

// ComputeDiscount returns the total discount for a subtotal and role set:
// the role-based variant (premium 10%, otherwise zero) plus, uniformly for
// every variant, a further 5% of the subtotal when it exceeds 500.
// Pure and deterministic; the result is not rounded.
func ComputeDiscount(subtotal decimal.Decimal, roles []string) decimal.Decimal {
	discount := decimal.Zero
	if DiscountKindFor(roles) == DiscountPremium {
		discount = subtotal.Mul(premiumRate)
	}
	if subtotal.GreaterThan(surchargeThreshold) {
		discount = discount.Add(subtotal.Mul(surchargeRate))
	}
	return discount
}
