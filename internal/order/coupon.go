// AngelaMos | 2026
// coupon.go

package order

import (
	"strings"
)

// coupons maps a code to its percentage off the subtotal.
var coupons = map[string]int64{
	"DULCE10":    10,
	"PASTEL5":    5,
	"BIENVENIDO": 15,
}

// lookupCoupon normalizes code and returns it with its discount. An empty
// code is valid and worth nothing.
func lookupCoupon(code string) (string, int64, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", 0, true
	}
	pct, ok := coupons[code]
	return code, pct, ok
}
