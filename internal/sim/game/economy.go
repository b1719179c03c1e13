package game

import "context"

// RevenueState tracks the two buckets every payment is split into plus the
// vending pipeline counters. All totals are monotonic except FeeAccrued and
// VendBudget, which shrink on withdrawal/spend.
type RevenueState struct {
	FeeAccrued     uint64
	VendBudget     uint64
	TotalRouted    uint64
	TotalWithdrawn uint64

	TotalVendOrders uint64
	// PendingVend counts vend orders whose prize has not been admitted to the
	// vault yet. Deliveries can bypass the engine, so this counter is repaired
	// manually when it drifts (SET_PENDING_VEND).
	PendingVend uint64

	TotalAwarded uint64
}

// Replenishment stop reasons, reported for diagnostics.
const (
	StopVaultFull      = "vault_full"
	StopFundsExhausted = "funds_exhausted"
	StopVendorError    = "vendor_error"
)

// splitRevenue computes the fee/funding split. Funding is a subtraction, not
// a second multiplication, so fee+funding == total always holds exactly. The
// fee multiply is decomposed around the bps divisor so it cannot overflow for
// any uint64 total (feeRateBps is validated <= 10000).
func splitRevenue(total, feeRateBps uint64) (fee, funding uint64) {
	fee = total/10000*feeRateBps + total%10000*feeRateBps/10000
	funding = total - fee
	return fee, funding
}

type replenishPass struct {
	Orders     []string // vend order ids, in issue order
	Spent      uint64
	StopReason string
}

// routeRevenue splits a payment, accrues the fee, moves funding into the
// vending budget and runs one replenishment pass.
func (g *Game) routeRevenue(ctx context.Context, total uint64) (fee, funding uint64, pass replenishPass) {
	fee, funding = splitRevenue(total, g.cfg.Tuning.Revenue.FeeRateBps)
	g.revenue.FeeAccrued += fee
	g.revenue.VendBudget += funding
	g.revenue.TotalRouted += total
	pass = g.replenish(ctx)
	return fee, funding, pass
}

// replenish issues vend orders while the vault (counting orders already in
// flight) is below capacity and the budget clears both the threshold and one
// unit cost. One large payment can fund several orders in a single pass.
func (g *Game) replenish(ctx context.Context) replenishPass {
	var pass replenishPass
	unit := g.cfg.Tuning.Vending.UnitCost
	threshold := g.cfg.Tuning.Vending.Threshold

	for {
		inFlight := g.vault.Len() + int(g.revenue.PendingVend)
		if inFlight >= g.vault.Capacity() {
			pass.StopReason = StopVaultFull
			return pass
		}
		if g.revenue.VendBudget < threshold || g.revenue.VendBudget < unit {
			pass.StopReason = StopFundsExhausted
			return pass
		}
		if g.cfg.Vendor == nil {
			pass.StopReason = StopVendorError
			return pass
		}
		orderID, err := g.cfg.Vendor.Purchase(ctx, 1, g.cfg.VaultAccount)
		if err != nil {
			// Unspent budget stays for the next pass; the player-facing
			// operation that triggered this pass is already complete.
			g.logger.Printf("vend order failed: %v", err)
			pass.StopReason = StopVendorError
			return pass
		}
		g.revenue.VendBudget -= unit
		g.revenue.TotalVendOrders++
		g.revenue.PendingVend++
		pass.Orders = append(pass.Orders, orderID)
		pass.Spent += unit
	}
}
