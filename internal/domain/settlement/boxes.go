// Package settlement finalizes paid orders: stock decrement and the
// fixed-percentage revenue allocation "boxes" for bookkeeping.
package settlement

import "github.com/nutallis/storefront/internal/domain/money"

// BoxKey identifies a revenue allocation bucket.
type BoxKey string

const (
	BoxRestock   BoxKey = "restock"
	BoxMarketing BoxKey = "marketing"
	BoxExpansion BoxKey = "expansion"
	BoxInputs    BoxKey = "inputs"
	BoxReserve   BoxKey = "reserve"
)

// FinanceBox is one allocation bucket of an order's net payment value.
type FinanceBox struct {
	Key         BoxKey
	Label       string
	PercentBps  int64
	AmountCents money.Cents
}

// boxDefs are the five fixed allocation percentages, in basis points.
// They sum to 10000 (100%).
var boxDefs = []FinanceBox{
	{Key: BoxRestock, Label: "Reposicao de Estoque", PercentBps: 5300},
	{Key: BoxMarketing, Label: "Marketing/Ads", PercentBps: 1500},
	{Key: BoxExpansion, Label: "Escala/Expansao", PercentBps: 1700},
	{Key: BoxInputs, Label: "Insumos", PercentBps: 500},
	{Key: BoxReserve, Label: "Reserva/MEI", PercentBps: 1000},
}

// SplitBoxes allocates a net payment value across the five boxes. Each
// amount is rounded half up independently; the split is deterministic for
// a given input.
func SplitBoxes(netValueCents money.Cents) []FinanceBox {
	boxes := make([]FinanceBox, len(boxDefs))
	for i, def := range boxDefs {
		def.AmountCents = money.Cents(money.RoundDiv(int64(netValueCents)*def.PercentBps, 10_000))
		boxes[i] = def
	}
	return boxes
}
