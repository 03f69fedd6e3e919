package domain

// Holding is a derived net position for one symbol: total quantity held
// and the cumulative cost of acquiring it. Holdings are materialized fresh
// on every computation and never persisted.
type Holding struct {
	Symbol    string `json:"symbol"`
	Quantity  int    `json:"quantity"`
	TotalCost Money  `json:"totalCost"`
	Market    Market `json:"market"`
}

// NewHolding creates an empty holding for a symbol.
func NewHolding(symbol string, market Market) Holding {
	return Holding{Symbol: NormalizeSymbol(symbol), Market: market}
}

// AveragePrice returns the weighted-average cost per unit
// (zero when nothing is held).
func (h Holding) AveragePrice() Money {
	if h.Quantity <= 0 {
		return ZeroMoney
	}
	return h.TotalCost.DivInt(h.Quantity)
}

// MarketValue returns average price × quantity.
func (h Holding) MarketValue() Money {
	return h.AveragePrice().MulInt(h.Quantity)
}

// AddBuy applies a buy execution to the position.
func (h *Holding) AddBuy(quantity int, price Money, market Market) {
	h.TotalCost = h.TotalCost.Add(price.MulInt(quantity))
	h.Quantity += quantity
	h.Market = market
}

// ProcessSell reduces the position by up to quantity units at the current
// average cost and returns the cost basis of the units sold. Sells beyond
// the held quantity are capped; no short positions. When the position
// empties, quantity and total cost reset to zero so rounding drift cannot
// leave a negative cost behind.
func (h *Holding) ProcessSell(quantity int) Money {
	if h.Quantity <= 0 {
		return ZeroMoney
	}

	sellQty := quantity
	if sellQty > h.Quantity {
		sellQty = h.Quantity
	}
	costBasis := h.AveragePrice().MulInt(sellQty)

	h.TotalCost = h.TotalCost.Sub(costBasis)
	h.Quantity -= sellQty

	if h.Quantity <= 0 {
		h.Quantity = 0
		h.TotalCost = ZeroMoney
	}

	return costBasis
}

// IsEmpty reports whether nothing is held.
func (h Holding) IsEmpty() bool { return h.Quantity <= 0 }
