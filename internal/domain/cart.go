package domain

// LineItem is one row in the cart: a product/size combination with the
// display data snapshotted at the time it was added. The snapshot is not
// refreshed if the catalog entry changes later.
type LineItem struct {
	CartID    string  `json:"cartId"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Image     string  `json:"image"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
}

// Cart is the ordered list of line items, insertion order preserved.
type Cart []LineItem

// Subtotal sums unit price times quantity over all line items.
func (c Cart) Subtotal() float64 {
	var sum float64
	for _, item := range c {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	return sum
}

// ItemCount sums quantities over all line items (drives the cart badge).
func (c Cart) ItemCount() int {
	var count int
	for _, item := range c {
		count += item.Quantity
	}
	return count
}
