package catalog

import (
	"cmp"
	"slices"

	"feedsync/internal/models"
)

type pricedProduct struct {
	product models.Product
	price   float64
	ok      bool
}

// compareParsed orders by descending price. If b has no price, a goes first;
// otherwise if a has no price, b goes first. Two unpriced products therefore
// have no consistent order between them; the stable sort decides.
func compareParsed(a, b pricedProduct) int {
	switch {
	case !b.ok:
		return -1
	case !a.ok:
		return 1
	default:
		return cmp.Compare(b.price, a.price)
	}
}

// Compare applies the price ordering to two products.
func Compare(a, b models.Product) int {
	pa, okA := ParsePrice(a.Price)
	pb, okB := ParsePrice(b.Price)

	return compareParsed(pricedProduct{a, pa, okA}, pricedProduct{b, pb, okB})
}

// Sort orders products in place by descending price, parsing each price once.
func Sort(products []models.Product) {
	priced := make([]pricedProduct, len(products))
	for i, p := range products {
		value, ok := ParsePrice(p.Price)
		priced[i] = pricedProduct{product: p, price: value, ok: ok}
	}

	slices.SortStableFunc(priced, compareParsed)

	for i := range priced {
		products[i] = priced[i].product
	}
}
