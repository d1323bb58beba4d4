package domain

type BeerType string

const (
	BeerTypeLager    BeerType = "LAGER"
	BeerTypeMalzbier BeerType = "MALZBIER"
	BeerTypeWitbier  BeerType = "WITBIER"
	BeerTypeWeiss    BeerType = "WEISS"
	BeerTypeAle      BeerType = "ALE"
	BeerTypeIPA      BeerType = "IPA"
	BeerTypeStout    BeerType = "STOUT"
)

var beerTypes = []BeerType{
	BeerTypeLager,
	BeerTypeMalzbier,
	BeerTypeWitbier,
	BeerTypeWeiss,
	BeerTypeAle,
	BeerTypeIPA,
	BeerTypeStout,
}

func BeerTypes() []BeerType {
	out := make([]BeerType, len(beerTypes))
	copy(out, beerTypes)
	return out
}

func (t BeerType) Valid() bool {
	for _, bt := range beerTypes {
		if t == bt {
			return true
		}
	}
	return false
}

type Beer struct {
	ID       string
	Name     string
	Brand    string
	Max      int
	Quantity int
	Type     BeerType
	Version  int // optimistic locking
}

// Adjust returns a copy of b with delta applied to its quantity. Positive
// deltas restock, negative deltas consume. The result always satisfies
// 0 <= Quantity <= Max; any delta that would leave that range is rejected
// whole and b is returned unchanged.
func Adjust(b Beer, delta int) (Beer, error) {
	if delta > 0 && b.Max-b.Quantity < delta {
		return b, ExceedsCapacity(b.Max - b.Quantity)
	}
	if delta < 0 && b.Quantity+delta < 0 {
		return b, InsufficientStock(b.Quantity)
	}

	b.Quantity += delta
	return b, nil
}
