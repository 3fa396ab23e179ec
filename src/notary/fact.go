package notary

import "strings"

const (
	// FamilyName ...
	FamilyName = "notary"

	// EventSaleAdded is the type of the event emitted for every recorded sale.
	EventSaleAdded = FamilyName + "/add"

	// AttributeSaleAdded is the key of the event attribute carrying the
	// wrapped fact.
	AttributeSaleAdded = "sale-added"
)

// Fact is one sale. All three fields are required.
type Fact struct {
	Buyer   string `codec:"buyer" json:"buyer"`
	Seller  string `codec:"seller" json:"seller"`
	HouseID string `codec:"house_id" json:"house_id"`
}

// NewFact ...
func NewFact(buyer, seller, houseID string) Fact {
	return Fact{
		Buyer:   buyer,
		Seller:  seller,
		HouseID: houseID,
	}
}

// Validate checks that no field is empty.
func (f Fact) Validate() error {
	switch {
	case f.Buyer == "":
		return NewPayloadErr("", "buyer is empty")
	case f.Seller == "":
		return NewPayloadErr("", "seller is empty")
	case f.HouseID == "":
		return NewPayloadErr("", "house id is empty")
	}
	return nil
}

// Wrap returns the form a fact takes in 1.0 state and in sale-added event
// attributes.
func (f Fact) Wrap() string {
	var b strings.Builder
	b.Grow(len(f.Buyer) + len(f.Seller) + len(f.HouseID) + 2)
	b.WriteString("{")
	b.WriteString(f.Buyer)
	b.WriteString(f.Seller)
	b.WriteString(f.HouseID)
	b.WriteString("}")
	return b.String()
}
