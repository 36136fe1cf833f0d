// Package supplier holds the wholesale price list the shop can reorder from.
// The list is static configuration, not tenant data.
package supplier

import (
	"github.com/shopspring/decimal"

	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
	"github.com/gupta-labs/khata-sahayak/internal/domain/match"
	"github.com/gupta-labs/khata-sahayak/internal/domain/units"
)

// Quote is one supplier's offer for a requested item.
type Quote struct {
	SupplierName string
	Phone        string
	ItemName     string
	PricePerUnit decimal.Decimal
	Unit         string
}

// PriceIndex answers cheapest-supplier queries over the static price list.
type PriceIndex struct {
	suppliers []entity.Supplier
	// primaryPhone wins price ties deterministically.
	primaryPhone string
}

func NewPriceIndex(suppliers []entity.Supplier, primaryPhone string) *PriceIndex {
	return &PriceIndex{suppliers: suppliers, primaryPhone: primaryPhone}
}

// Cheapest returns the lowest quote for an item, or nil when no supplier
// carries it. A supplier line counts only when its name scores at least the
// identity threshold and its unit equals the requested unit exactly; prices
// in different units are never compared.
func (p *PriceIndex) Cheapest(itemName, unit string) *Quote {
	wantUnit := units.Normalize(unit)
	var best *Quote
	for _, sup := range p.suppliers {
		for _, it := range sup.Items {
			if match.Score(itemName, it.ItemName) < match.IdentityThreshold {
				continue
			}
			if units.Normalize(it.Unit) != wantUnit {
				continue
			}
			if best == nil ||
				it.PricePerUnit.LessThan(best.PricePerUnit) ||
				(it.PricePerUnit.Equal(best.PricePerUnit) && sup.Phone == p.primaryPhone) {
				best = &Quote{
					SupplierName: sup.Name,
					Phone:        sup.Phone,
					ItemName:     it.ItemName,
					PricePerUnit: it.PricePerUnit,
					Unit:         units.Normalize(it.Unit),
				}
			}
		}
	}
	return best
}

// QuoteFrom returns a named supplier's own quote for an item, used when the
// supplier was already chosen and only the price is needed.
func (p *PriceIndex) QuoteFrom(supplierName, itemName, unit string) *Quote {
	sup := p.FindSupplier(supplierName)
	if sup == nil {
		return nil
	}
	wantUnit := units.Normalize(unit)
	for _, it := range sup.Items {
		if match.Score(itemName, it.ItemName) >= match.IdentityThreshold && units.Normalize(it.Unit) == wantUnit {
			return &Quote{
				SupplierName: sup.Name,
				Phone:        sup.Phone,
				ItemName:     it.ItemName,
				PricePerUnit: it.PricePerUnit,
				Unit:         wantUnit,
			}
		}
	}
	return nil
}

// FindSupplier resolves a free-text supplier name to its catalog entry.
// The highest-scoring name wins; similar names like "Supplier A" and
// "Supplier B" both clear the threshold against each other.
func (p *PriceIndex) FindSupplier(name string) *entity.Supplier {
	var best *entity.Supplier
	bestScore := match.IdentityThreshold - 1
	for i := range p.suppliers {
		if s := match.Plain(name, p.suppliers[i].Name); s > bestScore {
			best = &p.suppliers[i]
			bestScore = s
		}
	}
	return best
}

// DefaultSuppliers is the wholesale price list for the pilot market.
// Prices are per kg in rupees.
func DefaultSuppliers() []entity.Supplier {
	price := func(v string) decimal.Decimal { return decimal.RequireFromString(v) }
	kg := func(name, v string) entity.SupplierItem {
		return entity.SupplierItem{ItemName: name, Unit: "kg", PricePerUnit: price(v)}
	}
	return []entity.Supplier{
		{
			Name:  "Supplier A",
			Phone: "+919971129359",
			Items: []entity.SupplierItem{
				kg("चावल", "45"), kg("आटा", "30"), kg("सूजी", "40"),
				kg("राजमा", "120"), kg("मूंग दाल", "90"), kg("उड़द दाल", "100"),
			},
		},
		{
			Name:  "Supplier B",
			Phone: "+919988776655",
			Items: []entity.SupplierItem{
				kg("चावल", "47"), kg("आटा", "28"), kg("सूजी", "42"),
				kg("राजमा", "118"), kg("मूंग दाल", "92"), kg("उड़द दाल", "98"),
			},
		},
		{
			Name:  "Supplier C",
			Phone: "+917788990011",
			Items: []entity.SupplierItem{
				kg("चावल", "46"), kg("आटा", "31"), kg("सूजी", "39"),
				kg("राजमा", "125"), kg("मूंग दाल", "88"), kg("उड़द दाल", "105"),
			},
		},
	}
}
