// Package entity holds the records served by cakeapi.
package entity

import (
	"fmt"

	"github.com/donutnomad/gormskipper/lib/skipper"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

//go:generate go run github.com/donutnomad/gormskipper/newmodelgen -struct Cake

type Cake struct {
	ID      int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name    string          `gorm:"column:name;size:191;uniqueIndex" json:"name"`
	Flavor  string          `gorm:"column:flavor;size:64" json:"flavor"`
	Price   decimal.Decimal `gorm:"column:price;type:decimal(10,2)" json:"price"`
	BakedOn datatypes.Date  `gorm:"column:baked_on" json:"baked_on"`
}

var _ skipper.Resource[int64] = Cake{}

func (Cake) TableName() string {
	return "cakes"
}

func (c Cake) PrimaryKey() int64 {
	return c.ID
}

func (c Cake) Location() string {
	return fmt.Sprintf("/cakes/%d", c.ID)
}

// CakeQueryParams GET /cakes?name=...&flavor=...
type CakeQueryParams struct{}

func (CakeQueryParams) Column(param string) mo.Option[skipper.Column] {
	switch param {
	case "name":
		return mo.Some(CakeColumns.Name)
	case "flavor":
		return mo.Some(CakeColumns.Flavor)
	}
	return mo.None[skipper.Column]()
}
