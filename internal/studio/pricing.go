package studio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/puntadaestudio/puntada-backend/pkg/config"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
)

// priceTable holds the parsed surcharge amounts.
type priceTable struct {
	perText  decimal.Decimal
	perImage decimal.Decimal
	perArea  decimal.Decimal
}

func newPriceTable(cfg config.StudioConfig) (priceTable, error) {
	perText, err := decimal.NewFromString(cfg.TextSurcharge)
	if err != nil {
		return priceTable{}, fmt.Errorf("parsing text surcharge %q: %w", cfg.TextSurcharge, err)
	}
	perImage, err := decimal.NewFromString(cfg.ImageSurcharge)
	if err != nil {
		return priceTable{}, fmt.Errorf("parsing image surcharge %q: %w", cfg.ImageSurcharge, err)
	}
	perArea, err := decimal.NewFromString(cfg.DefaultAreaPrice)
	if err != nil {
		return priceTable{}, fmt.Errorf("parsing area price %q: %w", cfg.DefaultAreaPrice, err)
	}
	return priceTable{perText: perText, perImage: perImage, perArea: perArea}, nil
}

// Price computes base garment price plus one surcharge per decorated
// area plus a flat surcharge per text and per image element.
func (p priceTable) Price(draft *Draft) decimal.Decimal {
	total := draft.BasePrice

	areas := map[enums.PlacementArea]struct{}{}
	texts := 0
	images := 0
	for _, el := range draft.Elements {
		areas[el.Placement.Area] = struct{}{}
		switch el.Kind {
		case enums.ElementKindText:
			texts++
		case enums.ElementKindImage:
			images++
		}
	}

	total = total.Add(p.perArea.Mul(decimal.NewFromInt(int64(len(areas)))))
	total = total.Add(p.perText.Mul(decimal.NewFromInt(int64(texts))))
	total = total.Add(p.perImage.Mul(decimal.NewFromInt(int64(images))))
	return total
}
