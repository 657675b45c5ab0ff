package models

import "github.com/shopspring/decimal"

// Product — товар каталога. В рамках заказов доступен только на чтение.
type Product struct {
	ID            int64
	Name          string
	Price         decimal.Decimal
	DiscountPrice decimal.NullDecimal
	Images        []string
}

// EffectivePrice возвращает цену со скидкой, если она задана, иначе обычную цену
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

// Snapshot копирует текущее состояние товара для сохранения в позиции заказа
func (p *Product) Snapshot() ProductSnapshot {
	snap := ProductSnapshot{
		ID:     p.ID,
		Name:   p.Name,
		Images: append([]string(nil), p.Images...),
		Price:  p.Price,
	}
	if p.DiscountPrice.Valid {
		d := p.DiscountPrice.Decimal
		snap.DiscountPrice = &d
	}
	return snap
}
