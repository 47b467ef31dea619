package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopline/backend/internal/domain/shared"
)

// DiscountType represents how a discount value is applied to the base price
type DiscountType string

const (
	DiscountTypePercent DiscountType = "PERCENT"
	DiscountTypeFixed   DiscountType = "FIXED"
)

// IsValid returns true if the discount type is valid
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercent || t == DiscountTypeFixed
}

// Discount represents an optional time-windowed price reduction on a product.
// StartAt/EndAt are open-ended: a nil bound means the window extends infinitely
// in that direction.
type Discount struct {
	Enabled bool            `gorm:"not null;default:false"`
	Type    DiscountType    `gorm:"type:varchar(10)"`
	Value   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	StartAt *time.Time
	EndAt   *time.Time
}

// ActiveAt returns true if the discount applies at the given instant
func (d Discount) ActiveAt(now time.Time) bool {
	if !d.Enabled || !d.Type.IsValid() {
		return false
	}
	if d.StartAt != nil && now.Before(*d.StartAt) {
		return false
	}
	if d.EndAt != nil && now.After(*d.EndAt) {
		return false
	}
	return true
}

// Product represents a sellable catalog item. It is the aggregate root for
// catalog operations; stock lives on its variants (size x color combinations).
type Product struct {
	shared.BaseAggregateRoot
	SKU        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name       string          `gorm:"type:varchar(200);not null"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount   Discount        `gorm:"embedded;embeddedPrefix:discount_"`
	SalesCount int64           `gorm:"not null;default:0"`

	Variants []Variant `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(sku, name string, price decimal.Decimal) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(sku),
		Name:              name,
		Price:             price.Round(2),
		Variants:          make([]Variant, 0),
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// EffectivePrice returns the price after an active discount, floored at zero
// and rounded to two decimals.
func (p *Product) EffectivePrice(now time.Time) decimal.Decimal {
	if !p.Discount.ActiveAt(now) {
		return p.Price.Round(2)
	}

	var price decimal.Decimal
	switch p.Discount.Type {
	case DiscountTypePercent:
		price = p.Price.Sub(p.Discount.Value.Mul(p.Price).Div(decimal.NewFromInt(100)))
	case DiscountTypeFixed:
		price = p.Price.Sub(p.Discount.Value)
	default:
		price = p.Price
	}

	if price.IsNegative() {
		price = decimal.Zero
	}
	return price.Round(2)
}

// SetPrice updates the base price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	old := p.Price
	p.Price = price.Round(2)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	if !old.Equal(p.Price) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, old, p.Price))
	}

	return nil
}

// SetDiscount replaces the discount configuration
func (p *Product) SetDiscount(d Discount) error {
	if d.Enabled {
		if !d.Type.IsValid() {
			return shared.NewDomainError("INVALID_DISCOUNT", "Unknown discount type")
		}
		if d.Value.IsNegative() {
			return shared.NewDomainError("INVALID_DISCOUNT", "Discount value cannot be negative")
		}
		if d.StartAt != nil && d.EndAt != nil && d.EndAt.Before(*d.StartAt) {
			return shared.NewDomainError("INVALID_DISCOUNT", "Discount window ends before it starts")
		}
	}

	p.Discount = d
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// AddVariant adds a new size x color variant. The (size, color) pair must be
// unique within the product.
func (p *Product) AddVariant(sizeID, colorID uuid.UUID, sizeLabel, colorName string, stock int) (*Variant, error) {
	if sizeID == uuid.Nil || colorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Size and color are required")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if p.FindVariant(sizeID, colorID) != nil {
		return nil, shared.NewDomainError("DUPLICATE_VARIANT", "Variant already exists for this size and color")
	}

	variant := NewVariant(p.ID, sizeID, colorID, sizeLabel, colorName, stock)
	p.Variants = append(p.Variants, *variant)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return variant, nil
}

// FindVariant returns the variant matching the size and color, or nil
func (p *Product) FindVariant(sizeID, colorID uuid.UUID) *Variant {
	for idx := range p.Variants {
		if p.Variants[idx].SizeID == sizeID && p.Variants[idx].ColorID == colorID {
			return &p.Variants[idx]
		}
	}
	return nil
}

// RemoveVariant removes a variant by size and color
func (p *Product) RemoveVariant(sizeID, colorID uuid.UUID) error {
	for idx := range p.Variants {
		if p.Variants[idx].SizeID == sizeID && p.Variants[idx].ColorID == colorID {
			p.Variants = append(p.Variants[:idx], p.Variants[idx+1:]...)
			p.UpdatedAt = time.Now()
			p.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RecordSales adds sold quantity to the bestseller counter
func (p *Product) RecordSales(quantity int) {
	if quantity <= 0 {
		return
	}
	p.SalesCount += int64(quantity)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// TotalStock returns the stock summed across all variants
func (p *Product) TotalStock() int {
	total := 0
	for idx := range p.Variants {
		total += p.Variants[idx].Stock
	}
	return total
}

// Variant represents a purchasable size x color combination of a product,
// carrying its own stock count. It is stored in its own table so that a single
// row is the unit of atomic stock updates.
type Variant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_variant_product_size_color,priority:1"`
	SizeID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_variant_product_size_color,priority:2"`
	ColorID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_variant_product_size_color,priority:3"`
	SizeLabel string    `gorm:"type:varchar(50)"`
	ColorName string    `gorm:"type:varchar(50)"`
	Stock     int       `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Variant) TableName() string {
	return "product_variants"
}

// NewVariant creates a new variant
func NewVariant(productID, sizeID, colorID uuid.UUID, sizeLabel, colorName string, stock int) *Variant {
	now := time.Now()
	return &Variant{
		ID:        uuid.New(),
		ProductID: productID,
		SizeID:    sizeID,
		ColorID:   colorID,
		SizeLabel: sizeLabel,
		ColorName: colorName,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Key returns the variant uniqueness key within its product
func (v *Variant) Key() string {
	return VariantKey(v.SizeID, v.ColorID)
}

// VariantKey builds the uniqueness key for a size x color pair
func VariantKey(sizeID, colorID uuid.UUID) string {
	return sizeID.String() + ":" + colorID.String()
}
