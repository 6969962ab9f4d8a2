package store

import (
	"errors"
	"fmt"
	"time"
)

// Entity is the identity every stored record carries.
type Entity struct {
	ID int64 `json:"id"`
}

func NewEntity(id int64) *Entity {
	return &Entity{ID: id}
}

// Describe returns a one-line description of the record.
func (e *Entity) Describe() string {
	return fmt.Sprintf("entity %d", e.ID)
}

// Timestamps records when a record was created and last changed.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch marks the record as changed at the given time.
func (t *Timestamps) Touch(at time.Time, reasons ...string) {
	t.UpdatedAt = at
}

// Product is an item available for sale. Prices are in cents.
type Product struct {
	Entity
	Timestamps

	SKU        string `json:"sku"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Inventory  int    `json:"inventory_count"`
}

func NewProduct(id int64, sku, name string) *Product {
	return &Product{Entity: Entity{ID: id}, SKU: sku, Name: name}
}

func (p *Product) Describe() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.SKU)
}

// Reprice changes the price and touches the record.
func (p *Product) Reprice(cents int64, at time.Time) {
	p.PriceCents = cents
	p.Touch(at, "reprice")
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusShipped OrderStatus = "shipped"
)

// Order is a transaction placed by a customer.
type Order struct {
	Entity
	Timestamps

	CustomerID int64       `json:"customer_id"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
}

func NewOrder(id, customerID int64, items ...OrderItem) *Order {
	return &Order{
		Entity:     Entity{ID: id},
		CustomerID: customerID,
		Status:     OrderStatusPending,
		Items:      items,
	}
}

// Total returns the order total in cents.
func (o *Order) Total() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.UnitPrice * int64(it.Quantity)
	}

	return total
}

// Pay moves a pending order to paid.
func (o *Order) Pay(at time.Time) error {
	if o.Status != OrderStatusPending {
		return errors.New("order is not pending")
	}

	o.Status = OrderStatusPaid
	o.Touch(at)

	return nil
}

// OrderItem is one product line of an order, priced at purchase time.
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

type ledger struct {
	entries []int64
}
