package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order statuses.
const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusPaid      OrderStatus = "Paid"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Payment statuses recorded against an order.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Payment methods.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// Order represents a placed order. Items and the shipping address are
// snapshots taken at checkout.
type Order struct {
	ID                   string           `json:"id"`
	UserID               string           `json:"userId,omitempty"`
	Items                []OrderItem      `json:"items"`
	Total                decimal.Decimal  `json:"total"`
	ShippingAddress      *ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentMethod        string           `json:"paymentMethod,omitempty"`
	PaymentTransactionID string           `json:"paymentTransactionId,omitempty"`
	PaymentStatus        string           `json:"paymentStatus,omitempty"`
	Status               OrderStatus      `json:"status"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}

// OrderItem is a line item with the unit price charged at checkout.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingAddress is the delivery address copied onto an order.
type ShippingAddress struct {
	FullName string `json:"fullName" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"required,numeric,min=10,max=15"`
	Pincode  string `json:"pincode" validate:"required,numeric,len=6"`
	State    string `json:"state" validate:"required,max=100"`
	District string `json:"district,omitempty" validate:"max=100"`
	City     string `json:"city" validate:"required,max=100"`
	Address1 string `json:"address1" validate:"required,max=300"`
	Landmark string `json:"landmark,omitempty" validate:"max=200"`
}

// ShippingAddressFrom copies a saved address.
func ShippingAddressFrom(a *Address) *ShippingAddress {
	return &ShippingAddress{
		FullName: a.FullName,
		Phone:    a.Phone,
		Pincode:  a.Pincode,
		State:    a.State,
		District: a.District,
		City:     a.City,
		Address1: a.Address1,
		Landmark: a.Landmark,
	}
}

// OrderRequest represents the request payload for creating an order.
// Without items, the caller's cart is checked out. Either a shipping
// address or the id of a saved address is required.
type OrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"omitempty,dive"`
	ShippingAddress *ShippingAddress   `json:"shippingAddress" validate:"required_without=AddressID,omitempty"`
	AddressID       int64              `json:"addressId" validate:"omitempty,gt=0"`
	PaymentMethod   string             `json:"paymentMethod" validate:"required,oneof=cod online"`
	Total           *decimal.Decimal   `json:"total" validate:"omitempty,gte=0"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// UpdateOrderStatusRequest changes the fulfilment status.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=Pending Paid Shipped Delivered Cancelled"`
}

// RecordPaymentRequest records the outcome of a payment attempt.
type RecordPaymentRequest struct {
	TransactionID string `json:"transactionId" validate:"required,max=200"`
	Status        string `json:"status" validate:"required,oneof=pending paid failed"`
}
