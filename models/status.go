package models

import "strings"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusCooking   OrderStatus = "COOKING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusServed    OrderStatus = "SERVED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// OrderProgression is the forward path of an order; CANCELLED sits outside it.
var OrderProgression = []OrderStatus{
	OrderStatusPending,
	OrderStatusAccepted,
	OrderStatusCooking,
	OrderStatusReady,
	OrderStatusServed,
}

type KitchenStatus string

const (
	KitchenStatusNew        KitchenStatus = "NEW"
	KitchenStatusProcessing KitchenStatus = "PROCESSING"
	KitchenStatusCooking    KitchenStatus = "COOKING"
	KitchenStatusReady      KitchenStatus = "READY"
	KitchenStatusServed     KitchenStatus = "SERVED"
	KitchenStatusCancelled  KitchenStatus = "CANCELLED"
)

var KitchenProgression = []KitchenStatus{
	KitchenStatusNew,
	KitchenStatusProcessing,
	KitchenStatusCooking,
	KitchenStatusReady,
	KitchenStatusServed,
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

type PaymentRecordStatus string

const (
	PaymentRecordSuccess PaymentRecordStatus = "SUCCESS"
	PaymentRecordFailed  PaymentRecordStatus = "FAILED"
)

type PaymentGateway string

const (
	GatewayRazorpay PaymentGateway = "RAZORPAY"
	GatewayUPI      PaymentGateway = "UPI"
	GatewayCash     PaymentGateway = "CASH"
)

// TransactionPrefix is the prefix of synthesized transaction ids.
func (g PaymentGateway) TransactionPrefix() string {
	return strings.ToLower(string(g))
}

func (g PaymentGateway) Valid() bool {
	switch g {
	case GatewayRazorpay, GatewayUPI, GatewayCash:
		return true
	}
	return false
}

type OrderType string

const (
	OrderTypeDineIn      OrderType = "DINE_IN"
	OrderTypeRoomService OrderType = "ROOM_SERVICE"
	OrderTypeTakeaway    OrderType = "TAKEAWAY"
)

func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	for _, p := range OrderProgression {
		if p == s {
			return true
		}
	}
	return false
}

func (s KitchenStatus) Valid() bool {
	if s == KitchenStatusCancelled {
		return true
	}
	for _, p := range KitchenProgression {
		if p == s {
			return true
		}
	}
	return false
}

// KitchenStatusFor maps an order status onto the kitchen ticket status it implies.
func KitchenStatusFor(s OrderStatus) (KitchenStatus, bool) {
	switch s {
	case OrderStatusPending:
		return KitchenStatusNew, true
	case OrderStatusAccepted:
		return KitchenStatusProcessing, true
	case OrderStatusCooking:
		return KitchenStatusCooking, true
	case OrderStatusReady:
		return KitchenStatusReady, true
	case OrderStatusServed:
		return KitchenStatusServed, true
	case OrderStatusCancelled:
		return KitchenStatusCancelled, true
	}
	return "", false
}

// OrderStatusFor is the inverse of KitchenStatusFor. NEW has no order status:
// a fresh ticket never re-drives an order that is already PENDING.
func OrderStatusFor(s KitchenStatus) (OrderStatus, bool) {
	switch s {
	case KitchenStatusProcessing:
		return OrderStatusAccepted, true
	case KitchenStatusCooking:
		return OrderStatusCooking, true
	case KitchenStatusReady:
		return OrderStatusReady, true
	case KitchenStatusServed:
		return OrderStatusServed, true
	case KitchenStatusCancelled:
		return OrderStatusCancelled, true
	}
	return "", false
}
