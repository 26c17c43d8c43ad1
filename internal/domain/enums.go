package domain

// OrderStatus represents the customer-facing fulfillment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return newStatus == OrderStatusProcessing ||
			newStatus == OrderStatusCancelled
	case OrderStatusProcessing:
		return newStatus == OrderStatusShipped ||
			newStatus == OrderStatusCancelled
	case OrderStatusShipped:
		return newStatus == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}

// OrderStage is an admin-controlled workflow label, independent of status
type OrderStage string

const (
	OrderStageNew          OrderStage = "new"
	OrderStageConfirmed    OrderStage = "confirmed"
	OrderStageInProduction OrderStage = "in_production"
	OrderStageQualityCheck OrderStage = "quality_check"
	OrderStagePacked       OrderStage = "packed"
	OrderStageShipped      OrderStage = "shipped"
	OrderStageDelivered    OrderStage = "delivered"
	OrderStageOnHold       OrderStage = "on_hold"
)

// OrderStages lists every stage in workflow order
var OrderStages = []OrderStage{
	OrderStageNew,
	OrderStageConfirmed,
	OrderStageInProduction,
	OrderStageQualityCheck,
	OrderStagePacked,
	OrderStageShipped,
	OrderStageDelivered,
	OrderStageOnHold,
}

// IsValid checks if the stage is one of the known stages
func (s OrderStage) IsValid() bool {
	for _, stage := range OrderStages {
		if s == stage {
			return true
		}
	}
	return false
}

// ShippingMethod is the delivery option chosen at checkout
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

func (m ShippingMethod) IsValid() bool {
	return m == ShippingStandard || m == ShippingExpress
}

// PaymentMethod is the payment option chosen at checkout
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentCard           PaymentMethod = "card"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentCashOnDelivery || m == PaymentCard
}
