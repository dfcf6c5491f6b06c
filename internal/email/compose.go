package email

import "fmt"

type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// OrderConfirmation builds the message queued when checkout commits.
func OrderConfirmation(recipient, customerName, orderNumber string, totalAmount int64) Message {
	return Message{
		Recipient: recipient,
		Subject:   fmt.Sprintf("Order %s confirmed", orderNumber),
		Body: fmt.Sprintf(
			"Hi %s,\n\nThank you for your order! Your order %s totalling %d has been received and is being processed.\n\nShuttle Store",
			customerName, orderNumber, totalAmount),
	}
}

// OrderStatusUpdate builds the message queued on a status transition.
func OrderStatusUpdate(recipient, customerName, orderNumber, status string) Message {
	return Message{
		Recipient: recipient,
		Subject:   fmt.Sprintf("Order %s update", orderNumber),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour order %s is now %s.\n\nShuttle Store",
			customerName, orderNumber, status),
	}
}
