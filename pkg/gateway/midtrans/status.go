package midtrans

import "pos-billing-be/internal/entity"

// MapTransactionStatus translates a gateway transaction status into the
// local payment status. The second return value is false when the gateway
// status carries no terminal meaning (pending, unknown) and the payment
// should be left untouched.
func MapTransactionStatus(transactionStatus, fraudStatus string) (entity.PaymentStatus, bool) {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return entity.PaymentStatusCompleted, true
		}
		return "", false
	case "settlement":
		if fraudStatus == "" || fraudStatus == "accept" {
			return entity.PaymentStatusCompleted, true
		}
		return entity.PaymentStatusFailed, true
	case "deny", "cancel", "expire":
		return entity.PaymentStatusFailed, true
	case "refund", "partial_refund":
		return entity.PaymentStatusRefunded, true
	default:
		return "", false
	}
}
