package booking

import "asap/models"

// EffectiveLabel is the display label for a booking. Cancellation always
// wins over the lifecycle status; the status itself is left untouched.
func EffectiveLabel(b models.Booking) string {
	if b.IsCancelled {
		return "Cancelled"
	}
	return string(b.Status)
}
