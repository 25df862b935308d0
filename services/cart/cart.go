package cart

import "asap/models"

// Finalize prices a cart snapshot into a booking draft. Line amounts and the
// draft total are recomputed at finalization time so no stale amount survives.
func Finalize(snap models.CartSnapshot, contact models.ContactInfo, address models.Address, preferredTime string, method models.PaymentMethod) models.BookingDraft {
	lines := make([]models.CartLine, 0, len(snap.Lines))
	var total float64
	for _, line := range snap.Lines {
		line.LineAmount = line.UnitPrice * float64(line.Quantity)
		total += line.LineAmount
		lines = append(lines, line)
	}
	return models.BookingDraft{
		Contact:       contact,
		Address:       address,
		PreferredTime: preferredTime,
		PaymentMethod: method,
		Lines:         lines,
		TotalAmount:   total,
	}
}
