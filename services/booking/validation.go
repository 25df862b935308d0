package booking

import (
	"regexp"

	"asap/models"
)

var (
	phonePattern = regexp.MustCompile(`^[0-9]{7,15}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidateDraft returns the list of missing or malformed mandatory fields.
// An empty result means the draft may be submitted.
func ValidateDraft(draft models.BookingDraft) []string {
	var missing []string

	if draft.Contact.Name == "" {
		missing = append(missing, "name")
	}
	if !phonePattern.MatchString(draft.Contact.Phone) {
		missing = append(missing, "phone")
	}
	if !emailPattern.MatchString(draft.Contact.Email) {
		missing = append(missing, "email")
	}
	if draft.Address.FlatBuilding == "" {
		missing = append(missing, "flatBuilding")
	}
	if draft.Address.Landmark == "" {
		missing = append(missing, "landmark")
	}
	if draft.Address.Street == "" {
		missing = append(missing, "street")
	}
	if draft.Address.City == "" {
		missing = append(missing, "city")
	}
	if draft.Address.PostalCode == "" {
		missing = append(missing, "postalCode")
	}
	if draft.PreferredTime == "" {
		missing = append(missing, "preferredTime")
	}
	switch draft.PaymentMethod {
	case models.MethodCashOnDelivery, models.MethodUPI, models.MethodCard:
	default:
		missing = append(missing, "paymentMethod")
	}
	if len(draft.Lines) == 0 {
		missing = append(missing, "lines")
	}
	return missing
}
