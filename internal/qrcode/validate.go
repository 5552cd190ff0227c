package qrcode

// Payload is a candidate record for creation or update.
type Payload struct {
	Title            string
	ProductID        string
	ProductHandle    string
	ProductVariantID string
	Destination      string
}

// Validate checks required-field presence on a payload. It returns nil when
// the payload is valid; callers rely on the nil-vs-non-nil distinction, so
// an empty non-nil map is never returned.
func Validate(p Payload) map[string]string {
	errors := make(map[string]string)

	if p.Title == "" {
		errors["title"] = "Title is required"
	}
	if p.ProductID == "" {
		errors["productId"] = "Product is required"
	}
	if p.Destination == "" {
		errors["destination"] = "Destination is required"
	}

	if len(errors) == 0 {
		return nil
	}
	return errors
}
