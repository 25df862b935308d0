package models

// CartLine is one priced service entry in a customer's cart.
// LineAmount is always derived from UnitPrice and Quantity, never stored stale.
type CartLine struct {
	ServiceID  string  `json:"serviceId"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
	LineAmount float64 `json:"lineAmount"`
}

func (l *CartLine) recompute() {
	l.LineAmount = l.UnitPrice * float64(l.Quantity)
}

// CartSnapshot is an ordered collection of cart lines produced by browsing
// and consumed by checkout.
type CartSnapshot struct {
	Lines []CartLine `json:"lines"`
}

// Add appends a line for the service or bumps its quantity if already present.
func (c *CartSnapshot) Add(serviceID, name string, unitPrice float64) {
	for i := range c.Lines {
		if c.Lines[i].ServiceID == serviceID {
			c.Lines[i].Quantity++
			c.Lines[i].recompute()
			return
		}
	}
	line := CartLine{ServiceID: serviceID, Name: name, UnitPrice: unitPrice, Quantity: 1}
	line.recompute()
	c.Lines = append(c.Lines, line)
}

// Increment bumps the quantity of the given service line.
func (c *CartSnapshot) Increment(serviceID string) {
	for i := range c.Lines {
		if c.Lines[i].ServiceID == serviceID {
			c.Lines[i].Quantity++
			c.Lines[i].recompute()
			return
		}
	}
}

// Decrement lowers the quantity of the given service line, removing the line
// when it reaches zero.
func (c *CartSnapshot) Decrement(serviceID string) {
	for i := range c.Lines {
		if c.Lines[i].ServiceID != serviceID {
			continue
		}
		c.Lines[i].Quantity--
		if c.Lines[i].Quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
		c.Lines[i].recompute()
		return
	}
}

// Total returns the sum of all line amounts.
func (c *CartSnapshot) Total() float64 {
	var total float64
	for i := range c.Lines {
		c.Lines[i].recompute()
		total += c.Lines[i].LineAmount
	}
	return total
}
