package handlers

// HandlerBundle groups the handlers wired in main for route registration.
type HandlerBundle struct {
	Checkout *CheckoutHandler
	Operator *OperatorHandler
}
