package bundle

import "net/http"

// Rejection codes returned to the client.
const (
	CodeInvalidPayload   = "invalid_payload"
	CodeMissingBox       = "missing_box"
	CodeMissingProduct   = "missing_product"
	CodeInvalidProduct   = "invalid_product"
	CodeInvalidVariation = "invalid_variation"
	CodeUnpurchasable    = "unpurchasable"
	CodeNotEnoughStock   = "not_enough_stock"
	CodeMinItems         = "min_items"
	CodeMinTotal         = "min_total"
	CodeAddFailed        = "add_failed"
	CodeNoCart           = "no_cart"
)

// Error is a rejected submission. Validation errors carry 4xx statuses;
// infrastructure errors carry 5xx and guarantee the cart was left untouched
// or rolled back.
type Error struct {
	Code    string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func reject(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

func invalidPayload() *Error {
	return reject(CodeInvalidPayload, "Invalid request payload.", http.StatusBadRequest)
}

func missingBox() *Error {
	return reject(CodeMissingBox, "Please choose a box before continuing.", http.StatusBadRequest)
}

func missingProduct() *Error {
	return reject(CodeMissingProduct, "One of the products is missing.", http.StatusBadRequest)
}

func invalidProduct() *Error {
	return reject(CodeInvalidProduct, "One of the products could not be found.", http.StatusNotFound)
}

func invalidVariation() *Error {
	return reject(CodeInvalidVariation, "Selected product variation is unavailable.", http.StatusBadRequest)
}

func unpurchasable() *Error {
	return reject(CodeUnpurchasable, "One of the selected items is out of stock.", http.StatusBadRequest)
}

func notEnoughStock() *Error {
	return reject(CodeNotEnoughStock, "Not enough stock for one of the selected products.", http.StatusBadRequest)
}

func addFailed() *Error {
	return reject(CodeAddFailed, "Unable to add one of the selected items to the cart.", http.StatusInternalServerError)
}

func noCart() *Error {
	return reject(CodeNoCart, "The cart is not available.", http.StatusInternalServerError)
}
