package sim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rustyeddy/tradereflex/ledger"
)

var (
	ErrInvalidOrder = errors.New("invalid order")

	// ErrNoPriceAvailable is also an ErrInvalidOrder.
	ErrNoPriceAvailable = fmt.Errorf("%w: no price available", ErrInvalidOrder)
)

var validate = validator.New()

// OrderRequest is a market order for whole shares.
type OrderRequest struct {
	User     string      `json:"user" validate:"required"`
	Symbol   string      `json:"symbol" validate:"required"`
	Side     ledger.Side `json:"side" validate:"required,oneof=buy sell"`
	Quantity int64       `json:"qty" validate:"gt=0"`
}

// Validate checks the shape of the request. It does not look at prices
// or sessions.
func (r OrderRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidOrder, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// ParseQuantity parses a whole positive share count. Fractions,
// exponents and signs other than a leading minus are rejected.
func ParseQuantity(s string) (int64, error) {
	q, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: quantity %q is not an integer", ErrInvalidOrder, s)
	}
	if q <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidOrder, q)
	}
	return q, nil
}

// Fill is the result of an executed order.
type Fill struct {
	Account ledger.Account `json:"account"`
	Trade   ledger.Trade   `json:"trade"`
}
