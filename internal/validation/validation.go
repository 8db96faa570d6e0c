// Package validation checks form input before anything is sent upstream.
//
// Rules live on the form structs as validator tags; the user-facing text for
// a failed rule lives in the messages table, keyed by "<field>.<tag>".
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type CheckoutForm struct {
	ShippingAddress string `json:"shipping_address" validate:"min=5,max=200"`
}

type CartItemForm struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

type OrderDraftItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=1"`
}

// OrderDraft is the line list of a new order being priced.
type OrderDraft struct {
	Items []OrderDraftItem `json:"items" validate:"min=1,dive"`
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterForm struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

var messages = map[string]string{
	"shipping_address.min": "Address is too short",
	"shipping_address.max": "Address is too long",
	"product_id.required":  "Product is required",
	"quantity.min":         "Quantity must be at least 1",
	"items.min":            "At least one item is required",
	"email.required":       "Invalid email address",
	"email.email":          "Invalid email address",
	"password.required":    "Password is required",
	"first_name.max":       "First name is too long",
	"last_name.max":        "Last name is too long",
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate returns one FieldError per failed rule, in struct field order.
// Nested fields are keyed like "items.0.quantity".
func Validate(form any) []FieldError {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return out
}

// FieldErrors keeps the first message per field.
func FieldErrors(errs []FieldError) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

func message(field, tag, param string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// fieldPath turns "OrderDraft.items[0].quantity" into "items.0.quantity".
func fieldPath(namespace string) string {
	_, path, found := strings.Cut(namespace, ".")
	if !found {
		path = namespace
	}
	path = strings.ReplaceAll(path, "[", ".")
	return strings.ReplaceAll(path, "]", "")
}
