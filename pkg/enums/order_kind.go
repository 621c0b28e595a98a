package enums

import "fmt"

// OrderKind distinguishes customer sales from internal stock orders.
type OrderKind string

const (
	OrderKindSale     OrderKind = "sale"
	OrderKindInternal OrderKind = "internal"
)

var validOrderKinds = []OrderKind{OrderKindSale, OrderKindInternal}

func (k OrderKind) IsValid() bool {
	for _, candidate := range validOrderKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseOrderKind converts raw strings into OrderKind.
func ParseOrderKind(value string) (OrderKind, error) {
	for _, candidate := range validOrderKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order kind %q", value)
}
