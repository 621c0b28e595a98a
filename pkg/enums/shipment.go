package enums

// DispatchState tracks the business side of a handoff.
type DispatchState string

const (
	DispatchStateSent DispatchState = "sent"
)

func (d DispatchState) IsValid() bool {
	return d == DispatchStateSent
}

// ReceiptState tracks the worker side of a handoff.
type ReceiptState string

const (
	ReceiptStatePending  ReceiptState = "pending"
	ReceiptStateReceived ReceiptState = "received"
)

func (r ReceiptState) IsValid() bool {
	return r == ReceiptStatePending || r == ReceiptStateReceived
}
