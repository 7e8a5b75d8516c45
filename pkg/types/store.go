package types

// StoreResolution is the wire shape of the host to store id lookup.
type StoreResolution struct {
	Success bool   `json:"success"`
	StoreID *int64 `json:"storeId,omitempty"`
	Message string `json:"message,omitempty"`
}
