package command

// CreateDevice registers a new device model in the pool. Count defaults
// to 1 when omitted. ID is optional; callers providing one must ensure
// uniqueness and get ErrDeviceExists otherwise.
type CreateDevice struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       *int   `json:"count,omitempty"`
}

// UpdateDevice patches the named fields of an existing device.
// Nil fields are left unchanged.
type UpdateDevice struct {
	ID          string  `json:"-"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Count       *int    `json:"count,omitempty"`
}

// DeleteDevice removes a device model from the pool.
type DeleteDevice struct {
	ID string `json:"-"`
}

// CreateInventoryItem registers a single trackable item.
// Status defaults to available when omitted.
type CreateInventoryItem struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status,omitempty"`
}
