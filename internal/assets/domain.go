package assets

import "time"

// Asset statuses used by the fleet inventory.
const (
	StatusInUse   = "in_use"
	StatusSpare   = "spare"
	StatusRepair  = "repair"
	StatusRetired = "retired"
)

// Asset represents one inventory record.
type Asset struct {
	ID           int64     `json:"id"`
	AssetCode    string    `json:"asset_code"`
	Category     string    `json:"category"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	SerialNumber string    `json:"serial_number"`
	Location     string    `json:"location"`
	OwnerDept    string    `json:"owner_dept"`
	IPAddress    string    `json:"ip_address"`
	MACAddress   string    `json:"mac_address"`
	OSOrFirmware string    `json:"os_or_firmware"`
	Status       string    `json:"status"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateInput carries the fields accepted on create.
type CreateInput struct {
	AssetCode    string `json:"asset_code"`
	Category     string `json:"category"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	Location     string `json:"location"`
	OwnerDept    string `json:"owner_dept"`
	IPAddress    string `json:"ip_address"`
	MACAddress   string `json:"mac_address"`
	OSOrFirmware string `json:"os_or_firmware"`
	Status       string `json:"status"`
	Note         string `json:"note"`
}

// UpdateInput carries one optional field per column. Nil means "leave the
// stored value untouched"; there is no dynamic field-setter anywhere.
type UpdateInput struct {
	AssetCode    *string `json:"asset_code"`
	Category     *string `json:"category"`
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	SerialNumber *string `json:"serial_number"`
	Location     *string `json:"location"`
	OwnerDept    *string `json:"owner_dept"`
	IPAddress    *string `json:"ip_address"`
	MACAddress   *string `json:"mac_address"`
	OSOrFirmware *string `json:"os_or_firmware"`
	Status       *string `json:"status"`
	Note         *string `json:"note"`
}

// IsEmpty reports whether no field is set.
func (in UpdateInput) IsEmpty() bool {
	return in.AssetCode == nil && in.Category == nil && in.Brand == nil &&
		in.Model == nil && in.SerialNumber == nil && in.Location == nil &&
		in.OwnerDept == nil && in.IPAddress == nil && in.MACAddress == nil &&
		in.OSOrFirmware == nil && in.Status == nil && in.Note == nil
}

// Changes returns the provided fields as a map for the audit detail.
func (in UpdateInput) Changes() map[string]any {
	changes := make(map[string]any)
	set := func(name string, value *string) {
		if value != nil {
			changes[name] = *value
		}
	}
	set("asset_code", in.AssetCode)
	set("category", in.Category)
	set("brand", in.Brand)
	set("model", in.Model)
	set("serial_number", in.SerialNumber)
	set("location", in.Location)
	set("owner_dept", in.OwnerDept)
	set("ip_address", in.IPAddress)
	set("mac_address", in.MACAddress)
	set("os_or_firmware", in.OSOrFirmware)
	set("status", in.Status)
	set("note", in.Note)
	return changes
}

// ListFilters narrows asset listings. Code and IP filters match substrings,
// category and status match exactly.
type ListFilters struct {
	AssetCode string
	IPAddress string
	Category  string
	Status    string
}
