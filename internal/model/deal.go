// Package model defines the core domain models used throughout the application.
package model

// Section identifies which promotion section a deal or identifier belongs to.
type Section string

// Promotion section constants.
const (
	SectionWeekly  Section = "weekly"
	SectionMonthly Section = "monthly"
	SectionSale    Section = "sale"
)

// Deal represents a single promotion row as the backend reports it.
type Deal struct {
	Brand         string  `json:"brand"`
	Weekday       string  `json:"weekday,omitempty"`
	Discount      string  `json:"discount"`
	VendorContrib string  `json:"vendor_contrib"`
	Locations     string  `json:"locations"`
	MISID         string  `json:"mis_id,omitempty"`
	StartDate     string  `json:"start_date,omitempty"`
	EndDate       string  `json:"end_date,omitempty"`
	Section       Section `json:"section,omitempty"`
	GoogleRow     int     `json:"google_row,omitempty"`
}

// HasMISID returns true if the deal already carries an identifier from the sheet.
func (d Deal) HasMISID() bool {
	return d.MISID != ""
}
