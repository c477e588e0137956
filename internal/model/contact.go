package model

// ContactType distinguishes who we bill from who bills us.
type ContactType string

const (
	ContactCustomer ContactType = "customer"
	ContactVendor   ContactType = "vendor"
)

// Contact is a customer or vendor referenced by documents.
type Contact struct {
	ID      string
	Name    string
	Email   string
	Phone   string
	Address string
	Type    ContactType
}
