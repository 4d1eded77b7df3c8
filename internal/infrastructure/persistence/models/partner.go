package models

import "github.com/erp/backoffice/internal/domain/partner"

// CustomerModel is a row of the customers table. Accounts, orders and
// payments reference it by id.
type CustomerModel struct {
	TenantAggregateModel
	Name    string `gorm:"type:varchar(200);not null"`
	Contact string `gorm:"type:varchar(100)"`
	Address string `gorm:"type:text"`
}

func (CustomerModel) TableName() string {
	return "customers"
}

func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Contact:             m.Contact,
		Address:             m.Address,
	}
}

func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Contact = c.Contact
	m.Address = c.Address
}

func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
