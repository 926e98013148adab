package dto

import (
	"stockpro/internal/core/entity"
	"stockpro/internal/domain/catalogs/supplier"
)

// --- Request DTOs ---

// CreateSupplierRequest is the request body for creating a supplier.
type CreateSupplierRequest struct {
	Code        string            `json:"code"`
	Name        string            `json:"name" binding:"required"`
	CNPJ        string            `json:"cnpj"`
	Address     string            `json:"address"`
	FDA         string            `json:"fda"`
	Email       *string           `json:"email"`
	Salesperson *string           `json:"salesperson"`
	Phone       *string           `json:"phone"`
	Attributes  entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.New(r.Code, r.Name, r.CNPJ)
	s.Address = r.Address
	s.FDA = r.FDA
	s.Email = r.Email
	s.Salesperson = r.Salesperson
	s.Phone = r.Phone
	s.Attributes = r.Attributes
	return s
}

// UpdateSupplierRequest is the request body for updating a supplier.
type UpdateSupplierRequest struct {
	Code        string            `json:"code"`
	Name        string            `json:"name" binding:"required"`
	CNPJ        string            `json:"cnpj"`
	Address     string            `json:"address"`
	FDA         string            `json:"fda"`
	Email       *string           `json:"email"`
	Salesperson *string           `json:"salesperson"`
	Phone       *string           `json:"phone"`
	Attributes  entity.Attributes `json:"attributes"`
	Version     int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	s.Code = r.Code
	s.Name = r.Name
	s.CNPJ = supplier.NormalizeCNPJ(r.CNPJ)
	s.Address = r.Address
	s.FDA = r.FDA
	s.Email = r.Email
	s.Salesperson = r.Salesperson
	s.Phone = r.Phone
	s.Attributes = r.Attributes
	s.Version = r.Version
}

// --- Response DTOs ---

// SupplierResponse is the response body for a supplier.
type SupplierResponse struct {
	ID           string            `json:"id"`
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	CNPJ         string            `json:"cnpj"`
	Address      string            `json:"address,omitempty"`
	FDA          string            `json:"fda,omitempty"`
	Email        *string           `json:"email,omitempty"`
	Salesperson  *string           `json:"salesperson,omitempty"`
	Phone        *string           `json:"phone,omitempty"`
	DeletionMark bool              `json:"deletionMark"`
	Version      int               `json:"version"`
	Attributes   entity.Attributes `json:"attributes,omitempty"`
}

// FromSupplier creates response DTO from domain entity.
func FromSupplier(s *supplier.Supplier) *SupplierResponse {
	return &SupplierResponse{
		ID:           s.ID.String(),
		Code:         s.Code,
		Name:         s.Name,
		CNPJ:         s.CNPJ,
		Address:      s.Address,
		FDA:          s.FDA,
		Email:        s.Email,
		Salesperson:  s.Salesperson,
		Phone:        s.Phone,
		DeletionMark: s.DeletionMark,
		Version:      s.Version,
		Attributes:   s.Attributes,
	}
}
