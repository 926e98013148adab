package dto

import (
	"stockpro/internal/core/id"
	"stockpro/internal/domain/catalogs/organization"
)

// CreateOrganizationRequest is the DTO for creating an organization.
type CreateOrganizationRequest struct {
	Code           string `json:"code"`
	Name           string `json:"name" binding:"required"`
	FullName       string `json:"fullName"`
	CNPJ           string `json:"cnpj"`
	Address        string `json:"address"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	BaseCurrencyID id.ID  `json:"baseCurrencyId"`
	IsDefault      bool   `json:"isDefault"`
}

func (r CreateOrganizationRequest) ToEntity() *organization.Organization {
	org := organization.NewOrganization(r.Code, r.Name, r.BaseCurrencyID)
	org.FullName = optString(r.FullName)
	org.CNPJ = optString(r.CNPJ)
	org.Address = optString(r.Address)
	org.Email = optString(r.Email)
	org.Phone = optString(r.Phone)
	org.IsDefault = r.IsDefault
	return org
}

// UpdateOrganizationRequest is the DTO for updating an organization.
type UpdateOrganizationRequest struct {
	Code           string `json:"code"`
	Name           string `json:"name" binding:"required"`
	FullName       string `json:"fullName"`
	CNPJ           string `json:"cnpj"`
	Address        string `json:"address"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	BaseCurrencyID id.ID  `json:"baseCurrencyId"`
	IsDefault      bool   `json:"isDefault"`
	Version        int    `json:"version" binding:"required"`
}

func (r UpdateOrganizationRequest) ApplyTo(org *organization.Organization) {
	org.Code = r.Code
	org.Name = r.Name
	org.FullName = optString(r.FullName)
	org.CNPJ = optString(r.CNPJ)
	org.Address = optString(r.Address)
	org.Email = optString(r.Email)
	org.Phone = optString(r.Phone)
	org.BaseCurrencyID = r.BaseCurrencyID
	org.IsDefault = r.IsDefault
	org.Version = r.Version
}

// OrganizationResponse is the response body for an organization.
type OrganizationResponse struct {
	ID             string  `json:"id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	FullName       *string `json:"fullName,omitempty"`
	CNPJ           *string `json:"cnpj,omitempty"`
	Address        *string `json:"address,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	BaseCurrencyID string  `json:"baseCurrencyId,omitempty"`
	IsDefault      bool    `json:"isDefault"`
	DeletionMark   bool    `json:"deletionMark"`
	Version        int     `json:"version"`
}

// FromOrganization creates response DTO from domain entity.
func FromOrganization(org *organization.Organization) *OrganizationResponse {
	resp := &OrganizationResponse{
		ID:           org.ID.String(),
		Code:         org.Code,
		Name:         org.Name,
		FullName:     org.FullName,
		CNPJ:         org.CNPJ,
		Address:      org.Address,
		Email:        org.Email,
		Phone:        org.Phone,
		IsDefault:    org.IsDefault,
		DeletionMark: org.DeletionMark,
		Version:      org.Version,
	}
	if !id.IsNil(org.BaseCurrencyID) {
		resp.BaseCurrencyID = org.BaseCurrencyID.String()
	}
	return resp
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
