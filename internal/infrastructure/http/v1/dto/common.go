// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"bakerypos/internal/core/id"
	"bakerypos/internal/domain"
)

// --- Pagination ---

// PageQuery carries limit/offset query parameters.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// LimitOr returns Limit or def when unset.
func (p PageQuery) LimitOr(def int) int {
	if p.Limit == 0 {
		return def
	}
	return p.Limit
}

// --- List Response ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// FromListResult wraps a domain page.
func FromListResult[T any](r domain.ListResult[T]) ListResponse {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	return ListResponse{
		Items:      items,
		TotalCount: r.TotalCount,
		Limit:      r.Limit,
		Offset:     r.Offset,
	}
}

// ItemsResponse wraps an unpaginated list.
type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

// NewItemsResponse never renders items as null.
func NewItemsResponse[T any](items []T) ItemsResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ItemsResponse[T]{Items: items}
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Success Response ---

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
