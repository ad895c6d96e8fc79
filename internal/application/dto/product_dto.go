package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	Status        string          `json:"status"`
	ArchiveReason string          `json:"archive_reason,omitempty"`
	ArchivedAt    *time.Time      `json:"archived_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// UpdateProductRequest edición de un producto; el stock no es editable.
type UpdateProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ArchiveRequest body para archivar productos, clientes o usuarios (motivo obligatorio).
type ArchiveRequest struct {
	Reason string `json:"reason"`
}

// ProductDetailResponse producto con sus lotes y la ficha del vademécum si existe.
type ProductDetailResponse struct {
	Product   ProductResponse    `json:"product"`
	Lots      []LotResponse      `json:"lots"`
	Vademecum *VademecumResponse `json:"vademecum,omitempty"`
}
