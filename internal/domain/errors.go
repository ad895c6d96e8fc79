package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrUserNotFound         = errors.New("usuario no encontrado")
	ErrUsernameTaken        = errors.New("el nombre de usuario ya está registrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrInsufficientLotStock = errors.New("stock insuficiente en el lote seleccionado")
	ErrEmptyCart            = errors.New("el carrito está vacío")
	ErrCancelled            = errors.New("operación cancelada por el usuario")
	ErrArchived             = errors.New("el recurso está archivado")
)
