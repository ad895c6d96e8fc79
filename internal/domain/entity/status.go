package entity

// Estados de registros con baja lógica (productos, clientes, usuarios).
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)
