package billing

import "sync"

// CartRegistry un carrito por operador (ID de usuario).
type CartRegistry struct {
	mu       sync.Mutex
	products ProductReader
	carts    map[string]*Cart
}

// NewCartRegistry construye el registro.
func NewCartRegistry(products ProductReader) *CartRegistry {
	return &CartRegistry{products: products, carts: make(map[string]*Cart)}
}

// For devuelve el carrito del usuario, creándolo si no existe.
func (r *CartRegistry) For(userID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		c = NewCart(r.products)
		r.carts[userID] = c
	}
	return c
}

// Drop descarta el carrito del usuario.
func (r *CartRegistry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
}
