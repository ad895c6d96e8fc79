package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// NameKey normaliza un nombre de producto para comparaciones sin distinguir mayúsculas:
// recorta, colapsa espacios internos y aplica case folding Unicode.
func NameKey(name string) string {
	// cases.Caser guarda estado: uno por llamada.
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// ValidProductName indica si el nombre solo tiene letras, dígitos y espacios y no está vacío.
func ValidProductName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
			return false
		}
	}
	return true
}
