package pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SaveLocator decide dónde se guarda un documento. ok=false significa que el operador canceló.
type SaveLocator interface {
	ChooseLocation(ctx context.Context, suggestedName string) (path string, ok bool, err error)
}

// SaveLocatorFunc adapta una función a SaveLocator.
type SaveLocatorFunc func(ctx context.Context, suggestedName string) (string, bool, error)

// ChooseLocation implementa SaveLocator.
func (f SaveLocatorFunc) ChooseLocation(ctx context.Context, suggestedName string) (string, bool, error) {
	return f(ctx, suggestedName)
}

// DirectoryLocator guarda todos los documentos en un directorio fijo (DOCUMENTS_DIR).
// Si el nombre ya existe agrega un sufijo numérico.
type DirectoryLocator struct {
	Dir string
}

// NewDirectoryLocator construye el locator.
func NewDirectoryLocator(dir string) *DirectoryLocator {
	return &DirectoryLocator{Dir: dir}
}

// ChooseLocation implementa SaveLocator.
func (l *DirectoryLocator) ChooseLocation(ctx context.Context, suggestedName string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, nil
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", false, fmt.Errorf("crear directorio de documentos: %w", err)
	}
	name := filepath.Base(suggestedName)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	path := filepath.Join(l.Dir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return path, true, nil
		} else if err != nil {
			return "", false, fmt.Errorf("verificar %s: %w", path, err)
		}
		path = filepath.Join(l.Dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
}

// writeAtomic escribe en un temporal del mismo directorio y renombra.
func writeAtomic(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*"+filepath.Ext(path))
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("eliminar %s: %w", path, err)
	}
	return nil
}
