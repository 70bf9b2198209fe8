// Package storage guarda el contenido de los adjuntos en el sistema de archivos local.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
)

// LocalStorage implementa ports.FileStorage bajo un directorio raíz.
type LocalStorage struct {
	root string
}

// NewLocalStorage crea el directorio raíz si no existe.
func NewLocalStorage(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: ruta %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", abs, err)
	}
	return &LocalStorage{root: abs}, nil
}

// resolve impide que una clave salga de la raíz.
func (s *LocalStorage) resolve(key string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(key))
	if p != s.root && !strings.HasPrefix(p, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: clave inválida %q", key)
	}
	return p, nil
}

// Save escribe a un temporal y lo renombra; un fallo a mitad no deja archivos parciales.
func (s *LocalStorage) Save(ctx context.Context, key string, r io.Reader) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("storage: crear directorio: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("storage: crear temporal: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: escribir %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: cerrar %s: %w", key, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// Open abre el archivo; el caller lo cierra.
func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Delete borra el archivo; que no exista no es error.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: borrar %s: %w", key, err)
	}
	return nil
}

var _ ports.FileStorage = (*LocalStorage)(nil)
