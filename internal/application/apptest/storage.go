package apptest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
)

// Storage almacenamiento de archivos en memoria.
type Storage struct {
	mu    sync.Mutex
	Files map[string][]byte
	Err   error // si no es nil, Save falla
}

func NewStorage() *Storage { return &Storage{Files: map[string][]byte{}} }

func (s *Storage) Save(ctx context.Context, key string, r io.Reader) error {
	if s.Err != nil {
		return s.Err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[key] = b
	return nil
}

func (s *Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Files[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Files, key)
	return nil
}

// Digester SHA-256 del contenido sin canonicalizar.
type Digester struct{}

func (Digester) Digest(mimeType string, data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Cache caché en memoria; ignora el TTL.
type Cache struct {
	mu     sync.Mutex
	Values map[string][]byte
	Sets   int
}

func NewCache() *Cache { return &Cache{Values: map[string][]byte{}} }

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.Values[key]
	return v, ok, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Values[key] = value
	c.Sets++
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.Values, k)
	}
	return nil
}

var (
	_ ports.FileStorage     = (*Storage)(nil)
	_ ports.ContentDigester = Digester{}
	_ ports.Cache           = (*Cache)(nil)
)
