// Package storage guarda archivos subidos (evidencias de novedades, imágenes de material) en disco.
package storage

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultMaxBytes tamaño máximo por archivo.
const DefaultMaxBytes int64 = 16 << 20

var (
	ErrTooLarge        = errors.New("el archivo supera el tamaño máximo permitido")
	ErrExtensionDenied = errors.New("tipo de archivo no permitido")
	ErrEmptyFile       = errors.New("el archivo está vacío")
)

// Local almacén en un directorio servido como estático bajo PublicPrefix.
type Local struct {
	dir          string
	publicPrefix string
	maxBytes     int64
	allowed      map[string]bool

	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewLocal crea el directorio si no existe. allowed son extensiones sin punto.
func NewLocal(dir, publicPrefix string, maxBytes int64, allowed []string) (*Local, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	set := make(map[string]bool, len(allowed))
	for _, ext := range allowed {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &Local{
		dir:          dir,
		publicPrefix: publicPrefix,
		maxBytes:     maxBytes,
		allowed:      set,
		entropy:      ulid.Monotonic(rand.Reader, 0),
		now:          time.Now,
	}, nil
}

// MaxBytes tamaño máximo aceptado.
func (l *Local) MaxBytes() int64 { return l.maxBytes }

// Save copia r a un archivo con nombre ULID y la extensión del original.
// Devuelve la ruta pública (PublicPrefix/nombre). El nombre original nunca se usa como ruta.
func (l *Local) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if ext == "" || !l.allowed[ext] {
		return "", fmt.Errorf("%w: %q", ErrExtensionDenied, ext)
	}
	name := l.newName() + "." + ext

	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: crear archivo: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, l.maxBytes+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		l.remove(name)
		return "", fmt.Errorf("storage: escribir: %w", err)
	case closeErr != nil:
		l.remove(name)
		return "", fmt.Errorf("storage: cerrar: %w", closeErr)
	case n > l.maxBytes:
		l.remove(name)
		return "", ErrTooLarge
	case n == 0:
		l.remove(name)
		return "", ErrEmptyFile
	}
	return path.Join(l.publicPrefix, name), nil
}

func (l *Local) newName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(l.now()), l.entropy).String())
}

func (l *Local) remove(name string) {
	_ = os.Remove(filepath.Join(l.dir, name))
}
