package memory

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

type entry struct {
	value   []byte
	expires time.Time // cero = sin expiración
}

// Storage implementación en memoria de fiber.Storage para los contadores del limitador de peticiones.
// Es segura para uso concurrente; las entradas vencidas se descartan al leerlas o con Sweep.
type Storage struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

// NewStorage crea un almacenamiento vacío.
func NewStorage() *Storage {
	return &Storage{data: make(map[string]entry), now: time.Now}
}

// Get devuelve nil si la clave no existe o venció.
func (s *Storage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok || s.expired(e) {
		return nil, nil
	}
	return e.value, nil
}

// Set guarda una copia de val. exp <= 0 significa sin expiración.
func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	e := entry{value: append([]byte(nil), val...)}
	if exp > 0 {
		e.expires = s.now().Add(exp)
	}
	s.mu.Lock()
	s.data[key] = e
	s.mu.Unlock()
	return nil
}

func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

func (s *Storage) Reset() error {
	s.mu.Lock()
	s.data = make(map[string]entry)
	s.mu.Unlock()
	return nil
}

func (s *Storage) Close() error { return nil }

// Sweep elimina las entradas vencidas y devuelve cuántas quitó.
func (s *Storage) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.data {
		if s.expired(e) {
			delete(s.data, k)
			n++
		}
	}
	return n
}

// Len cantidad de claves almacenadas, vencidas incluidas.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Storage) expired(e entry) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}

// Ensure interface compliance.
var _ fiber.Storage = (*Storage)(nil)
