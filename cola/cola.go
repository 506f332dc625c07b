package cola

import (
	"github.com/pkg/errors"
)

// CapacidadPorDefecto es la cantidad máxima de procesos de una cola
const CapacidadPorDefecto = 10

// ErrColaLlena se devuelve al encolar en una cola sin lugar
var ErrColaLlena = errors.New("cola llena")

// ConPrioridad es cualquier handle de proceso que expone su prioridad
type ConPrioridad interface {
	Prioridad() uint32
}

// Cola es una cola de capacidad fija: se encola al final y se desencola el
// elemento de mayor prioridad. No es segura para uso concurrente; la protege
// quien la usa.
type Cola[T ConPrioridad] struct {
	elementos []T
	capacidad int
}

// Nueva crea una cola vacía. Una capacidad no positiva usa CapacidadPorDefecto.
func Nueva[T ConPrioridad](capacidad int) *Cola[T] {
	if capacidad <= 0 {
		capacidad = CapacidadPorDefecto
	}
	return &Cola[T]{
		elementos: make([]T, 0, capacidad),
		capacidad: capacidad,
	}
}

// Encolar agrega el elemento al final
func (c *Cola[T]) Encolar(elemento T) error {
	if len(c.elementos) >= c.capacidad {
		return errors.Wrapf(ErrColaLlena, "capacidad %d", c.capacidad)
	}
	c.elementos = append(c.elementos, elemento)
	return nil
}

// Desencolar quita y devuelve el elemento de mayor prioridad. Ante empates
// gana el que está más cerca del frente. El resto conserva su orden.
func (c *Cola[T]) Desencolar() (T, bool) {
	var cero T
	if len(c.elementos) == 0 {
		return cero, false
	}

	elegido := 0
	for i := 1; i < len(c.elementos); i++ {
		if c.elementos[i].Prioridad() > c.elementos[elegido].Prioridad() {
			elegido = i
		}
	}

	elemento := c.elementos[elegido]
	copy(c.elementos[elegido:], c.elementos[elegido+1:])
	c.elementos[len(c.elementos)-1] = cero
	c.elementos = c.elementos[:len(c.elementos)-1]

	return elemento, true
}

// Vacia indica si la cola no tiene elementos
func (c *Cola[T]) Vacia() bool {
	return len(c.elementos) == 0
}

// Tamanio es la cantidad de elementos encolados
func (c *Cola[T]) Tamanio() int {
	return len(c.elementos)
}

// Capacidad es la cantidad máxima de elementos que admite la cola
func (c *Cola[T]) Capacidad() int {
	return c.capacidad
}

// Elementos devuelve una copia en orden de llegada
func (c *Cola[T]) Elementos() []T {
	return append([]T(nil), c.elementos...)
}
