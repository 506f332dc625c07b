package utils

import (
	"context"
)

// Semaforo limita cuántos procesos pueden estar en ejecución a la vez. Cada
// lugar tomado es un elemento en el canal, así que len(c) es la ocupación.
type Semaforo struct {
	c chan struct{}
}

// NewSemaforo crea un semáforo con capacidad lugares. Una capacidad no
// positiva se toma como 1.
func NewSemaforo(capacidad int) *Semaforo {
	if capacidad <= 0 {
		capacidad = 1
	}
	return &Semaforo{c: make(chan struct{}, capacidad)}
}

// Wait toma un lugar y bloquea hasta que haya uno
func (s *Semaforo) Wait() {
	s.c <- struct{}{}
}

// WaitContext toma un lugar o devuelve el error de ctx si se cancela antes
func (s *Semaforo) WaitContext(ctx context.Context) error {
	select {
	case s.c <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryWait toma un lugar si hay uno libre
func (s *Semaforo) TryWait() bool {
	select {
	case s.c <- struct{}{}:
		return true
	default:
		return false
	}
}

// Signal devuelve un lugar. Informa false si no había ninguno tomado.
func (s *Semaforo) Signal() bool {
	select {
	case <-s.c:
		return true
	default:
		return false
	}
}

// Ocupados devuelve cuántos lugares están tomados
func (s *Semaforo) Ocupados() int {
	return len(s.c)
}

// Capacidad es el grado máximo de ocupación
func (s *Semaforo) Capacidad() int {
	return cap(s.c)
}
