package mmu

import (
	"github.com/pkg/errors"
)

var (
	// Agotamiento de recursos: la reserva no se realiza y no se modifica nada
	ErrMemoriaInsuficiente   = errors.New("no hay suficientes marcos libres")
	ErrEspacioVirtualAgotado = errors.New("espacio de direcciones virtual agotado")

	// La dirección no tiene segmento o página asociada
	ErrDireccionInvalida = errors.New("dirección virtual inválida")

	// La liberación se cortó antes de retirar todas las páginas de la cadena
	ErrLiberacionParcial = errors.New("liberación parcial")

	ErrTamanioInvalido = errors.New("tamaño de reserva inválido")
	ErrPIDReservado    = errors.New("el PID 0 está reservado para marcos libres")
	ErrProcesoNulo     = errors.New("proceso nulo")
)
