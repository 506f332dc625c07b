package main

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/mmu"
	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

// Reserva es un rango de direcciones lógicas entregado al proceso
type Reserva struct {
	Direccion uint32
	Tamanio   uint32
}

// Contiene indica si dir cae dentro de la reserva
func (r Reserva) Contiene(dir uint32) bool {
	return dir >= r.Direccion && uint64(dir) < uint64(r.Direccion)+uint64(r.Tamanio)
}

// Proceso agrupa el espacio de direcciones de un PID y sus reservas vigentes,
// para poder liberarlas al finalizar. mutex serializa reservas, liberaciones y
// la finalización del mismo proceso.
type Proceso struct {
	Espacio  *mmu.EspacioVirtual
	Reservas []Reserva

	mutex      sync.Mutex
	finalizado bool
}

// Variables globales
var (
	memoria       *mmu.Memoria
	procesos      map[uint32]*Proceso
	procesosMutex sync.Mutex
)

func inicializarMemoria() error {
	geometria := config.Geometria()

	utils.InfoLog.Info("Inicializando memoria",
		"bits_direccion", geometria.BitsDireccion,
		"bits_desplazamiento", geometria.BitsDesplazamiento,
		"bits_pagina", geometria.BitsPagina,
		"marcos", geometria.CantidadMarcos)

	m, err := mmu.Nueva(geometria, utils.InfoLog)
	if err != nil {
		return errors.Wrap(err, "error al inicializar la MMU")
	}
	memoria = m

	procesosMutex.Lock()
	procesos = make(map[uint32]*Proceso)
	procesosMutex.Unlock()

	inicializarMetricas()

	utils.InfoLog.Info("Memoria completamente inicializada",
		"tamaño_total", geometria.TamanioRAM(),
		"tamaño_página", geometria.TamanioPagina())
	return nil
}
