package main

import (
	"fmt"
	"time"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

const (
	EstadoNew   = "NEW"
	EstadoReady = "READY"
	EstadoExec  = "EXEC"
	EstadoExit  = "EXIT"
)

type PCB struct {
	PID            uint32
	NivelPrioridad uint32
	Tamanio        uint32
	Estado         string

	// Timestamps
	HoraCreacion     time.Time
	HoraListo        time.Time
	HoraEjecucion    time.Time
	HoraFinalizacion time.Time

	// Resultado de la ejecución, vacío si terminó bien
	MotivoFin string
}

// Prioridad permite encolar el PCB en la cola de READY
func (pcb *PCB) Prioridad() uint32 {
	return pcb.NivelPrioridad
}

func NuevoPCB(pid uint32, prioridad uint32, tamanio uint32) *PCB {
	pcb := &PCB{
		PID:            pid,
		NivelPrioridad: prioridad,
		Tamanio:        tamanio,
		Estado:         EstadoNew,
		HoraCreacion:   time.Now(),
	}

	utils.InfoLog.Info(fmt.Sprintf("(%d) - Se crea el proceso - Estado: %s", pcb.PID, pcb.Estado))
	return pcb
}

func (pcb *PCB) CambiarEstado(nuevoEstado string) {
	if pcb.Estado == nuevoEstado {
		return
	}

	estadoAnterior := pcb.Estado
	horaActual := time.Now()

	switch nuevoEstado {
	case EstadoReady:
		pcb.HoraListo = horaActual
	case EstadoExec:
		pcb.HoraEjecucion = horaActual
	case EstadoExit:
		pcb.HoraFinalizacion = horaActual
	}

	pcb.Estado = nuevoEstado
	utils.InfoLog.Info(fmt.Sprintf("(%d) - Pasa del estado %s al estado %s", pcb.PID, estadoAnterior, nuevoEstado))
}

func (pcb *PCB) String() string {
	return fmt.Sprintf("PCB{PID: %d, Prioridad: %d, Estado: %s, Tamaño: %d}",
		pcb.PID, pcb.NivelPrioridad, pcb.Estado, pcb.Tamanio)
}

// CalcularMetricas registra cuánto tiempo pasó el proceso en cada estado
func (pcb *PCB) CalcularMetricas() {
	tiempoNew := 0.0
	if pcb.HoraListo.After(pcb.HoraCreacion) {
		tiempoNew = pcb.HoraListo.Sub(pcb.HoraCreacion).Seconds()
	}

	tiempoReady := 0.0
	if pcb.HoraEjecucion.After(pcb.HoraListo) {
		tiempoReady = pcb.HoraEjecucion.Sub(pcb.HoraListo).Seconds()
	}

	tiempoExec := 0.0
	if pcb.HoraFinalizacion.After(pcb.HoraEjecucion) {
		tiempoExec = pcb.HoraFinalizacion.Sub(pcb.HoraEjecucion).Seconds()
	}

	utils.InfoLog.Info(fmt.Sprintf("(%d) - Métricas de estado: NEW (%.2f), READY (%.2f), EXEC (%.2f)",
		pcb.PID, tiempoNew, tiempoReady, tiempoExec))
}
