package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/mmu"
	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

var (
	ErrProcesoInexistente = errors.New("proceso inexistente")
	ErrProcesoDuplicado   = errors.New("el proceso ya existe")
)

// inicializarProceso crea el espacio de direcciones vacío de un PID
func inicializarProceso(pid uint32) error {
	if pid == 0 {
		return mmu.ErrPIDReservado
	}

	procesosMutex.Lock()
	defer procesosMutex.Unlock()

	if _, existe := procesos[pid]; existe {
		return errors.Wrapf(ErrProcesoDuplicado, "pid %d", pid)
	}
	procesos[pid] = &Proceso{Espacio: mmu.NuevoEspacioVirtual(pid)}

	// Log obligatorio
	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Proceso Creado", pid))
	return nil
}

// obtenerProceso busca el proceso por PID
func obtenerProceso(pid uint32) (*Proceso, error) {
	procesosMutex.Lock()
	defer procesosMutex.Unlock()

	proceso, existe := procesos[pid]
	if !existe {
		return nil, errors.Wrapf(ErrProcesoInexistente, "pid %d", pid)
	}
	return proceso, nil
}

// reservarMemoria reserva tamanio bytes y recuerda la dirección devuelta
func reservarMemoria(pid uint32, tamanio uint32) (uint32, error) {
	proceso, err := obtenerProceso(pid)
	if err != nil {
		return 0, err
	}

	proceso.mutex.Lock()
	defer proceso.mutex.Unlock()

	// Una finalización en curso ya sacó al proceso del mapa
	if proceso.finalizado {
		return 0, errors.Wrapf(ErrProcesoInexistente, "pid %d finalizado", pid)
	}

	dir, err := memoria.Reservar(tamanio, proceso.Espacio)
	if err != nil {
		return 0, err
	}
	proceso.Reservas = append(proceso.Reservas, Reserva{Direccion: dir, Tamanio: tamanio})

	actualizarMetricas(pid, func(m *MetricasProceso) { m.Reservas++ })

	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Reserva - Dir Lógica: %d - Tamaño: %d", pid, dir, tamanio))
	return dir, nil
}

// liberarMemoria libera desde la página de dir hasta el final de su reserva
func liberarMemoria(pid uint32, dir uint32) error {
	proceso, err := obtenerProceso(pid)
	if err != nil {
		return err
	}

	proceso.mutex.Lock()
	defer proceso.mutex.Unlock()

	if proceso.finalizado {
		return errors.Wrapf(ErrProcesoInexistente, "pid %d finalizado", pid)
	}

	err = memoria.Liberar(dir, proceso.Espacio)
	if err != nil && errors.Is(err, mmu.ErrDireccionInvalida) {
		actualizarMetricas(pid, func(m *MetricasProceso) { m.FallosTraduccion++ })
		return err
	}

	// Con liberación parcial los marcos igual se devolvieron
	inicioPagina := dir - memoria.Config().Desplazamiento(dir)
	proceso.Reservas = recortarReserva(proceso.Reservas, dir, inicioPagina)

	actualizarMetricas(pid, func(m *MetricasProceso) { m.Liberaciones++ })

	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Liberación - Dir Lógica: %d", pid, dir))
	return err
}

// recortarReserva ajusta la reserva que contiene dir. Las páginas anteriores a
// inicioPagina siguen tomadas, así que la reserva se achica hasta ahí; si no
// queda ninguna se descarta.
func recortarReserva(reservas []Reserva, dir uint32, inicioPagina uint32) []Reserva {
	for i, r := range reservas {
		if !r.Contiene(dir) {
			continue
		}
		if inicioPagina <= r.Direccion {
			return append(reservas[:i], reservas[i+1:]...)
		}
		reservas[i].Tamanio = inicioPagina - r.Direccion
		return reservas
	}
	return reservas
}

// finalizarProceso libera todas las reservas vigentes y descarta el espacio de direcciones
func finalizarProceso(pid uint32) (MetricasProceso, error) {
	procesosMutex.Lock()
	proceso, existe := procesos[pid]
	if existe {
		delete(procesos, pid)
	}
	procesosMutex.Unlock()

	if !existe {
		return MetricasProceso{}, errors.Wrapf(ErrProcesoInexistente, "pid %d", pid)
	}

	proceso.mutex.Lock()
	proceso.finalizado = true
	for _, reserva := range proceso.Reservas {
		if err := memoria.Liberar(reserva.Direccion, proceso.Espacio); err != nil {
			utils.InfoLog.Warn("Reserva no liberada al finalizar", "pid", pid, "dir_logica", reserva.Direccion, "error", err)
		}
	}
	proceso.Reservas = nil
	proceso.mutex.Unlock()

	metricas := quitarMetricas(pid)

	// Log obligatorio
	utils.InfoLog.Info(fmt.Sprintf("## PID: %d - Proceso Destruido - Métricas: Reservas;%d;Liberaciones;%d;LecMem;%d;EscMem;%d;Fallos;%d",
		pid,
		metricas.Reservas,
		metricas.Liberaciones,
		metricas.Lecturas,
		metricas.Escrituras,
		metricas.FallosTraduccion))

	return metricas, nil
}
