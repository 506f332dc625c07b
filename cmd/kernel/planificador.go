package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/cola"
	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

var (
	// Cola de READY, se elige siempre la mayor prioridad
	colaReady  *cola.Cola[*PCB]
	readyMutex sync.Mutex

	colaExit  []*PCB
	exitMutex sync.Mutex

	mapaPCBs  map[uint32]*PCB
	mapaMutex sync.RWMutex

	gradoMultiprogramacion int
	semaforoMultiprogram   *utils.Semaforo

	// Máxima cantidad de procesos en EXEC a la vez
	picoMultiprogramacion int
	picoMutex             sync.Mutex
)

func InicializarPlanificador(config *KernelConfig) {
	gradoMultiprogramacion = config.GradoMultiprogramacion
	if gradoMultiprogramacion <= 0 {
		gradoMultiprogramacion = 1
	}
	semaforoMultiprogram = utils.NewSemaforo(gradoMultiprogramacion)

	picoMutex.Lock()
	picoMultiprogramacion = 0
	picoMutex.Unlock()

	readyMutex.Lock()
	colaReady = cola.Nueva[*PCB](config.CapacidadCola)
	readyMutex.Unlock()

	exitMutex.Lock()
	colaExit = nil
	exitMutex.Unlock()

	mapaMutex.Lock()
	mapaPCBs = make(map[uint32]*PCB)
	mapaMutex.Unlock()

	utils.InfoLog.Info("Planificador inicializado",
		"capacidad_ready", colaReady.Capacidad(),
		"multiprogramacion", gradoMultiprogramacion)
}

// BuscarPCBPorPID busca un PCB en el mapa global
func BuscarPCBPorPID(pid uint32) *PCB {
	mapaMutex.RLock()
	defer mapaMutex.RUnlock()
	return mapaPCBs[pid]
}

// AdmitirProceso pasa el proceso a READY. Falla si la cola está llena o el PID ya existe.
func AdmitirProceso(pcb *PCB) error {
	mapaMutex.Lock()
	if _, existe := mapaPCBs[pcb.PID]; existe {
		mapaMutex.Unlock()
		return errors.Errorf("el PID %d ya fue admitido", pcb.PID)
	}
	mapaPCBs[pcb.PID] = pcb
	mapaMutex.Unlock()

	readyMutex.Lock()
	err := colaReady.Encolar(pcb)
	readyMutex.Unlock()

	if err != nil {
		mapaMutex.Lock()
		delete(mapaPCBs, pcb.PID)
		mapaMutex.Unlock()
		utils.InfoLog.Warn("Proceso no admitido", "pid", pcb.PID, "error", err)
		return err
	}

	pcb.CambiarEstado(EstadoReady)
	return nil
}

// SiguienteProceso quita de READY el proceso de mayor prioridad
func SiguienteProceso() (*PCB, bool) {
	readyMutex.Lock()
	defer readyMutex.Unlock()
	return colaReady.Desencolar()
}

// PlanificarCortoPlazo despacha los procesos de READY hasta vaciar la cola, con
// a lo sumo GRADO_MULTIPROGRAMACION en ejecución. Si ctx se cancela no despacha
// más y espera a los que están en EXEC. Devuelve los PID en el orden en que
// fueron despachados.
func PlanificarCortoPlazo(ctx context.Context, cliente ClienteMemoria) []uint32 {
	var (
		wg    sync.WaitGroup
		orden []uint32
	)

	for ctx.Err() == nil {
		if err := semaforoMultiprogram.WaitContext(ctx); err != nil {
			utils.InfoLog.Warn("Planificación interrumpida", "error", err)
			break
		}

		pcb, ok := SiguienteProceso()
		if !ok {
			semaforoMultiprogram.Signal()
			break
		}

		orden = append(orden, pcb.PID)
		enEjecucion := registrarOcupacion()
		utils.InfoLog.Info(fmt.Sprintf("(%d) - Despachado con prioridad %d - En ejecución: %d/%d",
			pcb.PID, pcb.NivelPrioridad, enEjecucion, semaforoMultiprogram.Capacidad()))

		wg.Add(1)
		go func(pcb *PCB) {
			defer wg.Done()
			defer liberarLugar(pcb)
			ejecutarProceso(cliente, pcb)
		}(pcb)
	}

	wg.Wait()
	return orden
}

// registrarOcupacion actualiza el pico con la ocupación actual del semáforo
func registrarOcupacion() int {
	ocupados := semaforoMultiprogram.Ocupados()

	picoMutex.Lock()
	if ocupados > picoMultiprogramacion {
		picoMultiprogramacion = ocupados
	}
	picoMutex.Unlock()

	return ocupados
}

func liberarLugar(pcb *PCB) {
	if !semaforoMultiprogram.Signal() {
		utils.ErrorLog.Error("Lugar de multiprogramación liberado sin tomar", "pid", pcb.PID)
	}
}

// PicoMultiprogramacion devuelve la mayor cantidad de procesos que estuvieron en EXEC a la vez
func PicoMultiprogramacion() int {
	picoMutex.Lock()
	defer picoMutex.Unlock()
	return picoMultiprogramacion
}

// ejecutarProceso recorre el ciclo de vida del proceso en Memoria: crea su
// espacio, reserva su tamaño, verifica un byte y libera todo.
func ejecutarProceso(cliente ClienteMemoria, pcb *PCB) {
	pcb.CambiarEstado(EstadoExec)

	if err := usarMemoria(cliente, pcb); err != nil {
		pcb.MotivoFin = err.Error()
		utils.ErrorLog.Error("Error ejecutando proceso", "pid", pcb.PID, "error", err)
	}

	finalizarProceso(pcb)
}

func usarMemoria(cliente ClienteMemoria, pcb *PCB) error {
	if err := inicializarEnMemoria(cliente, pcb.PID); err != nil {
		return err
	}
	// Memoria libera lo que quede reservado al finalizar
	defer func() {
		if err := finalizarEnMemoria(cliente, pcb.PID); err != nil {
			utils.ErrorLog.Error("Error finalizando en Memoria", "pid", pcb.PID, "error", err)
		}
	}()

	if pcb.Tamanio == 0 {
		return nil
	}

	dir, err := reservarEnMemoria(cliente, pcb.PID, pcb.Tamanio)
	if err != nil {
		return err
	}

	ultimo := dir + pcb.Tamanio - 1
	valor := byte(pcb.PID)
	if err := escribirEnMemoria(cliente, pcb.PID, ultimo, valor); err != nil {
		return err
	}
	leido, err := leerDeMemoria(cliente, pcb.PID, ultimo)
	if err != nil {
		return err
	}
	if leido != valor {
		return errors.Errorf("se leyó %#x en la dirección %d, se había escrito %#x", leido, ultimo, valor)
	}

	return liberarEnMemoria(cliente, pcb.PID, dir)
}

func finalizarProceso(pcb *PCB) {
	pcb.CambiarEstado(EstadoExit)

	exitMutex.Lock()
	colaExit = append(colaExit, pcb)
	exitMutex.Unlock()

	// Log obligatorio
	utils.InfoLog.Info(fmt.Sprintf("(%d) - Finaliza el proceso", pcb.PID))
	pcb.CalcularMetricas()
}

// ProcesosFinalizados devuelve una copia de la cola de EXIT
func ProcesosFinalizados() []*PCB {
	exitMutex.Lock()
	defer exitMutex.Unlock()
	return append([]*PCB(nil), colaExit...)
}
