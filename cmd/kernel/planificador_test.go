package main

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/pkg/errors"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/cola"
	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

// memoriaFalsa responde como Memoria guardando los bytes escritos por proceso
type memoriaFalsa struct {
	mutex    sync.Mutex
	llamadas []int
	bytes    map[uint32]map[int]byte
	fallar   map[int]error
}

func nuevaMemoriaFalsa() *memoriaFalsa {
	return &memoriaFalsa{
		bytes:  make(map[uint32]map[int]byte),
		fallar: make(map[int]error),
	}
}

func (m *memoriaFalsa) EnviarYValidar(tipo int, datos map[string]interface{}) (map[string]interface{}, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.llamadas = append(m.llamadas, tipo)
	if err, existe := m.fallar[tipo]; existe {
		return map[string]interface{}{"error": err.Error()}, err
	}

	pid, _ := utils.ExtraerEntero(datos, "pid")
	switch tipo {
	case utils.MensajeInicializarProceso:
		m.bytes[uint32(pid)] = make(map[int]byte)
	case utils.MensajeReservar:
		return map[string]interface{}{"status": "OK", "direccion": float64(0)}, nil
	case utils.MensajeEscribir:
		dir, _ := utils.ExtraerEntero(datos, "direccion_logica")
		m.bytes[uint32(pid)][dir] = datos["valor"].(byte)
	case utils.MensajeLeer:
		dir, _ := utils.ExtraerEntero(datos, "direccion_logica")
		return map[string]interface{}{"status": "OK", "valor": float64(m.bytes[uint32(pid)][dir])}, nil
	}
	return map[string]interface{}{"status": "OK"}, nil
}

func (m *memoriaFalsa) cantidad(tipo int) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	n := 0
	for _, t := range m.llamadas {
		if t == tipo {
			n++
		}
	}
	return n
}

func prepararPlanificador(t *testing.T, capacidad int, grado int) {
	t.Helper()

	logger := utils.NuevoLogger(io.Discard, "error", "Kernel")
	utils.InfoLog = logger
	utils.ErrorLog = logger

	InicializarPlanificador(&KernelConfig{CapacidadCola: capacidad, GradoMultiprogramacion: grado})
}

func TestDespachoPorPrioridad(t *testing.T) {
	prepararPlanificador(t, 0, 1)

	admitidos := admitirProcesosConfigurados([]ProcesoConfig{
		{PID: 1, Prioridad: 3, Tamanio: 10},
		{PID: 2, Prioridad: 7, Tamanio: 10},
		{PID: 3, Prioridad: 7, Tamanio: 10},
		{PID: 4, Prioridad: 1, Tamanio: 10},
	})
	if admitidos != 4 {
		t.Fatalf("admitidos = %d, se esperaban 4", admitidos)
	}

	memoria := nuevaMemoriaFalsa()
	orden := PlanificarCortoPlazo(context.Background(), memoria)

	esperado := []uint32{2, 3, 1, 4}
	if len(orden) != len(esperado) {
		t.Fatalf("orden = %v, se esperaba %v", orden, esperado)
	}
	for i := range esperado {
		if orden[i] != esperado[i] {
			t.Fatalf("orden = %v, se esperaba %v", orden, esperado)
		}
	}

	if PicoMultiprogramacion() != 1 {
		t.Errorf("pico = %d con grado 1", PicoMultiprogramacion())
	}
	for _, pcb := range ProcesosFinalizados() {
		if pcb.Estado != EstadoExit || pcb.MotivoFin != "" {
			t.Errorf("%v terminó con motivo %q", pcb, pcb.MotivoFin)
		}
	}
	if memoria.cantidad(utils.MensajeFinalizarProceso) != 4 || memoria.cantidad(utils.MensajeLiberar) != 4 {
		t.Errorf("llamadas a Memoria: %v", memoria.llamadas)
	}
}

func TestAdmitirConColaLlena(t *testing.T) {
	prepararPlanificador(t, 2, 1)

	if err := AdmitirProceso(NuevoPCB(1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := AdmitirProceso(NuevoPCB(2, 0, 0)); err != nil {
		t.Fatal(err)
	}

	err := AdmitirProceso(NuevoPCB(3, 0, 0))
	if !errors.Is(err, cola.ErrColaLlena) {
		t.Fatalf("se esperaba ErrColaLlena, se obtuvo %v", err)
	}
	if BuscarPCBPorPID(3) != nil {
		t.Error("un proceso rechazado quedó registrado")
	}

	if err := AdmitirProceso(NuevoPCB(1, 5, 0)); err == nil {
		t.Error("se admitió dos veces el mismo PID")
	}
}

func TestErrorDeMemoriaFinalizaIgual(t *testing.T) {
	prepararPlanificador(t, 0, 1)

	memoria := nuevaMemoriaFalsa()
	memoria.fallar[utils.MensajeReservar] = errors.New("memoria insuficiente")

	pcb := NuevoPCB(9, 1, 4096)
	if err := AdmitirProceso(pcb); err != nil {
		t.Fatal(err)
	}
	PlanificarCortoPlazo(context.Background(), memoria)

	if pcb.Estado != EstadoExit || pcb.MotivoFin == "" {
		t.Errorf("estado %s, motivo %q; se esperaba EXIT con motivo", pcb.Estado, pcb.MotivoFin)
	}
	if memoria.cantidad(utils.MensajeFinalizarProceso) != 1 {
		t.Error("el proceso no se finalizó en Memoria")
	}
	if memoria.cantidad(utils.MensajeEscribir) != 0 {
		t.Error("se escribió sin reserva")
	}
}

func TestMultiprogramacion(t *testing.T) {
	prepararPlanificador(t, 0, 3)

	for pid := uint32(1); pid <= 6; pid++ {
		if err := AdmitirProceso(NuevoPCB(pid, pid, 8)); err != nil {
			t.Fatal(err)
		}
	}

	orden := PlanificarCortoPlazo(context.Background(), nuevaMemoriaFalsa())
	if len(orden) != 6 || orden[0] != 6 || orden[5] != 1 {
		t.Errorf("orden = %v, se esperaba de mayor a menor prioridad", orden)
	}
	if pico := PicoMultiprogramacion(); pico < 1 || pico > 3 {
		t.Errorf("pico de multiprogramación = %d, debe estar entre 1 y 3", pico)
	}
	if semaforoMultiprogram.Ocupados() != 0 {
		t.Errorf("quedaron %d lugares de multiprogramación tomados", semaforoMultiprogram.Ocupados())
	}
	if len(ProcesosFinalizados()) != 6 {
		t.Errorf("finalizados = %d, se esperaban 6", len(ProcesosFinalizados()))
	}
}

func TestPlanificarConContextoCancelado(t *testing.T) {
	prepararPlanificador(t, 0, 2)

	if err := AdmitirProceso(NuevoPCB(1, 1, 8)); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	memoria := nuevaMemoriaFalsa()
	if orden := PlanificarCortoPlazo(ctx, memoria); len(orden) != 0 {
		t.Errorf("se despacharon %v con el contexto cancelado", orden)
	}
	if pcb := BuscarPCBPorPID(1); pcb.Estado != EstadoReady {
		t.Errorf("estado = %s, el proceso debería seguir en READY", pcb.Estado)
	}
	if len(memoria.llamadas) != 0 {
		t.Errorf("llamadas a Memoria con el contexto cancelado: %v", memoria.llamadas)
	}
}
