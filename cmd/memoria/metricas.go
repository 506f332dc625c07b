package main

import (
	"sync"
)

// MetricasProceso almacena estadísticas sobre el uso de memoria de un proceso
type MetricasProceso struct {
	Reservas         int
	Liberaciones     int
	Lecturas         int
	Escrituras       int
	FallosTraduccion int
}

var (
	metricasPorProceso map[uint32]*MetricasProceso
	metricasMutex      sync.Mutex
)

func inicializarMetricas() {
	metricasMutex.Lock()
	metricasPorProceso = make(map[uint32]*MetricasProceso)
	metricasMutex.Unlock()
}

// actualizarMetricas aplica la modificación sobre las métricas del proceso
func actualizarMetricas(pid uint32, modificar func(*MetricasProceso)) {
	metricasMutex.Lock()
	defer metricasMutex.Unlock()

	if _, existe := metricasPorProceso[pid]; !existe {
		metricasPorProceso[pid] = &MetricasProceso{}
	}
	modificar(metricasPorProceso[pid])
}

// obtenerMetricas devuelve una copia
func obtenerMetricas(pid uint32) MetricasProceso {
	metricasMutex.Lock()
	defer metricasMutex.Unlock()

	if metricas, existe := metricasPorProceso[pid]; existe {
		return *metricas
	}
	return MetricasProceso{}
}

// quitarMetricas devuelve las métricas finales y las descarta
func quitarMetricas(pid uint32) MetricasProceso {
	metricasMutex.Lock()
	defer metricasMutex.Unlock()

	var metricas MetricasProceso
	if m, existe := metricasPorProceso[pid]; existe {
		metricas = *m
		delete(metricasPorProceso, pid)
	}
	return metricas
}
