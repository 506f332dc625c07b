package mmu

// FinCadena marca el último marco de una cadena de reserva
const FinCadena = -1

// Marco describe el estado de un marco físico en la tabla de marcos
type Marco struct {
	Proceso   uint32 // PID dueño del marco, 0 si está libre
	Indice    int    // Posición del marco dentro de la reserva que lo tomó
	Siguiente int    // Próximo marco de la misma reserva, FinCadena si es el último
}

// Libre indica si el marco no pertenece a ningún proceso
func (m Marco) Libre() bool {
	return m.Proceso == 0
}

// contarMarcosLibres cuenta los marcos sin dueño
func contarMarcosLibres(marcos []Marco) int {
	count := 0
	for _, marco := range marcos {
		if marco.Libre() {
			count++
		}
	}
	return count
}

// tomarMarcos asigna al proceso los primeros cantidad marcos libres en orden
// ascendente y los encadena. El llamador ya verificó que alcanzan.
func tomarMarcos(marcos []Marco, pid uint32, cantidad int) []int {
	tomados := make([]int, 0, cantidad)
	anterior := FinCadena

	for i := 0; i < len(marcos) && len(tomados) < cantidad; i++ {
		if !marcos[i].Libre() {
			continue
		}

		marcos[i].Proceso = pid
		marcos[i].Indice = len(tomados)
		if anterior != FinCadena {
			marcos[anterior].Siguiente = i
		}

		tomados = append(tomados, i)
		anterior = i
	}

	if anterior != FinCadena {
		marcos[anterior].Siguiente = FinCadena
	}

	return tomados
}

// liberarCadena recorre la cadena desde inicio y devuelve la cantidad de
// marcos liberados. Solo se limpia el dueño: Indice y Siguiente quedan con su
// valor anterior, por eso Siguiente se lee antes de soltar el marco.
// El recorrido se corta al llegar a un marco que no es del proceso.
func liberarCadena(marcos []Marco, inicio int, pid uint32) int {
	liberados := 0
	actual := inicio

	for actual != FinCadena && actual >= 0 && actual < len(marcos) {
		if marcos[actual].Proceso != pid {
			break
		}
		siguiente := marcos[actual].Siguiente
		marcos[actual].Proceso = 0
		liberados++
		actual = siguiente
	}

	return liberados
}
