package mmu

import (
	"slices"
)

// IndiceRetirado es el valor que toman ambos campos de una entrada de página liberada
const IndiceRetirado = -1

// EntradaPagina mapea un índice de página virtual a un marco físico
type EntradaPagina struct {
	IndicePagina int
	Marco        int
}

// Retirada indica si la entrada fue invalidada por una liberación
func (e EntradaPagina) Retirada() bool {
	return e.IndicePagina == IndiceRetirado && e.Marco == IndiceRetirado
}

// TablaPaginas es la tabla de segundo nivel de un segmento. Las entradas se
// guardan en orden de inserción y las retiradas permanecen como huecos.
type TablaPaginas struct {
	Entradas []EntradaPagina
}

// buscar devuelve la posición de la primera entrada con ese índice de página
func (t *TablaPaginas) buscar(indicePagina int) (int, bool) {
	for i, entrada := range t.Entradas {
		if entrada.IndicePagina == indicePagina {
			return i, true
		}
	}
	return 0, false
}

// EntradaSegmento asocia un índice de segmento con su tabla de páginas
type EntradaSegmento struct {
	IndiceSegmento int
	Paginas        *TablaPaginas
}

// TablaSegmentos es la tabla de primer nivel de un proceso
type TablaSegmentos struct {
	Entradas []EntradaSegmento
}

// tablaPaginas busca linealmente la tabla de páginas de un segmento
func (t *TablaSegmentos) tablaPaginas(indiceSegmento int) *TablaPaginas {
	for _, entrada := range t.Entradas {
		if entrada.IndiceSegmento == indiceSegmento {
			return entrada.Paginas
		}
	}
	return nil
}

// asegurarTablaPaginas devuelve la tabla de páginas del segmento, creando la
// entrada de segmento y su tabla si todavía no existen.
func (t *TablaSegmentos) asegurarTablaPaginas(indiceSegmento int, capacidad int) *TablaPaginas {
	for i := range t.Entradas {
		if t.Entradas[i].IndiceSegmento != indiceSegmento {
			continue
		}
		if t.Entradas[i].Paginas == nil {
			t.Entradas[i].Paginas = &TablaPaginas{Entradas: make([]EntradaPagina, 0, capacidad)}
		}
		return t.Entradas[i].Paginas
	}

	tabla := &TablaPaginas{Entradas: make([]EntradaPagina, 0, capacidad)}
	t.Entradas = append(t.Entradas, EntradaSegmento{
		IndiceSegmento: indiceSegmento,
		Paginas:        tabla,
	})
	return tabla
}

// EspacioVirtual es el descriptor del espacio de direcciones de un proceso.
// Le pertenece al proceso; la MMU solo lo consulta y lo modifica.
type EspacioVirtual struct {
	PID       uint32
	Break     uint64 // Primera dirección virtual sin usar, nunca decrece
	Segmentos TablaSegmentos
}

// NuevoEspacioVirtual crea un espacio vacío con el break en la dirección 0
func NuevoEspacioVirtual(pid uint32) *EspacioVirtual {
	return &EspacioVirtual{PID: pid}
}

// Clonar hace una copia profunda del descriptor
func (e *EspacioVirtual) Clonar() *EspacioVirtual {
	copia := &EspacioVirtual{
		PID:       e.PID,
		Break:     e.Break,
		Segmentos: TablaSegmentos{Entradas: slices.Clone(e.Segmentos.Entradas)},
	}
	for i, segmento := range copia.Segmentos.Entradas {
		if segmento.Paginas != nil {
			copia.Segmentos.Entradas[i].Paginas = &TablaPaginas{
				Entradas: slices.Clone(segmento.Paginas.Entradas),
			}
		}
	}
	return copia
}

// PaginasValidas cuenta las entradas de página no retiradas
func (e *EspacioVirtual) PaginasValidas() int {
	count := 0
	for _, segmento := range e.Segmentos.Entradas {
		if segmento.Paginas == nil {
			continue
		}
		for _, entrada := range segmento.Paginas.Entradas {
			if !entrada.Retirada() {
				count++
			}
		}
	}
	return count
}
