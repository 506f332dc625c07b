package mmu

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Volcar escribe en w la ocupación de cada marco con dueño y sus bytes no nulos.
// No modifica la memoria.
func (m *Memoria) Volcar(w io.Writer) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var sb strings.Builder
	tamPagina := int(m.config.TamanioPagina())

	for i, marco := range m.marcos {
		if marco.Libre() {
			continue
		}

		inicio := i * tamPagina
		fin := inicio + tamPagina
		fmt.Fprintf(&sb, "%03d: %05x-%05x - PID: %02d (idx %03d, nxt: %03d)\n",
			i, inicio, fin-1, marco.Proceso, marco.Indice, marco.Siguiente)

		for j := inicio; j < fin; j++ {
			if m.ram[j] != 0 {
				fmt.Fprintf(&sb, "\t%05x: %02x\n", j, m.ram[j])
			}
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Wrap(err, "error escribiendo volcado de memoria")
	}
	return nil
}

// Instantanea es una copia de la tabla de marcos y de la RAM
type Instantanea struct {
	Marcos []Marco
	RAM    []byte
}

// Instantanea copia el estado físico completo
func (m *Memoria) Instantanea() Instantanea {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return Instantanea{
		Marcos: append([]Marco(nil), m.marcos...),
		RAM:    append([]byte(nil), m.ram...),
	}
}
