package mmu

import (
	"github.com/pkg/errors"
)

// Config define la geometría de la memoria: ancho de la dirección virtual,
// bits de desplazamiento, bits de página y cantidad de marcos físicos.
// Los cuatro valores determinan todas las capacidades del sistema.
type Config struct {
	BitsDireccion      int `json:"BITS_DIRECCION"`      // ADDRESS_SIZE
	BitsDesplazamiento int `json:"BITS_DESPLAZAMIENTO"` // OFFSET_LEN
	BitsPagina         int `json:"BITS_PAGINA"`         // PAGE_LEN
	CantidadMarcos     int `json:"CANTIDAD_MARCOS"`     // NUM_PAGES
}

// ConfigPorDefecto devuelve la geometría clásica: direcciones de 20 bits,
// páginas de 1KB, 32 páginas por segmento y 1024 marcos.
func ConfigPorDefecto() Config {
	return Config{
		BitsDireccion:      20,
		BitsDesplazamiento: 10,
		BitsPagina:         5,
		CantidadMarcos:     1 << (20 - 10),
	}
}

// Validar verifica que las constantes sean coherentes entre sí
func (c Config) Validar() error {
	if c.BitsDesplazamiento <= 0 {
		return errors.Errorf("bits de desplazamiento inválidos: %d", c.BitsDesplazamiento)
	}
	if c.BitsPagina <= 0 {
		return errors.Errorf("bits de página inválidos: %d", c.BitsPagina)
	}
	if c.BitsDireccion > 32 {
		return errors.Errorf("el ancho de dirección no puede superar 32 bits: %d", c.BitsDireccion)
	}
	if c.BitsDireccion < c.BitsDesplazamiento+c.BitsPagina {
		return errors.Errorf("BITS_DIRECCION (%d) debe ser >= BITS_DESPLAZAMIENTO + BITS_PAGINA (%d)",
			c.BitsDireccion, c.BitsDesplazamiento+c.BitsPagina)
	}
	if c.CantidadMarcos <= 0 {
		return errors.Errorf("cantidad de marcos inválida: %d", c.CantidadMarcos)
	}
	// La dirección física también tiene que entrar en 32 bits
	if uint64(c.CantidadMarcos)<<c.BitsDesplazamiento > 1<<32 {
		return errors.Errorf("la memoria física (%d marcos de %d bytes) excede el espacio direccionable",
			c.CantidadMarcos, c.TamanioPagina())
	}
	return nil
}

// TamanioPagina es PAGE_SIZE = 2^BitsDesplazamiento
func (c Config) TamanioPagina() uint32 {
	return 1 << c.BitsDesplazamiento
}

// TamanioRAM es RAM_SIZE = CantidadMarcos × TamanioPagina
func (c Config) TamanioRAM() int {
	return c.CantidadMarcos * int(c.TamanioPagina())
}

// LimiteVirtual es 2^BitsDireccion, la primera dirección fuera del espacio virtual.
func (c Config) LimiteVirtual() uint64 {
	return 1 << c.BitsDireccion
}

// MaxPaginasPorTabla es la capacidad de una tabla de páginas
func (c Config) MaxPaginasPorTabla() int {
	return 1 << c.BitsPagina
}

// MaxSegmentos es la cantidad de índices de segmento distintos representables
func (c Config) MaxSegmentos() int {
	return 1 << (c.BitsDireccion - c.BitsDesplazamiento - c.BitsPagina)
}
