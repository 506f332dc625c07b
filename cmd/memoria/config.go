package main

import (
	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/mmu"
)

// MemoryConfig representa la configuración específica del módulo Memoria
type MemoryConfig struct {
	IPMemory           string `json:"IP_MEMORIA"`
	PortMemory         int    `json:"PUERTO_MEMORIA"`
	LogLevel           string `json:"LOG_LEVEL"`
	BitsDireccion      int    `json:"BITS_DIRECCION"`      // Ancho de la dirección virtual
	BitsDesplazamiento int    `json:"BITS_DESPLAZAMIENTO"` // Define el tamaño de página
	BitsPagina         int    `json:"BITS_PAGINA"`         // Entradas por tabla de páginas
	CantidadMarcos     int    `json:"CANTIDAD_MARCOS"`     // Marcos de memoria física
	MemoryDelay        int    `json:"RETARDO_MEMORIA"`     // Retardo de acceso a memoria
	DumpPath           string `json:"DUMP_PATH"`           // Ruta para los archivos de dump
}

var config *MemoryConfig

// Geometria arma la configuración de la MMU. Los campos en cero toman el valor por defecto.
func (c *MemoryConfig) Geometria() mmu.Config {
	geometria := mmu.ConfigPorDefecto()
	if c.BitsDireccion > 0 {
		geometria.BitsDireccion = c.BitsDireccion
	}
	if c.BitsDesplazamiento > 0 {
		geometria.BitsDesplazamiento = c.BitsDesplazamiento
	}
	if c.BitsPagina > 0 {
		geometria.BitsPagina = c.BitsPagina
	}
	if c.CantidadMarcos > 0 {
		geometria.CantidadMarcos = c.CantidadMarcos
	}
	return geometria
}
