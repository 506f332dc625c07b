package mmu

import (
	"testing"
)

// configChica: páginas de 16 bytes, 4 páginas por tabla, 16 segmentos, 8 marcos
func configChica() Config {
	return Config{
		BitsDireccion:      10,
		BitsDesplazamiento: 4,
		BitsPagina:         2,
		CantidadMarcos:     8,
	}
}

func TestConfigPorDefecto(t *testing.T) {
	c := ConfigPorDefecto()
	if err := c.Validar(); err != nil {
		t.Fatalf("la configuración por defecto debería ser válida: %v", err)
	}
	if c.TamanioPagina() != 1024 {
		t.Errorf("tamaño de página = %d, se esperaba 1024", c.TamanioPagina())
	}
	if c.TamanioRAM() != 1<<20 {
		t.Errorf("tamaño de RAM = %d, se esperaba %d", c.TamanioRAM(), 1<<20)
	}
	if c.MaxPaginasPorTabla() != 32 || c.MaxSegmentos() != 32 {
		t.Errorf("capacidades = %d páginas / %d segmentos, se esperaba 32/32", c.MaxPaginasPorTabla(), c.MaxSegmentos())
	}
}

func TestConfigValidar(t *testing.T) {
	casos := []struct {
		nombre string
		config Config
		valida bool
	}{
		{"chica", configChica(), true},
		{"sin bits de segmento", Config{BitsDireccion: 6, BitsDesplazamiento: 4, BitsPagina: 2, CantidadMarcos: 4}, true},
		{"dirección angosta", Config{BitsDireccion: 5, BitsDesplazamiento: 4, BitsPagina: 2, CantidadMarcos: 4}, false},
		{"sin desplazamiento", Config{BitsDireccion: 10, BitsDesplazamiento: 0, BitsPagina: 2, CantidadMarcos: 4}, false},
		{"sin bits de página", Config{BitsDireccion: 10, BitsDesplazamiento: 4, BitsPagina: 0, CantidadMarcos: 4}, false},
		{"sin marcos", Config{BitsDireccion: 10, BitsDesplazamiento: 4, BitsPagina: 2, CantidadMarcos: 0}, false},
		{"más de 32 bits", Config{BitsDireccion: 33, BitsDesplazamiento: 12, BitsPagina: 10, CantidadMarcos: 4}, false},
		{"RAM demasiado grande", Config{BitsDireccion: 32, BitsDesplazamiento: 12, BitsPagina: 10, CantidadMarcos: 1<<20 + 1}, false},
	}

	for _, caso := range casos {
		t.Run(caso.nombre, func(t *testing.T) {
			err := caso.config.Validar()
			if caso.valida && err != nil {
				t.Errorf("se esperaba válida, error: %v", err)
			}
			if !caso.valida && err == nil {
				t.Errorf("se esperaba error de validación")
			}
		})
	}
}
