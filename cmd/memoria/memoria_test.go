package main

import (
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

// prepararMemoria deja una memoria de 8 marcos de 16 bytes lista para usar
func prepararMemoria(t *testing.T) {
	t.Helper()

	logger := utils.NuevoLogger(io.Discard, "error", "Memoria")
	utils.InfoLog = logger
	utils.ErrorLog = logger

	config = &MemoryConfig{
		BitsDireccion:      10,
		BitsDesplazamiento: 4,
		BitsPagina:         2,
		CantidadMarcos:     8,
		DumpPath:           t.TempDir(),
	}
	if err := inicializarMemoria(); err != nil {
		t.Fatalf("inicializarMemoria: %v", err)
	}
}

func mensaje(datos map[string]interface{}) *utils.Mensaje {
	return &utils.Mensaje{Origen: "Tester", Datos: datos}
}

func llamar(t *testing.T, handler utils.HTTPHandlerFunc, datos map[string]interface{}) map[string]interface{} {
	t.Helper()
	respuesta, err := handler(mensaje(datos))
	if err != nil {
		t.Fatalf("error inesperado del handler: %v", err)
	}
	mapa, ok := respuesta.(map[string]interface{})
	if !ok {
		t.Fatalf("respuesta con formato inesperado: %T", respuesta)
	}
	return mapa
}

func exitoso(t *testing.T, handler utils.HTTPHandlerFunc, datos map[string]interface{}) map[string]interface{} {
	t.Helper()
	mapa := llamar(t, handler, datos)
	if msg, existe := mapa["error"]; existe {
		t.Fatalf("se esperaba OK, se obtuvo error: %v", msg)
	}
	return mapa
}

func fallido(t *testing.T, handler utils.HTTPHandlerFunc, datos map[string]interface{}) {
	t.Helper()
	mapa := llamar(t, handler, datos)
	if _, existe := mapa["error"]; !existe {
		t.Fatalf("se esperaba error, se obtuvo %v", mapa)
	}
}

func TestHandshake(t *testing.T) {
	prepararMemoria(t)

	r := exitoso(t, handlerHandshake, nil)
	if r["tam_pagina"] != uint32(16) || r["marcos"] != 8 || r["bits_direccion"] != 10 {
		t.Errorf("handshake = %v", r)
	}
}

func TestCicloDeVidaProceso(t *testing.T) {
	prepararMemoria(t)

	exitoso(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(1)})

	r := exitoso(t, handlerReservar, map[string]interface{}{"pid": float64(1), "tamanio": float64(20)})
	if r["direccion"] != uint32(0) {
		t.Fatalf("primera reserva en %v, se esperaba 0", r["direccion"])
	}

	libre := exitoso(t, handlerEspacioLibre, nil)
	if libre["marcos_libres"] != 6 || libre["espacio_libre"] != 96 {
		t.Errorf("espacio libre = %v, se esperaban 6 marcos", libre)
	}

	exitoso(t, handlerEscribirMemoria, map[string]interface{}{
		"pid": float64(1), "direccion_logica": float64(17), "valor": float64(0xAB),
	})
	leido := exitoso(t, handlerLeerMemoria, map[string]interface{}{
		"pid": float64(1), "direccion_logica": float64(17),
	})
	if leido["valor"] != byte(0xAB) {
		t.Errorf("se leyó %v, se esperaba 0xAB", leido["valor"])
	}

	fin := exitoso(t, handlerFinalizarProceso, map[string]interface{}{"pid": float64(1)})
	if fin["reservas"] != 1 || fin["lecturas"] != 1 || fin["escrituras"] != 1 || fin["liberaciones"] != 0 {
		t.Errorf("métricas finales = %v", fin)
	}
	if memoria.MarcosLibres() != 8 {
		t.Errorf("quedaron %d marcos libres después de finalizar, se esperaban 8", memoria.MarcosLibres())
	}

	// El proceso ya no existe
	fallido(t, handlerLeerMemoria, map[string]interface{}{"pid": float64(1), "direccion_logica": float64(0)})
}

func TestInicializarProcesoInvalido(t *testing.T) {
	prepararMemoria(t)

	fallido(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(0)})
	fallido(t, handlerInicializarProceso, map[string]interface{}{})
	fallido(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(-3)})

	exitoso(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(2)})
	fallido(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(2)})
}

func TestReservarSinMemoria(t *testing.T) {
	prepararMemoria(t)
	exitoso(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(1)})

	fallido(t, handlerReservar, map[string]interface{}{"pid": float64(1), "tamanio": float64(8*16 + 1)})
	fallido(t, handlerReservar, map[string]interface{}{"pid": float64(1), "tamanio": float64(0)})
	fallido(t, handlerReservar, map[string]interface{}{"pid": float64(9), "tamanio": float64(4)})

	if memoria.MarcosLibres() != 8 {
		t.Errorf("una reserva fallida tomó marcos: libres = %d", memoria.MarcosLibres())
	}
}

func TestLiberar(t *testing.T) {
	prepararMemoria(t)
	exitoso(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(1)})

	r := exitoso(t, handlerReservar, map[string]interface{}{"pid": float64(1), "tamanio": float64(40)})
	dir := float64(r["direccion"].(uint32))

	exitoso(t, handlerLiberar, map[string]interface{}{"pid": float64(1), "direccion": dir + 5})
	if memoria.MarcosLibres() != 8 {
		t.Errorf("libres = %d después de liberar, se esperaban 8", memoria.MarcosLibres())
	}

	// Doble liberación
	fallido(t, handlerLiberar, map[string]interface{}{"pid": float64(1), "direccion": dir})
	fallido(t, handlerLiberar, map[string]interface{}{"pid": float64(1)})

	metricas := obtenerMetricas(1)
	if metricas.Reservas != 1 || metricas.Liberaciones != 1 || metricas.FallosTraduccion != 1 {
		t.Errorf("métricas = %+v", metricas)
	}

	proceso, err := obtenerProceso(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(proceso.Reservas) != 0 {
		t.Errorf("reservas pendientes = %v, se esperaba ninguna", proceso.Reservas)
	}
}

func TestRecortarReserva(t *testing.T) {
	casos := []struct {
		nombre       string
		dir          uint32
		inicioPagina uint32
		esperado     []Reserva
	}{
		{"desde el inicio", 3, 0, []Reserva{{Direccion: 64, Tamanio: 16}}},
		{"desde la mitad", 40, 32, []Reserva{{Direccion: 0, Tamanio: 32}, {Direccion: 64, Tamanio: 16}}},
		{"segunda reserva", 64, 64, []Reserva{{Direccion: 0, Tamanio: 48}}},
		{"fuera de toda reserva", 200, 192, []Reserva{{Direccion: 0, Tamanio: 48}, {Direccion: 64, Tamanio: 16}}},
	}

	for _, caso := range casos {
		t.Run(caso.nombre, func(t *testing.T) {
			reservas := []Reserva{{Direccion: 0, Tamanio: 48}, {Direccion: 64, Tamanio: 16}}
			got := recortarReserva(reservas, caso.dir, caso.inicioPagina)
			if len(got) != len(caso.esperado) {
				t.Fatalf("reservas = %v, se esperaba %v", got, caso.esperado)
			}
			for i := range got {
				if got[i] != caso.esperado[i] {
					t.Fatalf("reservas = %v, se esperaba %v", got, caso.esperado)
				}
			}
		})
	}
}

func TestLiberarDesdeLaMitadYFinalizar(t *testing.T) {
	prepararMemoria(t)
	exitoso(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(1)})

	r := exitoso(t, handlerReservar, map[string]interface{}{"pid": float64(1), "tamanio": float64(48)})
	dir := float64(r["direccion"].(uint32))

	exitoso(t, handlerLiberar, map[string]interface{}{"pid": float64(1), "direccion": dir + 16})
	if memoria.MarcosLibres() != 6 {
		t.Fatalf("libres = %d después de liberar dos páginas, se esperaban 6", memoria.MarcosLibres())
	}

	// La primera página sigue reservada y se puede usar
	exitoso(t, handlerEscribirMemoria, map[string]interface{}{
		"pid": float64(1), "direccion_logica": dir + 15, "valor": float64(9),
	})

	exitoso(t, handlerFinalizarProceso, map[string]interface{}{"pid": float64(1)})
	if memoria.MarcosLibres() != 8 {
		marco, _ := memoria.Marco(0)
		t.Errorf("libres = %d después de finalizar, se esperaban 8 (marco 0 = %+v)", memoria.MarcosLibres(), marco)
	}
}

func TestLiberarMitadReservarYFinalizar(t *testing.T) {
	prepararMemoria(t)
	exitoso(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(1)})

	r := exitoso(t, handlerReservar, map[string]interface{}{"pid": float64(1), "tamanio": float64(48)})
	dir := float64(r["direccion"].(uint32))
	exitoso(t, handlerLiberar, map[string]interface{}{"pid": float64(1), "direccion": dir + 20})

	// La nueva reserva reutiliza un marco que pertenecía a la cadena recortada
	exitoso(t, handlerReservar, map[string]interface{}{"pid": float64(1), "tamanio": float64(16)})
	exitoso(t, handlerReservar, map[string]interface{}{"pid": float64(1), "tamanio": float64(30)})

	exitoso(t, handlerFinalizarProceso, map[string]interface{}{"pid": float64(1)})
	if memoria.MarcosLibres() != 8 {
		t.Errorf("libres = %d después de finalizar, se esperaban 8", memoria.MarcosLibres())
	}
}

func TestReservarMientrasSeFinaliza(t *testing.T) {
	prepararMemoria(t)

	for pid := 1; pid <= 20; pid++ {
		exitoso(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(pid)})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 4; i++ {
				reservarMemoria(uint32(pid), 16)
			}
		}()
		go func() {
			defer wg.Done()
			finalizarProceso(uint32(pid))
		}()
		wg.Wait()

		if libres := memoria.MarcosLibres(); libres != 8 {
			t.Fatalf("pid %d: libres = %d con el proceso finalizado, se esperaban 8", pid, libres)
		}
	}
}

func TestEscribirValorInvalido(t *testing.T) {
	prepararMemoria(t)
	exitoso(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(1)})
	exitoso(t, handlerReservar, map[string]interface{}{"pid": float64(1), "tamanio": float64(4)})

	for _, valor := range []interface{}{float64(256), float64(-1), "A", nil} {
		fallido(t, handlerEscribirMemoria, map[string]interface{}{
			"pid": float64(1), "direccion_logica": float64(0), "valor": valor,
		})
	}

	// Dirección sin mapear
	fallido(t, handlerEscribirMemoria, map[string]interface{}{
		"pid": float64(1), "direccion_logica": float64(500), "valor": float64(1),
	})
}

func TestMemoryDump(t *testing.T) {
	prepararMemoria(t)
	exitoso(t, handlerInicializarProceso, map[string]interface{}{"pid": float64(3)})
	exitoso(t, handlerReservar, map[string]interface{}{"pid": float64(3), "tamanio": float64(16)})
	exitoso(t, handlerEscribirMemoria, map[string]interface{}{
		"pid": float64(3), "direccion_logica": float64(15), "valor": float64(0x7f),
	})

	r := exitoso(t, handlerMemoryDump, nil)
	ruta, _ := r["archivo"].(string)
	if !strings.HasPrefix(ruta, config.DumpPath) || !strings.HasSuffix(ruta, ".dmp") {
		t.Fatalf("archivo de dump inesperado: %q", ruta)
	}

	contenido, err := os.ReadFile(ruta)
	if err != nil {
		t.Fatal(err)
	}
	texto := string(contenido)
	if !strings.Contains(texto, "000: 00000-0000f - PID: 03 (idx 000, nxt: -01)") {
		t.Errorf("falta la línea del marco 0:\n%s", texto)
	}
	if !strings.Contains(texto, "\t0000f: 7f\n") {
		t.Errorf("falta el último byte del marco:\n%s", texto)
	}
}

func TestMemoriaPorHTTP(t *testing.T) {
	prepararMemoria(t)

	m := utils.NuevoModulo("Memoria", "")
	registrarHandlers(m)
	server := httptest.NewServer(m.ConstruirServidor("127.0.0.1", 0).Handler())
	t.Cleanup(server.Close)

	cliente := utils.NewHTTPClientURL(server.URL, "Kernel")

	if _, err := cliente.EnviarYValidar(utils.MensajeInicializarProceso, map[string]interface{}{"pid": 4}); err != nil {
		t.Fatal(err)
	}
	r, err := cliente.EnviarYValidar(utils.MensajeReservar, map[string]interface{}{"pid": 4, "tamanio": 10})
	if err != nil {
		t.Fatal(err)
	}
	dir, _ := utils.ExtraerEntero(r, "direccion")

	if _, err := cliente.EnviarYValidar(utils.MensajeEscribir, map[string]interface{}{
		"pid": 4, "direccion_logica": dir + 9, "valor": 200,
	}); err != nil {
		t.Fatal(err)
	}
	r, err = cliente.EnviarYValidar(utils.MensajeLeer, map[string]interface{}{"pid": 4, "direccion_logica": dir + 9})
	if err != nil {
		t.Fatal(err)
	}
	if valor, _ := utils.ExtraerEntero(r, "valor"); valor != 200 {
		t.Errorf("se leyó %d por HTTP, se esperaba 200", valor)
	}

	// Los errores viajan en el campo "error"
	if _, err := cliente.EnviarYValidar(utils.MensajeLeer, map[string]interface{}{"pid": 4, "direccion_logica": 900}); err == nil {
		t.Error("se esperaba error al leer una dirección sin mapear")
	}
}
