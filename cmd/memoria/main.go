package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sisoputnfrba/tp-mmu-LosCuervosXeneizes/utils"
)

var modulo *utils.Modulo

func main() {
	// Verificar argumentos
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Uso: %s <archivo_configuracion>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ejemplo: %s configs/memoria-config.json\n", os.Args[0])
		os.Exit(1)
	}

	// Inicializar logger ANTES de usarlo
	utils.InicializarLogger("INFO", "Memoria")

	utils.InfoLog.Info("Iniciando módulo Memoria")

	inicializarModulo(os.Args[1])

	utils.InfoLog.Info("Memoria inicializada correctamente")

	// Esperar señal de terminación
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	utils.InfoLog.Info("Señal recibida. Finalizando Memoria")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := modulo.Server.Shutdown(ctx); err != nil {
		utils.ErrorLog.Error("Error cerrando el servidor", "error", err)
	}
}

func inicializarModulo(rutaConfig string) {
	// Verificar que el archivo existe
	if _, err := os.Stat(rutaConfig); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: El archivo de configuración no existe: %s\n", rutaConfig)
		os.Exit(1)
	}

	modulo = utils.NuevoModulo("Memoria", rutaConfig)

	config = utils.CargarConfiguracion[MemoryConfig](rutaConfig)

	// Actualizar logger con configuración del archivo
	utils.InicializarLogger(config.LogLevel, "Memoria")
	utils.InfoLog.Info("Configuración cargada", "nivel_log", config.LogLevel, "config_path", rutaConfig)

	if err := inicializarMemoria(); err != nil {
		utils.ErrorLog.Error("Error inicializando memoria", "error", err)
		os.Exit(1)
	}

	registrarHandlers(modulo)

	modulo.IniciarServidor(config.IPMemory, config.PortMemory)
	utils.InfoLog.Info("Servidor iniciado", "ip", config.IPMemory, "puerto", config.PortMemory)
}

// registrarHandlers asocia cada tipo de mensaje con su handler. Los accesos a
// memoria pagan RETARDO_MEMORIA.
func registrarHandlers(m *utils.Modulo) {
	retardo := config.MemoryDelay

	m.RegistrarHandler(strconv.Itoa(utils.MensajeHandshake), "default", handlerHandshake)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeInicializarProceso), "default", handlerInicializarProceso)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeFinalizarProceso), "default", handlerFinalizarProceso)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeReservar), "default", utils.ConRetardo("reservar", retardo, handlerReservar))
	m.RegistrarHandler(strconv.Itoa(utils.MensajeLiberar), "default", utils.ConRetardo("liberar", retardo, handlerLiberar))
	m.RegistrarHandler(strconv.Itoa(utils.MensajeLeer), "default", utils.ConRetardo("leer", retardo, handlerLeerMemoria))
	m.RegistrarHandler(strconv.Itoa(utils.MensajeEscribir), "default", utils.ConRetardo("escribir", retardo, handlerEscribirMemoria))
	m.RegistrarHandler(strconv.Itoa(utils.MensajeEspacioLibre), "default", handlerEspacioLibre)
	m.RegistrarHandler(strconv.Itoa(utils.MensajeMemoryDump), "default", utils.ConRetardo("dump", retardo, handlerMemoryDump))

	utils.InfoLog.Info("Handlers registrados correctamente")
}
