package utils

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// Modulo representa un módulo genérico del sistema
type Modulo struct {
	Nombre      string
	Server      *HTTPServer
	Clientes    map[string]*HTTPClient
	ConfigPath  string
	HandlerFunc map[string]map[string]HTTPHandlerFunc
}

// NuevoModulo crea una nueva instancia de un módulo
func NuevoModulo(nombre string, configPath string) *Modulo {
	return &Modulo{
		Nombre:      nombre,
		Clientes:    make(map[string]*HTTPClient),
		ConfigPath:  configPath,
		HandlerFunc: make(map[string]map[string]HTTPHandlerFunc),
	}
}

// RegistrarHandler registra un handler para un tipo de mensaje y operación específicos
func (m *Modulo) RegistrarHandler(tipo string, operacion string, handler HTTPHandlerFunc) {
	if _, existe := m.HandlerFunc[tipo]; !existe {
		m.HandlerFunc[tipo] = make(map[string]HTTPHandlerFunc)
	}
	m.HandlerFunc[tipo][operacion] = handler
}

// ConstruirServidor crea el servidor HTTP del módulo con los handlers registrados, sin iniciarlo
func (m *Modulo) ConstruirServidor(ip string, puerto int) *HTTPServer {
	m.Server = NewHTTPServer(ip, puerto, m.Nombre)

	for tipoStr, handlersPorOperacion := range m.HandlerFunc {
		tipo, err := strconv.Atoi(tipoStr)
		if err != nil {
			slog.Error("Error al convertir tipo de mensaje a entero", "tipo", tipoStr, "error", err)
			continue
		}

		m.Server.RegisterHTTPHandler(tipo, despacharPorOperacion(tipo, handlersPorOperacion))
	}

	return m.Server
}

// despacharPorOperacion elige el handler de la operación, o "default" si no hay uno específico
func despacharPorOperacion(tipo int, handlersPorOperacion map[string]HTTPHandlerFunc) HTTPHandlerFunc {
	return func(msg *Mensaje) (interface{}, error) {
		operacion := msg.Operacion
		if operacion == "" {
			operacion = "default"
		}

		handler, existe := handlersPorOperacion[operacion]
		if !existe {
			handler, existe = handlersPorOperacion["default"]
			if !existe {
				slog.Error("No hay handler para operación", "tipo", tipo, "operacion", operacion)
				return nil, errors.Errorf("no hay handler para operación %s", operacion)
			}
		}

		return handler(msg)
	}
}

// IniciarServidor crea el servidor HTTP del módulo y lo arranca en una goroutine
func (m *Modulo) IniciarServidor(ip string, puerto int) {
	m.ConstruirServidor(ip, puerto)

	go func() {
		err := m.Server.Start()
		if err != nil {
			slog.Error("Error al iniciar servidor HTTP", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Servidor HTTP iniciado", "módulo", m.Nombre, "dirección", fmt.Sprintf("%s:%d", ip, puerto))
}

// LoadConfig carga un archivo de configuración JSON y devuelve el error en vez de terminar
func LoadConfig[T any](ruta string) (*T, error) {
	absPath, err := filepath.Abs(ruta)
	if err != nil {
		return nil, errors.Wrapf(err, "error obteniendo ruta absoluta de %s", ruta)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error abriendo archivo de configuración %s", absPath)
	}
	defer file.Close()

	var config T
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return nil, errors.Wrapf(err, "error decodificando configuración %s", absPath)
	}

	return &config, nil
}

// CargarConfiguracion carga la configuración del módulo y termina el proceso si falla
func CargarConfiguracion[T any](ruta string) *T {
	slog.Info("Cargando configuración", "ruta", ruta)

	config, err := LoadConfig[T](ruta)
	if err != nil {
		slog.Error("Error cargando configuración", "error", err, "ruta", ruta)
		os.Exit(1)
	}

	slog.Info("Configuración cargada correctamente")
	return config
}

// ============================================================================
// Constantes para tipos de mensajes entre módulos
// ============================================================================
const (
	// === COMUNICACIÓN BÁSICA (1-9) ===
	MensajeHandshake = 1 // Conexión inicial

	// === OPERACIONES DE MEMORIA (10-19) ===
	MensajeLeer         = 10 // Leer un byte
	MensajeEscribir     = 11 // Escribir un byte
	MensajeEspacioLibre = 14 // Consultar espacio
	MensajeMemoryDump   = 15 // Volcado memoria
	MensajeReservar     = 16 // Reservar memoria
	MensajeLiberar      = 17 // Liberar memoria

	// === GESTIÓN DE PROCESOS (20-29) ===
	MensajeInicializarProceso = 20 // Crear espacio de direcciones
	MensajeFinalizarProceso   = 21 // Destruir espacio de direcciones
)
