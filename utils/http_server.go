package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// HTTPHandlerFunc es el tipo para los manejadores de mensajes HTTP
type HTTPHandlerFunc func(*Mensaje) (interface{}, error)

// HTTPServer atiende los mensajes de los demás módulos en POST /mensaje
type HTTPServer struct {
	IP       string
	Puerto   int
	Nombre   string
	handlers map[int]HTTPHandlerFunc

	mutex  sync.Mutex
	server *http.Server
}

// NewHTTPServer crea un nuevo servidor HTTP
func NewHTTPServer(ip string, puerto int, nombre string) *HTTPServer {
	return &HTTPServer{
		IP:       ip,
		Puerto:   puerto,
		Nombre:   nombre,
		handlers: make(map[int]HTTPHandlerFunc),
	}
}

// RegisterHTTPHandler registra un manejador para un tipo específico de mensaje
func (s *HTTPServer) RegisterHTTPHandler(tipoMensaje int, handler HTTPHandlerFunc) {
	s.handlers[tipoMensaje] = handler
}

// Handler arma el mux con los endpoints /mensaje y /health
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mensaje", s.atenderMensaje)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		s.responderJSON(w, map[string]string{"status": "ok", "module": s.Nombre})
	})
	return mux
}

// atenderMensaje decodifica el mensaje y lo pasa al handler de su tipo. Los
// errores de negocio viajan en la respuesta; un error del handler es un 500.
func (s *HTTPServer) atenderMensaje(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	var mensaje Mensaje
	if err := json.NewDecoder(r.Body).Decode(&mensaje); err != nil {
		http.Error(w, fmt.Sprintf("Error decodificando mensaje: %v", err), http.StatusBadRequest)
		return
	}

	handler, existe := s.handlers[mensaje.Tipo]
	if !existe {
		http.Error(w, fmt.Sprintf("No hay manejador para el tipo de mensaje %d", mensaje.Tipo), http.StatusBadRequest)
		return
	}

	inicio := time.Now()
	respuesta, err := handler(&mensaje)
	slog.Debug("Mensaje atendido",
		"módulo", s.Nombre,
		"tipo", mensaje.Tipo,
		"origen", mensaje.Origen,
		"duración", time.Since(inicio))

	if err != nil {
		http.Error(w, fmt.Sprintf("Error en el manejador: %v", err), http.StatusInternalServerError)
		return
	}

	s.responderJSON(w, respuesta)
}

func (s *HTTPServer) responderJSON(w http.ResponseWriter, respuesta interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(respuesta); err != nil {
		slog.Error("Error codificando respuesta", "módulo", s.Nombre, "error", err)
	}
}

// Start escucha en IP:Puerto hasta que se llame a Shutdown
func (s *HTTPServer) Start() error {
	address := fmt.Sprintf("%s:%d", s.IP, s.Puerto)
	server := &http.Server{
		Addr:              address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.mutex.Lock()
	s.server = server
	s.mutex.Unlock()

	slog.Info("Servidor HTTP escuchando", "módulo", s.Nombre, "dirección", address)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrapf(err, "servidor %s", s.Nombre)
}

// Shutdown deja de aceptar mensajes y espera a los que están en curso
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mutex.Lock()
	server := s.server
	s.mutex.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}
